package pod

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

type PodSuite struct {
	suite.Suite
}

func TestPodSuite(t *testing.T) {
	suite.Run(t, new(PodSuite))
}

func (s *PodSuite) TestStorageRoot() {
	tests := []struct {
		name string
		doc  string
		want string
		ok   bool
	}{
		{
			name: "prefixed pim storage",
			doc: `@prefix pim: <http://www.w3.org/ns/pim/space#> .
<#me> pim:storage <https://user.example.org/> .`,
			want: "https://user.example.org/",
			ok:   true,
		},
		{
			name: "space prefix",
			doc:  `<#me> space:storage <https://pods.example.com/alice/> .`,
			want: "https://pods.example.com/alice/",
			ok:   true,
		},
		{
			name: "full predicate IRI",
			doc:  `<#me> <http://www.w3.org/ns/pim/space#storage> <https://user.example.org/data> .`,
			want: "https://user.example.org/data/",
			ok:   true,
		},
		{
			name: "no storage triple",
			doc:  `<#me> a <http://xmlns.com/foaf/0.1/Person> .`,
			ok:   false,
		},
		{
			name: "empty document",
			doc:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			root, ok := storageRoot(tt.doc)
			s.Equal(tt.ok, ok)
			if tt.ok {
				s.Equal(tt.want, root)
			}
		})
	}
}

func (s *PodSuite) TestResolveRoot() {
	s.Run("resolves root from profile document", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal("/profile/card", r.URL.Path)
			s.Equal("text/turtle", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "text/turtle")
			_, _ = w.Write([]byte(`@prefix pim: <http://www.w3.org/ns/pim/space#> .
<#me> pim:storage <https://user.example.org/> .`))
		}))
		defer server.Close()

		client := NewHTTPClient()
		root, err := client.ResolveRoot(context.Background(), id.SubjectID(server.URL+"/profile/card#me"))
		s.Require().NoError(err)
		s.Equal("https://user.example.org/", root)
	})

	s.Run("profile without storage triple is unresolvable", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<#me> a <http://xmlns.com/foaf/0.1/Person> .`))
		}))
		defer server.Close()

		client := NewHTTPClient()
		_, err := client.ResolveRoot(context.Background(), id.SubjectID(server.URL+"/profile/card#me"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePodUnresolvable))
	})

	s.Run("profile fetch failure is unresolvable", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewHTTPClient()
		_, err := client.ResolveRoot(context.Background(), id.SubjectID(server.URL+"/profile/card#me"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePodUnresolvable))
	})
}

func (s *PodSuite) TestHTTPClientResources() {
	store := make(map[string][]byte)
	types := make(map[string]string)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			store[r.URL.Path] = body
			types[r.URL.Path] = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			content, ok := store[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", types[r.URL.Path])
			_, _ = w.Write(content)
		case http.MethodDelete:
			if _, ok := store[r.URL.Path]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(store, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := NewHTTPClient()
	ctx := context.Background()
	resource := server.URL + "/credentials/test.ttl"

	s.Run("put then get round trips", func() {
		err := client.Put(ctx, resource, []byte("@prefix cred: <x> ."), "text/turtle")
		s.Require().NoError(err)

		content, mediaType, err := client.Get(ctx, resource)
		s.Require().NoError(err)
		s.Equal("@prefix cred: <x> .", string(content))
		s.Equal("text/turtle", mediaType)
	})

	s.Run("delete removes the resource", func() {
		s.Require().NoError(client.Delete(ctx, resource))

		_, _, err := client.Get(ctx, resource)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		err = client.Delete(ctx, resource)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PodSuite) TestACLDocument() {
	s.Run("renders all grants", func() {
		resource := "https://user.example.org/credentials/abc.jsonld"
		doc := ACLDocument(resource, []Grant{
			OwnerGrant(id.SubjectID("https://user.example.org/profile/card#me")),
			ThirdPartyGrant(id.AgentID("did:web:eon.co.uk")),
			AuthenticatedReadGrant(),
		})

		s.Contains(doc, "@prefix acl: <http://www.w3.org/ns/auth/acl#> .")
		s.Contains(doc, "<#owner> a acl:Authorization ;")
		s.Contains(doc, "acl:agent <https://user.example.org/profile/card#me> ;")
		s.Contains(doc, "acl:mode acl:Read, acl:Write, acl:Control .")
		s.Contains(doc, "<#third-party> a acl:Authorization ;")
		s.Contains(doc, "acl:agent <did:web:eon.co.uk> ;")
		s.Contains(doc, "<#authenticated> a acl:Authorization ;")
		s.Contains(doc, "acl:agentClass acl:AuthenticatedAgent ;")
		s.Equal(3, strings.Count(doc, "acl:accessTo <"+resource+"> ;"))
	})

	s.Run("acl resource appends suffix", func() {
		s.Equal("https://x.example/a.ttl.acl", ACLResource("https://x.example/a.ttl"))
	})
}

func (s *PodSuite) TestAppendIndexEntry() {
	container := "https://user.example.org/credentials/"
	jsonldRes := container + "abc.jsonld"
	turtleRes := container + "abc.ttl"

	s.Run("creates base document when index is empty", func() {
		doc := AppendIndexEntry(nil, container, jsonldRes, turtleRes)
		s.Contains(doc, "a ldp:Container ;")
		s.Contains(doc, "<"+container+"> <http://www.w3.org/ns/ldp#contains> <"+jsonldRes+">, <"+turtleRes+"> .")
	})

	s.Run("appends to an existing document", func() {
		existing := AppendIndexEntry(nil, container, jsonldRes, turtleRes)
		doc := AppendIndexEntry([]byte(existing), container, container+"def.jsonld", container+"def.ttl")

		s.Contains(doc, "<"+jsonldRes+">")
		s.Contains(doc, "<"+container+"def.jsonld>")
		s.Equal(1, strings.Count(doc, "ldp:Container"))
	})
}
