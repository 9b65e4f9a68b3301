package pod

import (
	"fmt"
	"strings"

	id "pipvc/pkg/domain"
)

// Mode is a WAC access mode.
type Mode string

const (
	ModeRead    Mode = "Read"
	ModeWrite   Mode = "Write"
	ModeControl Mode = "Control"
)

// Grant authorizes one agent (or an agent class) on a resource.
type Grant struct {
	// Label becomes the authorization's fragment identifier in the ACL
	// document, e.g. "owner" -> <#owner>.
	Label string

	// Agent is the WebID or DID being authorized. Empty when AgentClass
	// is set.
	Agent id.AgentID

	// AgentClass authorizes a WAC agent class instead of a single agent;
	// the only class used here is acl:AuthenticatedAgent.
	AgentClass string

	Modes []Mode
}

// OwnerGrant gives the credential subject full control of the resource.
func OwnerGrant(subject id.SubjectID) Grant {
	return Grant{
		Label: "owner",
		Agent: id.AgentID(subject),
		Modes: []Mode{ModeRead, ModeWrite, ModeControl},
	}
}

// ThirdPartyGrant gives a configured third party read-only access.
func ThirdPartyGrant(agent id.AgentID) Grant {
	return Grant{
		Label: "third-party",
		Agent: agent,
		Modes: []Mode{ModeRead},
	}
}

// AuthenticatedReadGrant gives any authenticated agent read-only access.
func AuthenticatedReadGrant() Grant {
	return Grant{
		Label:      "authenticated",
		AgentClass: "AuthenticatedAgent",
		Modes:      []Mode{ModeRead},
	}
}

// ACLResource returns the URL of the WAC document governing a resource.
func ACLResource(resource string) string {
	return resource + ".acl"
}

// ACLDocument renders the WAC Turtle document for a resource with the
// given grants. Grant order is preserved so output is deterministic.
func ACLDocument(resource string, grants []Grant) string {
	var b strings.Builder
	b.WriteString("@prefix acl: <http://www.w3.org/ns/auth/acl#> .\n")

	for _, grant := range grants {
		fmt.Fprintf(&b, "\n<#%s> a acl:Authorization ;\n", grant.Label)
		if grant.AgentClass != "" {
			fmt.Fprintf(&b, "    acl:agentClass acl:%s ;\n", grant.AgentClass)
		} else {
			fmt.Fprintf(&b, "    acl:agent <%s> ;\n", grant.Agent)
		}
		fmt.Fprintf(&b, "    acl:accessTo <%s> ;\n", resource)

		modes := make([]string, 0, len(grant.Modes))
		for _, mode := range grant.Modes {
			modes = append(modes, "acl:"+string(mode))
		}
		fmt.Fprintf(&b, "    acl:mode %s .\n", strings.Join(modes, ", "))
	}

	return b.String()
}
