package encode

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pipvc/internal/credential/models"
	id "pipvc/pkg/domain"
)

type EncodeSuite struct {
	suite.Suite

	credential *models.Credential
}

func TestEncodeSuite(t *testing.T) {
	suite.Run(t, new(EncodeSuite))
}

func (s *EncodeSuite) SetupTest() {
	s.credential = &models.Credential{
		ID:       models.CredentialID("urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9"),
		Subject:  id.SubjectID("https://user.example.org/profile/card#me"),
		Issuer:   "did:web:pip.gov.uk",
		IssuedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Claims: models.BenefitClaims{
			BenefitType: "PIP",
			Amount:      "£162.90/week",
			Components: []models.Component{
				{Name: "daily_living", Amount: "£108.55/week"},
				{Name: "mobility", Amount: "£54.35/week"},
			},
			Totals: map[string]string{"weekly": "£162.90"},
		},
		Status: models.StatusActive,
	}
}

func (s *EncodeSuite) signed() *models.Credential {
	signed := s.credential.WithProof(models.Proof{
		Type:               models.ProofTypeEd25519Signature2020,
		Created:            "2026-03-14T09:30:01Z",
		VerificationMethod: "did:web:pip.gov.uk#key-1",
		ProofPurpose:       models.ProofPurposeAssertion,
		ProofValue:         "z4oey5q2M3XKaxup3tmCN3KVF8qgTJAZfv3a",
	})
	return &signed
}

func (s *EncodeSuite) TestJSONLD() {
	s.Run("carries all credential fields", func() {
		out, err := JSONLD(s.credential)
		s.Require().NoError(err)

		var doc map[string]interface{}
		s.Require().NoError(json.Unmarshal(out, &doc))

		s.Equal([]interface{}{ContextCredentialsV1, ContextPIPV1}, doc["@context"])
		s.Equal("urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9", doc["id"])
		s.Equal([]interface{}{"VerifiableCredential", "PIPBenefitCredential"}, doc["type"])
		s.Equal("did:web:pip.gov.uk", doc["issuer"])
		s.Equal("2026-03-14T09:30:00Z", doc["issuanceDate"])

		subject, ok := doc["credentialSubject"].(map[string]interface{})
		s.Require().True(ok)
		s.Equal("https://user.example.org/profile/card#me", subject["id"])
		s.Equal("PIP", subject["benefitType"])
		s.Equal("£162.90/week", subject["amount"])
		s.Len(subject["components"], 2)
	})

	s.Run("omits proof when unsigned", func() {
		out, err := JSONLD(s.credential)
		s.Require().NoError(err)
		s.NotContains(string(out), "proof")
	})

	s.Run("includes proof when signed", func() {
		out, err := JSONLD(s.signed())
		s.Require().NoError(err)

		var doc map[string]interface{}
		s.Require().NoError(json.Unmarshal(out, &doc))
		proof, ok := doc["proof"].(map[string]interface{})
		s.Require().True(ok)
		s.Equal("Ed25519Signature2020", proof["type"])
		s.Equal("did:web:pip.gov.uk#key-1", proof["verificationMethod"])
		s.Equal("assertionMethod", proof["proofPurpose"])
	})

	s.Run("is deterministic", func() {
		first, err := JSONLD(s.credential)
		s.Require().NoError(err)
		second, err := JSONLD(s.credential)
		s.Require().NoError(err)
		s.Equal(first, second)
	})

	s.Run("rejects nil credential", func() {
		_, err := JSONLD(nil)
		s.Require().Error(err)
	})
}

func (s *EncodeSuite) TestTurtle() {
	s.Run("carries all credential fields", func() {
		out, err := Turtle(s.credential)
		s.Require().NoError(err)

		s.Contains(out, "@prefix cred:")
		s.Contains(out, "@prefix pip:")
		s.Contains(out, "<urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9> a cred:VerifiableCredential, pip:PIPBenefitCredential ;")
		s.Contains(out, "cred:issuer <did:web:pip.gov.uk> ;")
		s.Contains(out, `cred:issuanceDate "2026-03-14T09:30:00Z"^^xsd:dateTime ;`)
		s.Contains(out, "cred:credentialSubject <https://user.example.org/profile/card#me> .")
		s.Contains(out, `pip:benefitType "PIP"`)
		s.Contains(out, `pip:amount "£162.90/week"`)
		s.Contains(out, `pip:name "daily_living"`)
		s.Contains(out, `pip:name "weekly"`)
	})

	s.Run("omits proof when unsigned", func() {
		out, err := Turtle(s.credential)
		s.Require().NoError(err)
		s.NotContains(out, "sec:proof")
	})

	s.Run("includes proof when signed", func() {
		out, err := Turtle(s.signed())
		s.Require().NoError(err)
		s.Contains(out, "sec:proof [")
		s.Contains(out, "a sec:Ed25519Signature2020 ;")
		s.Contains(out, "sec:verificationMethod <did:web:pip.gov.uk#key-1> ;")
		s.Contains(out, `sec:proofValue "z4oey5q2M3XKaxup3tmCN3KVF8qgTJAZfv3a"`)
	})

	s.Run("is deterministic", func() {
		first, err := Turtle(s.credential)
		s.Require().NoError(err)
		second, err := Turtle(s.credential)
		s.Require().NoError(err)
		s.Equal(first, second)
	})

	s.Run("escapes literals", func() {
		s.credential.Claims.Amount = "£10 \"per\" week\nback\\slash\ttab\rcr"

		out, err := Turtle(s.credential)
		s.Require().NoError(err)
		s.Contains(out, `pip:amount "£10 \"per\" week\nback\\slash\ttab\rcr"`)
		// No raw control characters may survive inside the literal.
		s.False(strings.Contains(out, "\"per\" week\nback"))
	})
}

// Both serializations must assert the same facts; a credential encoded to
// JSON-LD and Turtle carries identical claim values.
func (s *EncodeSuite) TestCrossFormatEquivalence() {
	jsonldOut, err := JSONLD(s.credential)
	s.Require().NoError(err)
	turtleOut, err := Turtle(s.credential)
	s.Require().NoError(err)

	var doc map[string]interface{}
	s.Require().NoError(json.Unmarshal(jsonldOut, &doc))
	subject := doc["credentialSubject"].(map[string]interface{})

	s.Contains(turtleOut, "<"+doc["id"].(string)+">")
	s.Contains(turtleOut, "<"+doc["issuer"].(string)+">")
	s.Contains(turtleOut, `"`+subject["benefitType"].(string)+`"`)
	s.Contains(turtleOut, `"`+subject["amount"].(string)+`"`)
}
