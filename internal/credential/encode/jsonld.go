// Package encode derives the two serialized representations of a
// credential. Both encoders are pure functions of the credential's fields:
// encoding the same credential twice yields byte-identical output, and an
// unsigned credential never produces any proof block.
package encode

import (
	"encoding/json"
	"time"

	"pipvc/internal/credential/models"
	dErrors "pipvc/pkg/domain-errors"
)

// Context URLs declared on every linked-data document.
const (
	ContextCredentialsV1 = "https://www.w3.org/2018/credentials/v1"
	ContextPIPV1         = "https://w3id.org/pip/v1"
)

// Media types of the produced artifacts.
const (
	MediaTypeJSONLD = "application/ld+json"
	MediaTypeTurtle = "text/turtle"
)

// Document assembles the linked-data document for a credential. The proof
// block is included only when withProof is set and the credential is
// signed; the signer uses withProof=false to canonicalize the proof-less
// content.
func Document(c *models.Credential, withProof bool) map[string]interface{} {
	subject := map[string]interface{}{
		"id":          c.Subject.String(),
		"benefitType": c.Claims.BenefitType,
		"amount":      c.Claims.Amount,
	}
	if len(c.Claims.Components) > 0 {
		components := make([]interface{}, 0, len(c.Claims.Components))
		for _, comp := range c.Claims.Components {
			components = append(components, map[string]interface{}{
				"name":   comp.Name,
				"amount": comp.Amount,
			})
		}
		subject["components"] = components
	}
	if len(c.Claims.Totals) > 0 {
		totals := make(map[string]interface{}, len(c.Claims.Totals))
		for k, v := range c.Claims.Totals {
			totals[k] = v
		}
		subject["totals"] = totals
	}

	doc := map[string]interface{}{
		"@context":          []interface{}{ContextCredentialsV1, ContextPIPV1},
		"id":                c.ID.String(),
		"type":              []interface{}{models.TypeVerifiableCredential, models.TypePIPBenefitCredential},
		"issuer":            c.Issuer,
		"issuanceDate":      c.IssuedAt.UTC().Format(time.RFC3339),
		"credentialSubject": subject,
	}

	if withProof && c.Proof != nil {
		doc["proof"] = map[string]interface{}{
			"type":               c.Proof.Type,
			"created":            c.Proof.Created,
			"proofPurpose":       c.Proof.ProofPurpose,
			"verificationMethod": c.Proof.VerificationMethod,
			"proofValue":         c.Proof.ProofValue,
		}
	}

	return doc
}

// JSONLD serializes the credential as an application/ld+json document.
// Map keys are marshaled in sorted order, so output is deterministic.
func JSONLD(c *models.Credential) ([]byte, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential is required")
	}
	out, err := json.MarshalIndent(Document(c, true), "", "  ")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to marshal credential document")
	}
	return append(out, '\n'), nil
}
