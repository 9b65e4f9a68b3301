package encode

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pipvc/internal/credential/models"
	dErrors "pipvc/pkg/domain-errors"
)

// Vocabulary prefixes bound at the top of every Turtle document.
const turtlePrologue = `@prefix cred: <https://www.w3.org/2018/credentials#> .
@prefix pip: <https://w3id.org/pip#> .
@prefix sec: <https://w3id.org/security#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .
`

// Turtle serializes the credential as a text/turtle document carrying the
// same statements as the linked-data form. Output is deterministic for the
// same credential; the proof block is emitted only when signed.
func Turtle(c *models.Credential) (string, error) {
	if c == nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential is required")
	}

	var b strings.Builder
	b.WriteString(turtlePrologue)
	b.WriteString("\n")

	fmt.Fprintf(&b, "<%s> a cred:VerifiableCredential, pip:PIPBenefitCredential ;\n", c.ID)
	fmt.Fprintf(&b, "    cred:issuer <%s> ;\n", c.Issuer)
	fmt.Fprintf(&b, "    cred:issuanceDate %s ;\n", dateTimeLiteral(c.IssuedAt))
	fmt.Fprintf(&b, "    cred:credentialSubject <%s> .\n", c.Subject)
	b.WriteString("\n")

	writeSubjectStatements(&b, c)

	if c.Proof != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "<%s> sec:proof [\n", c.ID)
		fmt.Fprintf(&b, "        a sec:%s ;\n", c.Proof.Type)
		fmt.Fprintf(&b, "        sec:created %s ;\n", stringLiteral(c.Proof.Created)+"^^xsd:dateTime")
		fmt.Fprintf(&b, "        sec:proofPurpose %s ;\n", stringLiteral(c.Proof.ProofPurpose))
		fmt.Fprintf(&b, "        sec:verificationMethod <%s> ;\n", c.Proof.VerificationMethod)
		fmt.Fprintf(&b, "        sec:proofValue %s\n", stringLiteral(c.Proof.ProofValue))
		b.WriteString("    ] .\n")
	}

	return b.String(), nil
}

func writeSubjectStatements(b *strings.Builder, c *models.Credential) {
	predicates := []string{
		fmt.Sprintf("pip:benefitType %s", stringLiteral(c.Claims.BenefitType)),
		fmt.Sprintf("pip:amount %s", stringLiteral(c.Claims.Amount)),
	}

	for _, comp := range c.Claims.Components {
		predicates = append(predicates, fmt.Sprintf("pip:component [\n        pip:name %s ;\n        pip:amount %s\n    ]",
			stringLiteral(comp.Name), stringLiteral(comp.Amount)))
	}

	// Totals carry arbitrary keys; sorted iteration keeps output stable.
	totalKeys := make([]string, 0, len(c.Claims.Totals))
	for k := range c.Claims.Totals {
		totalKeys = append(totalKeys, k)
	}
	sort.Strings(totalKeys)
	for _, k := range totalKeys {
		predicates = append(predicates, fmt.Sprintf("pip:total [\n        pip:name %s ;\n        pip:amount %s\n    ]",
			stringLiteral(k), stringLiteral(c.Claims.Totals[k])))
	}

	fmt.Fprintf(b, "<%s> %s .\n", c.Subject, strings.Join(predicates, " ;\n    "))
}

func dateTimeLiteral(t time.Time) string {
	return stringLiteral(t.UTC().Format(time.RFC3339)) + "^^xsd:dateTime"
}

// stringLiteral quotes a string per the Turtle grammar. Claim values are
// user-controlled, so quotes, backslashes, and line breaks must be escaped
// or the document structure is corrupted.
func stringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
