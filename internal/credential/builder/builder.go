// Package builder constructs canonical credentials from a subject and a
// claim set. It is side-effect free: no storage, no key material, no
// encoding concerns.
package builder

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"pipvc/internal/credential/models"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

// Clock supplies issuance timestamps so tests can pin time.
type Clock func() time.Time

// Option configures the builder.
type Option func(*Builder)

// WithClock overrides the issuance clock.
func WithClock(clock Clock) Option {
	return func(b *Builder) {
		b.now = clock
	}
}

// Builder creates credentials for a fixed issuer identity.
type Builder struct {
	issuer string
	now    Clock
	schema *gojsonschema.Schema
}

// New creates a Builder issuing under the given DID.
func New(issuerDID string, opts ...Option) (*Builder, error) {
	if strings.TrimSpace(issuerDID) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "issuer DID is required")
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(benefitClaimsSchema))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "invalid benefit claims schema")
	}

	b := &Builder{
		issuer: issuerDID,
		now:    func() time.Time { return time.Now().UTC() },
		schema: schema,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build validates the inputs and returns a fresh, unsigned, active
// credential. Every call assigns a new urn:uuid id.
func (b *Builder) Build(subject id.SubjectID, claims models.BenefitClaims) (*models.Credential, error) {
	if subject.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "subject is required")
	}
	if _, err := id.ParseSubjectID(subject.String()); err != nil {
		return nil, err
	}
	if claims.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "claims cannot be empty")
	}
	if err := b.validateClaims(claims); err != nil {
		return nil, err
	}

	return &models.Credential{
		ID:       models.NewCredentialID(),
		Subject:  subject,
		Issuer:   b.issuer,
		IssuedAt: b.now().UTC().Truncate(time.Second),
		Claims:   claims,
		Status:   models.StatusActive,
	}, nil
}

// validateClaims checks the claim set against the embedded JSON Schema, so
// the required/optional key split stays declared in one place.
func (b *Builder) validateClaims(claims models.BenefitClaims) error {
	doc, err := json.Marshal(claims)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to marshal claims")
	}

	result, err := b.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "claims schema validation failed")
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return dErrors.New(dErrors.CodeInvalidInput, "invalid claims: "+strings.Join(details, "; "))
	}
	return nil
}
