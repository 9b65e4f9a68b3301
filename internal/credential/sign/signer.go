// Package sign computes and verifies integrity proofs over a credential's
// canonical content. The proof covers everything except the proof block
// itself, so attaching the proof never invalidates it.
package sign

import (
	"context"
	"crypto/ed25519"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"pipvc/internal/credential/encode"
	"pipvc/internal/credential/models"
	dErrors "pipvc/pkg/domain-errors"
)

// Clock supplies proof creation timestamps.
type Clock func() time.Time

// Option configures the signer.
type Option func(*Signer)

// WithClock overrides the proof timestamp clock.
func WithClock(clock Clock) Option {
	return func(s *Signer) {
		s.now = clock
	}
}

// Signer produces Ed25519Signature2020 proofs under a fixed verification
// method.
type Signer struct {
	keys   KeyStore
	method string
	now    Clock
}

// New creates a signer using keys from the store, referenced by the given
// verification method (issuer DID plus key fragment).
func New(keys KeyStore, verificationMethod string, opts ...Option) *Signer {
	s := &Signer{
		keys:   keys,
		method: verificationMethod,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign canonicalizes the credential's proof-less content, signs it, and
// returns the proof envelope. The credential itself is not modified.
func (s *Signer) Sign(ctx context.Context, c *models.Credential) (*models.Proof, error) {
	if c == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "credential is required")
	}
	if c.Signed() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credential already carries a proof")
	}

	canonical, err := Canonicalize(encode.Document(c, false))
	if err != nil {
		return nil, err
	}

	signature, err := s.keys.Sign(ctx, s.method, canonical)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSigningFailed, "signing key unavailable")
	}

	return &models.Proof{
		Type:               models.ProofTypeEd25519Signature2020,
		Created:            s.now().UTC().Format(time.RFC3339),
		ProofPurpose:       models.ProofPurposeAssertion,
		VerificationMethod: s.method,
		ProofValue:         encodeMultibase(signature),
	}, nil
}

// Verify recomputes the canonical content and checks the attached proof
// against the published public key. Structural mismatches (missing proof,
// undecodable proof value, unknown key) report false without error; only a
// malformed verification method reference is an error.
func (s *Signer) Verify(ctx context.Context, c *models.Credential) (bool, error) {
	_ = ctx
	if c == nil || c.Proof == nil {
		return false, nil
	}

	if !strings.Contains(c.Proof.VerificationMethod, "#") {
		return false, dErrors.New(dErrors.CodeInvalidInput, "malformed verification method reference")
	}

	publicKey, err := s.keys.PublicKey(c.Proof.VerificationMethod)
	if err != nil {
		return false, nil
	}

	signature, ok := decodeMultibase(c.Proof.ProofValue)
	if !ok || len(signature) != ed25519.SignatureSize {
		return false, nil
	}

	canonical, err := Canonicalize(encode.Document(c, false))
	if err != nil {
		return false, err
	}

	return ed25519.Verify(publicKey, canonical, signature), nil
}

// encodeMultibase encodes a signature as a multibase base58btc string.
func encodeMultibase(data []byte) string {
	return "z" + base58.Encode(data)
}

func decodeMultibase(value string) ([]byte, bool) {
	rest, ok := strings.CutPrefix(value, "z")
	if !ok || rest == "" {
		return nil, false
	}
	data, err := base58.Decode(rest)
	if err != nil {
		return nil, false
	}
	return data, true
}
