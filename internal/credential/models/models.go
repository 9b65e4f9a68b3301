// Package models defines the canonical credential entity shared by the
// builder, encoders, signer, and registry.
//
// The Credential here is the single source of truth: both serialized forms
// (JSON-LD and Turtle) are always derived from it, never from each other,
// so a lossy conversion between encodings cannot drop fields.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

const (
	// TypeVerifiableCredential is the generic W3C credential type marker.
	TypeVerifiableCredential = "VerifiableCredential"

	// TypePIPBenefitCredential is the domain-specific type marker for
	// Personal Independence Payment awards.
	TypePIPBenefitCredential = "PIPBenefitCredential"

	credentialIDPrefix = "urn:uuid:"
)

// CredentialID is the URN identifier assigned to issued credentials.
type CredentialID string

// NewCredentialID generates a fresh credential URN. IDs are never reused;
// every build gets its own.
func NewCredentialID() CredentialID {
	return CredentialID(credentialIDPrefix + uuid.NewString())
}

// ParseCredentialID validates and parses a credential ID string.
func ParseCredentialID(value string) (CredentialID, error) {
	if strings.TrimSpace(value) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential_id is required")
	}
	if !strings.HasPrefix(value, credentialIDPrefix) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential_id must be a urn:uuid URN")
	}
	if _, err := uuid.Parse(strings.TrimPrefix(value, credentialIDPrefix)); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid credential_id format")
	}
	return CredentialID(value), nil
}

// String returns the credential ID as a string.
func (id CredentialID) String() string { return string(id) }

// UUID returns the bare UUID portion, used to derive storage paths.
func (id CredentialID) UUID() string {
	return strings.TrimPrefix(string(id), credentialIDPrefix)
}

// Status captures the credential lifecycle state.
type Status string

const (
	StatusActive     Status = "active"
	StatusSuperseded Status = "superseded"
	StatusRevoked    Status = "revoked"
)

// CanTransitionTo reports whether the one-way lifecycle permits moving to
// next. There is no reverse transition and no reentry.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusActive && (next == StatusRevoked || next == StatusSuperseded)
}

// Component is one element of the award breakdown, e.g. daily living or
// mobility, with its weekly amount.
type Component struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// BenefitClaims is the claim set asserted about the subject. BenefitType
// and Amount are mandatory; the breakdown and totals are optional.
type BenefitClaims struct {
	BenefitType string            `json:"benefitType"`
	Amount      string            `json:"amount"`
	Components  []Component       `json:"components,omitempty"`
	Totals      map[string]string `json:"totals,omitempty"`
}

// IsZero reports whether no claims are present at all.
func (c BenefitClaims) IsZero() bool {
	return c.BenefitType == "" && c.Amount == "" && len(c.Components) == 0 && len(c.Totals) == 0
}

// Proof is the signature envelope attached to a signed credential.
// Field names follow the Linked Data Proofs vocabulary.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// ProofTypeEd25519Signature2020 is the only proof type this issuer emits.
const ProofTypeEd25519Signature2020 = "Ed25519Signature2020"

// ProofPurposeAssertion is the proof purpose for issued credentials.
const ProofPurposeAssertion = "assertionMethod"

// Credential is the canonical in-memory credential. Encoders and the
// signer derive everything from this value.
type Credential struct {
	ID       CredentialID
	Subject  id.SubjectID
	Issuer   string
	IssuedAt time.Time
	Claims   BenefitClaims

	// Proof is nil until the credential is signed. Once attached it is
	// never replaced; preview credentials stay unsigned.
	Proof *Proof

	Status           Status
	RevocationReason string
	RevokedAt        *time.Time
	SupersededBy     CredentialID
}

// Signed reports whether a proof has been attached.
func (c *Credential) Signed() bool { return c.Proof != nil }

// WithProof returns a copy of the credential with the proof attached.
// The receiver is not modified.
func (c Credential) WithProof(proof Proof) Credential {
	c.Proof = &proof
	return c
}
