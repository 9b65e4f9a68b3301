// Package models defines the registry's read model: one entry per issued
// credential, derived from credential lifecycle events.
package models

import (
	"time"

	credmodels "pipvc/internal/credential/models"
	id "pipvc/pkg/domain"
)

// Entry summarizes an issued credential for listing and revocation.
type Entry struct {
	ID       credmodels.CredentialID
	Subject  id.SubjectID
	Status   credmodels.Status
	IssuedAt time.Time

	// Summary claims carried for listings; the full claim set lives in
	// the stored artifacts, not the registry.
	BenefitType string
	Amount      string

	RevocationReason string
	RevokedAt        *time.Time
	SupersededBy     credmodels.CredentialID
}

// FromCredential derives a registry entry from a credential.
func FromCredential(c *credmodels.Credential) Entry {
	return Entry{
		ID:          c.ID,
		Subject:     c.Subject,
		Status:      c.Status,
		IssuedAt:    c.IssuedAt,
		BenefitType: c.Claims.BenefitType,
		Amount:      c.Claims.Amount,
	}
}
