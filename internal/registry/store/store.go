package store

import (
	"context"

	"pipvc/internal/registry/models"
	credmodels "pipvc/internal/credential/models"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "credential not found")
)

// Store persists registry entries.
type Store interface {
	Save(ctx context.Context, entry models.Entry) error
	FindByID(ctx context.Context, id credmodels.CredentialID) (models.Entry, error)
	// ListBySubject returns the subject's entries ordered by issuance
	// time, most recent first.
	ListBySubject(ctx context.Context, subject id.SubjectID) ([]models.Entry, error)
	Update(ctx context.Context, entry models.Entry) error
}
