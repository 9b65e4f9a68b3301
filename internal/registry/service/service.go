// Package service implements the credential registry operations: listing a
// subject's issued credentials and revoking one.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	credmodels "pipvc/internal/credential/models"
	"pipvc/internal/registry/models"
	"pipvc/internal/registry/store"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

// Clock supplies revocation timestamps.
type Clock func() time.Time

// Option configures the registry service.
type Option func(*Service)

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the revocation clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.now = clock
	}
}

// Service tracks issued credentials and their lifecycle state.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    Clock
}

// NewService creates a registry service over the given store.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record registers a freshly issued credential. Called by the issuance
// pipeline after the artifacts are durably stored.
func (s *Service) Record(ctx context.Context, credential *credmodels.Credential) error {
	if credential == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "credential is required")
	}
	return s.store.Save(ctx, models.FromCredential(credential))
}

// List returns the subject's credentials ordered by issuance time, most
// recent first.
func (s *Service) List(ctx context.Context, subject id.SubjectID) ([]models.Entry, error) {
	if subject.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "subject is required")
	}
	return s.store.ListBySubject(ctx, subject)
}

// Revoke transitions a credential to revoked. The transition is one-way:
// a second revoke attempt fails with already_revoked rather than silently
// succeeding, so callers can distinguish a repeat from a first revocation.
func (s *Service) Revoke(ctx context.Context, credentialID credmodels.CredentialID, requester id.SubjectID, reason string) (models.Entry, error) {
	if requester.IsNil() {
		return models.Entry{}, dErrors.New(dErrors.CodeUnauthorized, "requester is required")
	}
	if strings.TrimSpace(reason) == "" {
		return models.Entry{}, dErrors.New(dErrors.CodeInvalidReason, "revocation reason is required")
	}

	entry, err := s.store.FindByID(ctx, credentialID)
	if err != nil {
		return models.Entry{}, err
	}

	if entry.Subject != requester {
		return models.Entry{}, dErrors.New(dErrors.CodeForbidden, "only the credential subject can revoke it")
	}
	if entry.Status == credmodels.StatusRevoked {
		return models.Entry{}, dErrors.New(dErrors.CodeAlreadyRevoked, "credential is already revoked")
	}
	if !entry.Status.CanTransitionTo(credmodels.StatusRevoked) {
		return models.Entry{}, dErrors.New(dErrors.CodeConflict, "credential is not active")
	}

	revokedAt := s.now().UTC()
	entry.Status = credmodels.StatusRevoked
	entry.RevocationReason = strings.TrimSpace(reason)
	entry.RevokedAt = &revokedAt

	if err := s.store.Update(ctx, entry); err != nil {
		return models.Entry{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update registry entry")
	}

	s.logger.InfoContext(ctx, "credential revoked",
		"credential_id", entry.ID,
		"subject", entry.Subject,
	)
	return entry, nil
}
