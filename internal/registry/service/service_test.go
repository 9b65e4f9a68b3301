package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	credmodels "pipvc/internal/credential/models"
	"pipvc/internal/registry/store"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

const (
	testSubject = id.SubjectID("https://user.example.org/profile/card#me")
	otherAgent  = id.SubjectID("https://mallory.example.org/profile/card#me")
)

type RegistryServiceSuite struct {
	suite.Suite

	store   *store.InMemoryStore
	service *Service
	now     time.Time
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.now = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	s.service = NewService(s.store, WithClock(func() time.Time { return s.now }))
}

func (s *RegistryServiceSuite) record(subject id.SubjectID, issuedAt time.Time) *credmodels.Credential {
	credential := &credmodels.Credential{
		ID:       credmodels.NewCredentialID(),
		Subject:  subject,
		Issuer:   "did:web:pip.gov.uk",
		IssuedAt: issuedAt,
		Claims: credmodels.BenefitClaims{
			BenefitType: "PIP",
			Amount:      "£162.90/week",
		},
		Status: credmodels.StatusActive,
	}
	s.Require().NoError(s.service.Record(context.Background(), credential))
	return credential
}

func (s *RegistryServiceSuite) TestRecord() {
	s.Run("stores a summary entry", func() {
		credential := s.record(testSubject, s.now)

		entry, err := s.store.FindByID(context.Background(), credential.ID)
		s.Require().NoError(err)
		s.Equal(credential.ID, entry.ID)
		s.Equal(testSubject, entry.Subject)
		s.Equal("PIP", entry.BenefitType)
		s.Equal(credmodels.StatusActive, entry.Status)
	})

	s.Run("rejects nil credential", func() {
		err := s.service.Record(context.Background(), nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *RegistryServiceSuite) TestList() {
	s.Run("orders by issuance time descending", func() {
		oldest := s.record(testSubject, s.now.Add(-48*time.Hour))
		newest := s.record(testSubject, s.now)
		middle := s.record(testSubject, s.now.Add(-24*time.Hour))
		s.record(otherAgent, s.now)

		entries, err := s.service.List(context.Background(), testSubject)
		s.Require().NoError(err)
		s.Require().Len(entries, 3)
		s.Equal(newest.ID, entries[0].ID)
		s.Equal(middle.ID, entries[1].ID)
		s.Equal(oldest.ID, entries[2].ID)
	})

	s.Run("returns empty for subject with no credentials", func() {
		entries, err := s.service.List(context.Background(), id.SubjectID("https://nobody.example.org/profile/card#me"))
		s.Require().NoError(err)
		s.Empty(entries)
	})

	s.Run("rejects empty subject", func() {
		_, err := s.service.List(context.Background(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *RegistryServiceSuite) TestRevoke() {
	s.Run("marks the credential revoked", func() {
		credential := s.record(testSubject, s.now)

		entry, err := s.service.Revoke(context.Background(), credential.ID, testSubject, "no longer eligible")
		s.Require().NoError(err)
		s.Equal(credmodels.StatusRevoked, entry.Status)
		s.Equal("no longer eligible", entry.RevocationReason)
		s.Require().NotNil(entry.RevokedAt)
		s.Equal(s.now, *entry.RevokedAt)

		stored, err := s.store.FindByID(context.Background(), credential.ID)
		s.Require().NoError(err)
		s.Equal(credmodels.StatusRevoked, stored.Status)
	})

	s.Run("second revoke reports already_revoked", func() {
		credential := s.record(testSubject, s.now)

		_, err := s.service.Revoke(context.Background(), credential.ID, testSubject, "first")
		s.Require().NoError(err)

		_, err = s.service.Revoke(context.Background(), credential.ID, testSubject, "second")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRevoked))

		// The original revocation is untouched.
		stored, err := s.store.FindByID(context.Background(), credential.ID)
		s.Require().NoError(err)
		s.Equal("first", stored.RevocationReason)
	})

	s.Run("unknown credential reports not_found", func() {
		_, err := s.service.Revoke(context.Background(), credmodels.NewCredentialID(), testSubject, "reason")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-subject requester is forbidden", func() {
		credential := s.record(testSubject, s.now)

		_, err := s.service.Revoke(context.Background(), credential.ID, otherAgent, "reason")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		stored, err := s.store.FindByID(context.Background(), credential.ID)
		s.Require().NoError(err)
		s.Equal(credmodels.StatusActive, stored.Status)
	})

	s.Run("empty reason leaves status unchanged", func() {
		credential := s.record(testSubject, s.now)

		for _, reason := range []string{"", "   ", "\t\n"} {
			_, err := s.service.Revoke(context.Background(), credential.ID, testSubject, reason)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidReason))
		}

		stored, err := s.store.FindByID(context.Background(), credential.ID)
		s.Require().NoError(err)
		s.Equal(credmodels.StatusActive, stored.Status)
		s.Empty(stored.RevocationReason)
	})

	s.Run("superseded credential cannot be revoked", func() {
		credential := s.record(testSubject, s.now)
		entry, err := s.store.FindByID(context.Background(), credential.ID)
		s.Require().NoError(err)
		entry.Status = credmodels.StatusSuperseded
		s.Require().NoError(s.store.Update(context.Background(), entry))

		_, err = s.service.Revoke(context.Background(), credential.ID, testSubject, "reason")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("missing requester is unauthorized", func() {
		credential := s.record(testSubject, s.now)
		_, err := s.service.Revoke(context.Background(), credential.ID, "", "reason")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
