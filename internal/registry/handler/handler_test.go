package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	credmodels "pipvc/internal/credential/models"
	"pipvc/internal/registry/models"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
	"pipvc/pkg/platform/middleware/auth"
)

const testSubject = id.SubjectID("https://user.example.org/profile/card#me")

// stubService lets each test pin the service outcome.
type stubService struct {
	entries []models.Entry
	listErr error

	revoked   models.Entry
	revokeErr error

	lastRevokeID     credmodels.CredentialID
	lastRevokeReason string
}

func (s *stubService) List(_ context.Context, _ id.SubjectID) ([]models.Entry, error) {
	return s.entries, s.listErr
}

func (s *stubService) Revoke(_ context.Context, credentialID credmodels.CredentialID, _ id.SubjectID, reason string) (models.Entry, error) {
	s.lastRevokeID = credentialID
	s.lastRevokeReason = reason
	return s.revoked, s.revokeErr
}

type RegistryHandlerSuite struct {
	suite.Suite

	service *stubService
	router  chi.Router
}

func TestRegistryHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistryHandlerSuite))
}

func (s *RegistryHandlerSuite) SetupTest() {
	s.service = &stubService{}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *RegistryHandlerSuite) entry() models.Entry {
	return models.Entry{
		ID:          credmodels.CredentialID("urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9"),
		Subject:     testSubject,
		Status:      credmodels.StatusActive,
		IssuedAt:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		BenefitType: "PIP",
		Amount:      "£162.90/week",
	}
}

func (s *RegistryHandlerSuite) do(method, path, body string, authenticated bool) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if authenticated {
		req = req.WithContext(auth.WithSubject(req.Context(), testSubject))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RegistryHandlerSuite) TestList() {
	s.Run("returns the subject's credentials", func() {
		s.service.entries = []models.Entry{s.entry()}

		rec := s.do(http.MethodGet, "/credentials", "", true)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp ListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Credentials, 1)
		s.Equal("urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9", resp.Credentials[0].CredentialID)
		s.Equal("active", resp.Credentials[0].Status)
		s.Equal("PIP", resp.Credentials[0].BenefitType)
		s.Empty(resp.Credentials[0].RevocationReason)
	})

	s.Run("empty registry yields an empty list, not null", func() {
		s.service.entries = nil

		rec := s.do(http.MethodGet, "/credentials", "", true)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"credentials":[]`)
	})

	s.Run("requires authentication context", func() {
		rec := s.do(http.MethodGet, "/credentials", "", false)
		s.Equal(http.StatusInternalServerError, rec.Code)
	})
}

func (s *RegistryHandlerSuite) TestRevoke() {
	s.Run("revokes and returns the updated entry", func() {
		revokedAt := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
		revoked := s.entry()
		revoked.Status = credmodels.StatusRevoked
		revoked.RevocationReason = "no longer eligible"
		revoked.RevokedAt = &revokedAt
		s.service.revoked = revoked

		rec := s.do(http.MethodPost, "/credentials/revoke",
			`{"credentialId":"urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9","reason":"no longer eligible"}`, true)
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp EntryResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Equal("revoked", resp.Status)
		s.Equal("no longer eligible", resp.RevocationReason)
		s.Require().NotNil(resp.RevokedAt)

		s.Equal(credmodels.CredentialID("urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9"), s.service.lastRevokeID)
		s.Equal("no longer eligible", s.service.lastRevokeReason)
	})

	s.Run("trims the reason before the service sees it", func() {
		s.service.revoked = s.entry()
		rec := s.do(http.MethodPost, "/credentials/revoke",
			`{"credentialId":"urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9","reason":"  spaced  "}`, true)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal("spaced", s.service.lastRevokeReason)
	})

	s.Run("rejects malformed credential ids", func() {
		rec := s.do(http.MethodPost, "/credentials/revoke", `{"credentialId":"not-a-urn","reason":"x"}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing credential id fails validation", func() {
		rec := s.do(http.MethodPost, "/credentials/revoke", `{"reason":"x"}`, true)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown credential",
			serviceErr: dErrors.New(dErrors.CodeNotFound, "credential not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "foreign credential",
			serviceErr: dErrors.New(dErrors.CodeForbidden, "only the credential subject can revoke it"),
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "empty reason",
			serviceErr: dErrors.New(dErrors.CodeInvalidReason, "revocation reason is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_reason",
		},
		{
			name:       "already revoked",
			serviceErr: dErrors.New(dErrors.CodeAlreadyRevoked, "credential is already revoked"),
			wantStatus: http.StatusConflict,
			wantCode:   "already_revoked",
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.revokeErr = tt.serviceErr

			rec := s.do(http.MethodPost, "/credentials/revoke",
				`{"credentialId":"urn:uuid:0b9c83f3-3c3f-4b86-9a36-bd3851ed14b9","reason":"some reason"}`, true)
			s.Equal(tt.wantStatus, rec.Code)

			var resp map[string]string
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			s.Equal(tt.wantCode, resp["error"])
		})
	}
}
