// Package handler wires the registry endpoints to the registry service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	credmodels "pipvc/internal/credential/models"
	"pipvc/internal/platform/middleware"
	"pipvc/internal/registry/models"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
	"pipvc/pkg/platform/httputil"
)

// Service defines the registry operations used by the handler.
type Service interface {
	List(ctx context.Context, subject id.SubjectID) ([]models.Entry, error)
	Revoke(ctx context.Context, credentialID credmodels.CredentialID, requester id.SubjectID, reason string) (models.Entry, error)
}

// Handler exposes credential listing and revocation over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/credentials", h.HandleList)
	r.Post("/credentials/revoke", h.HandleRevoke)
}

// RevokeRequest is the request body for credential revocation.
type RevokeRequest struct {
	CredentialID string `json:"credentialId"`
	Reason       string `json:"reason"`

	parsedCredentialID credmodels.CredentialID
}

// Sanitize trims surrounding whitespace from the reason.
func (r *RevokeRequest) Sanitize() {
	r.Reason = strings.TrimSpace(r.Reason)
}

// Validate validates and parses the revocation request.
func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	// Phase 1: Size validation (fail fast on oversized input)
	if len(r.CredentialID) > 64 {
		return dErrors.New(dErrors.CodeValidation, "credentialId is too long")
	}
	if len(r.Reason) > 1024 {
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	}

	// Phase 2: Required fields. An empty reason is the service's concern
	// (invalid_reason), not a transport validation failure.
	if r.CredentialID == "" {
		return dErrors.New(dErrors.CodeValidation, "credentialId is required")
	}

	// Phase 3: Syntax validation
	parsedID, err := credmodels.ParseCredentialID(r.CredentialID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, err.Error())
	}

	r.parsedCredentialID = parsedID
	return nil
}

// ParsedCredentialID returns the validated credential ID.
func (r *RevokeRequest) ParsedCredentialID() credmodels.CredentialID {
	return r.parsedCredentialID
}

// EntryResponse is one credential in listing and revocation responses.
type EntryResponse struct {
	CredentialID     string     `json:"credentialId"`
	Subject          string     `json:"subject"`
	Status           string     `json:"status"`
	IssuedAt         time.Time  `json:"issuedAt"`
	BenefitType      string     `json:"benefitType"`
	Amount           string     `json:"amount"`
	RevocationReason string     `json:"revocationReason,omitempty"`
	RevokedAt        *time.Time `json:"revokedAt,omitempty"`
	SupersededBy     string     `json:"supersededBy,omitempty"`
}

func toEntryResponse(entry models.Entry) EntryResponse {
	return EntryResponse{
		CredentialID:     entry.ID.String(),
		Subject:          entry.Subject.String(),
		Status:           string(entry.Status),
		IssuedAt:         entry.IssuedAt.UTC(),
		BenefitType:      entry.BenefitType,
		Amount:           entry.Amount,
		RevocationReason: entry.RevocationReason,
		RevokedAt:        entry.RevokedAt,
		SupersededBy:     entry.SupersededBy.String(),
	}
}

// ListResponse is the response body for credential listing.
type ListResponse struct {
	Credentials []EntryResponse `json:"credentials"`
}

// HandleList handles GET /credentials requests. Subjects only ever see
// their own credentials; the subject comes from the bearer token, never
// from a query parameter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list credentials",
			"request_id", requestID,
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	response := ListResponse{Credentials: make([]EntryResponse, 0, len(entries))}
	for _, entry := range entries {
		response.Credentials = append(response.Credentials, toEntryResponse(entry))
	}
	httputil.WriteJSON(w, http.StatusOK, response)
}

// HandleRevoke handles POST /credentials/revoke requests.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.Revoke(ctx, req.ParsedCredentialID(), subject, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "credential revocation rejected",
			"request_id", requestID,
			"subject", subject,
			"credential_id", req.CredentialID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}
