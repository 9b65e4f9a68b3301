// Package handler wires the issuance endpoints to the issuance service.
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"pipvc/internal/credential/encode"
	"pipvc/internal/credential/models"
	"pipvc/internal/issuance"
	"pipvc/internal/platform/middleware"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
	"pipvc/pkg/platform/httputil"
)

// Service defines the issuance operations used by the handler.
type Service interface {
	Preview(ctx context.Context, subject id.SubjectID, claims models.BenefitClaims) (*models.Credential, error)
	Issue(ctx context.Context, req issuance.IssueRequest) (*models.Credential, *issuance.Result, error)
}

// Handler exposes credential issuance over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an issuance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts issuance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials/preview", h.HandlePreview)
	r.Post("/credentials/issue", h.HandleIssue)
}

// IssueRequest is the request body for preview and issue.
type IssueRequest struct {
	Claims  models.BenefitClaims `json:"claims"`
	PodRoot string               `json:"podRoot,omitempty"`
}

// Validate validates the issuance request.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	// Phase 1: Size validation (fail fast on oversized input)
	if len(r.Claims.BenefitType) > 128 {
		return dErrors.New(dErrors.CodeValidation, "claims.benefitType is too long")
	}
	if len(r.Claims.Amount) > 128 {
		return dErrors.New(dErrors.CodeValidation, "claims.amount is too long")
	}
	if len(r.PodRoot) > 2048 {
		return dErrors.New(dErrors.CodeValidation, "podRoot is too long")
	}

	// Phase 2: Required fields
	if r.Claims.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "claims are required")
	}

	// Phase 3: Syntax validation. Full claim-schema validation happens in
	// the builder; the pod root override must be an absolute http(s) URL.
	if r.PodRoot != "" {
		u, err := url.Parse(r.PodRoot)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return dErrors.New(dErrors.CodeBadRequest, "podRoot must be an absolute http(s) URL")
		}
	}
	return nil
}

// Sanitize trims surrounding whitespace from the pod root override.
func (r *IssueRequest) Sanitize() {
	r.PodRoot = strings.TrimSpace(r.PodRoot)
}

// PreviewResponse carries the unsigned credential in both serializations.
type PreviewResponse struct {
	Credential map[string]interface{} `json:"credential"`
	Turtle     string                 `json:"turtle"`
}

// IssueResponse carries the signed credential and the per-step outcome.
type IssueResponse struct {
	Credential map[string]interface{} `json:"credential"`
	Result     *issuance.Result       `json:"result"`
}

// HandlePreview handles POST /credentials/preview requests. The returned
// credential is unsigned and nothing is persisted.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	credential, err := h.service.Preview(ctx, subject, req.Claims)
	if err != nil {
		h.logger.WarnContext(ctx, "credential preview rejected",
			"request_id", requestID,
			"subject", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	turtle, err := encode.Turtle(credential)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, PreviewResponse{
		Credential: encode.Document(credential, false),
		Turtle:     turtle,
	})
}

// HandleIssue handles POST /credentials/issue requests.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	subject, err := httputil.RequireSubject(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	credential, result, err := h.service.Issue(ctx, issuance.IssueRequest{
		Subject:      subject,
		Claims:       req.Claims,
		RootOverride: req.PodRoot,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "credential issuance failed",
			"request_id", requestID,
			"subject", subject,
			"error", err,
		)
		writeIssueError(w, result, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueResponse{
		Credential: encode.Document(credential, true),
		Result:     result,
	})
}

// writeIssueError includes the per-step result alongside the error so a
// caller of a failed issuance can see which writes did land.
func writeIssueError(w http.ResponseWriter, result *issuance.Result, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		httputil.WriteError(w, err)
		return
	}

	response := map[string]interface{}{
		"error": string(domainErr.Code),
	}
	if domainErr.Message != "" {
		response["error_description"] = domainErr.Message
	}
	if result != nil {
		response["result"] = result
	}
	httputil.WriteJSON(w, httputil.DomainCodeToHTTPStatus(domainErr.Code), response)
}
