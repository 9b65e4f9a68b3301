package pod

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

const storagePredicate = "http://www.w3.org/ns/pim/space#storage"

// HTTPClient is the production pod client speaking plain Solid HTTP:
// Turtle profile documents, PUT with media types, no transport extensions.
type HTTPClient struct {
	client *http.Client
	logger *slog.Logger
}

// HTTPOption configures the HTTP pod client.
type HTTPOption func(*HTTPClient)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithLogger configures a logger for the pod client.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(h *HTTPClient) {
		h.logger = logger
	}
}

// NewHTTPClient creates a pod client with a sane default timeout.
func NewHTTPClient(opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ResolveRoot fetches the subject's WebID profile and extracts the
// pim:storage triple pointing at their storage root.
func (h *HTTPClient) ResolveRoot(ctx context.Context, subject id.SubjectID) (string, error) {
	profileURL := subject.ProfileDocument()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodePodUnresolvable, "invalid profile document URL")
	}
	req.Header.Set("Accept", "text/turtle")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodePodUnresolvable, "failed to fetch WebID profile")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", dErrors.New(dErrors.CodePodUnresolvable,
			fmt.Sprintf("WebID profile fetch returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodePodUnresolvable, "failed to read WebID profile")
	}

	root, ok := storageRoot(string(body))
	if !ok {
		return "", dErrors.New(dErrors.CodePodUnresolvable, "WebID profile declares no storage root")
	}

	h.logger.DebugContext(ctx, "resolved pod storage root",
		"subject", subject,
		"root", root,
	)
	return root, nil
}

// storageRoot scans a Turtle profile document for the pim:storage triple.
// A full Turtle parser is deliberately not used: profiles in the wild
// declare the prefix in a handful of ways, and the object of this one
// predicate is always a plain IRI.
func storageRoot(doc string) (string, bool) {
	idx := strings.Index(doc, "<"+storagePredicate+">")
	if idx < 0 {
		idx = strings.Index(doc, "pim:storage")
	}
	if idx < 0 {
		idx = strings.Index(doc, "space:storage")
	}
	if idx < 0 {
		return "", false
	}

	rest := doc[idx:]
	open := strings.IndexByte(rest[1:], '<')
	if open < 0 {
		return "", false
	}
	rest = rest[open+2:]
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return "", false
	}

	root := rest[:end]
	if root == "" {
		return "", false
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root, true
}

// Put stores a resource. 2xx responses are success; everything else is an
// error carrying the status code.
func (h *HTTPClient) Put(ctx context.Context, resource string, content []byte, mediaType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, resource, strings.NewReader(string(content)))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "invalid resource URL")
	}
	req.Header.Set("Content-Type", mediaType)

	resp, err := h.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "pod write failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("pod write to %s returned %d", resource, resp.StatusCode))
	}
	return nil
}

// Get retrieves a resource's content and media type.
func (h *HTTPClient) Get(ctx context.Context, resource string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "invalid resource URL")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "pod read failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "resource not found: "+resource)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("pod read of %s returned %d", resource, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read resource body")
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// Delete removes a resource; 404 is reported as not found.
func (h *HTTPClient) Delete(ctx context.Context, resource string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, resource, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "invalid resource URL")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "pod delete failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return dErrors.New(dErrors.CodeNotFound, "resource not found: "+resource)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("pod delete of %s returned %d", resource, resp.StatusCode))
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
