// Package pod talks to subject-controlled storage (a Solid pod): resolving
// the storage root from the WebID profile, reading and writing resources,
// and generating the access-control and index documents that accompany
// stored credentials.
package pod

import (
	"context"

	id "pipvc/pkg/domain"
)

// Client is the storage collaborator contract. All calls are fallible
// remote operations with no transactionality across calls.
type Client interface {
	// ResolveRoot returns the subject's storage root URL (with trailing
	// slash), discovered from their WebID profile document.
	ResolveRoot(ctx context.Context, subject id.SubjectID) (string, error)

	// Put stores content at the given resource URL with the media type.
	Put(ctx context.Context, resource string, content []byte, mediaType string) error

	// Get retrieves a resource's content and media type.
	Get(ctx context.Context, resource string) ([]byte, string, error)

	// Delete removes a resource.
	Delete(ctx context.Context, resource string) error
}
