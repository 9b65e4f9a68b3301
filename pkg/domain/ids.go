// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"net/url"
	"strings"

	dErrors "pipvc/pkg/domain-errors"
)

// SubjectID is the WebID of the person a credential is about, e.g.
// "https://user.example.org/profile/card#me". It is always an absolute
// http(s) URI; the fragment names the agent within the profile document.
type SubjectID string

// AgentID identifies any agent that can appear in an access grant: a WebID
// or a DID such as "did:web:eon.co.uk". Less constrained than SubjectID
// because third parties are configured, not authenticated.
type AgentID string

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseSubjectID(s string) (SubjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "subject ID cannot be empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid subject ID format")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "subject ID must be an absolute http(s) URI")
	}
	return SubjectID(s), nil
}

func ParseAgentID(s string) (AgentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "agent ID cannot be empty")
	}
	if strings.HasPrefix(s, "did:") {
		// did:method:specific-id needs at least a method and an identifier.
		if len(strings.SplitN(s, ":", 3)) < 3 {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid DID format")
		}
		return AgentID(s), nil
	}
	if _, err := ParseSubjectID(s); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "agent ID must be a DID or an absolute http(s) URI")
	}
	return AgentID(s), nil
}

// String methods - for logging and debugging.

func (id SubjectID) String() string { return string(id) }
func (id AgentID) String() string   { return string(id) }

// IsNil checks - used for service-layer validation.

func (id SubjectID) IsNil() bool { return id == "" }
func (id AgentID) IsNil() bool   { return id == "" }

// ProfileDocument strips the fragment from a WebID, yielding the URL of the
// profile document the WebID is defined in.
func (id SubjectID) ProfileDocument() string {
	s := string(id)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}
