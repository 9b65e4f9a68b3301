// Package auth provides the bearer-token middleware that puts the
// authenticated subject WebID on the request context.
//
// Token issuance and the full Solid-OIDC exchange happen in an external
// identity provider; this middleware only checks the token signature and
// extracts the already-validated webid claim. Handlers never see raw
// tokens, only a typed SubjectID.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

// TokenVerifier validates a bearer token and returns the subject it was
// issued to.
type TokenVerifier interface {
	Verify(token string) (id.SubjectID, error)
}

// JWTVerifier verifies HMAC-signed bearer tokens carrying a webid claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with the given secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify parses and validates the token and extracts the webid claim.
func (v *JWTVerifier) Verify(tokenString string) (id.SubjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	webid, _ := claims["webid"].(string)
	if webid == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token is missing webid claim")
	}

	subject, err := id.ParseSubjectID(webid)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "token webid is not a valid WebID")
	}
	return subject, nil
}

type subjectKey struct{}

// WithSubject returns a context carrying the authenticated subject.
// Exported for handler tests that bypass the middleware.
func WithSubject(ctx context.Context, subject id.SubjectID) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetSubject retrieves the authenticated subject WebID from the context.
func GetSubject(ctx context.Context) id.SubjectID {
	if subject, ok := ctx.Value(subjectKey{}).(id.SubjectID); ok {
		return subject
	}
	return ""
}

// RequireSubject rejects requests without a valid bearer token and stores
// the token's subject WebID on the context for downstream handlers.
func RequireSubject(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token")
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(ctx, subject)))
		})
	}
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}
