package config

import (
	"os"
	"time"
)

// Server captures the deployment-level configuration for the issuer.
type Server struct {
	Addr        string
	Environment string

	// IssuerDID is the static identity credentials are issued under.
	IssuerDID string
	// KeyFragment names the verification method within the issuer DID
	// document, e.g. "key-1" -> "did:web:pip.gov.uk#key-1".
	KeyFragment string
	// SigningSeed is the hex-encoded 32-byte ed25519 seed for the issuing key.
	SigningSeed string

	// ThirdParty is granted read access to every issued credential.
	ThirdParty string
	// AuthenticatedRead additionally grants any authenticated agent read
	// access to issued credentials.
	AuthenticatedRead bool

	// TokenSecret verifies inbound bearer tokens minted by the identity
	// provider in front of this service.
	TokenSecret string

	RequestTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:              getenv("PIPVC_ADDR", ":8080"),
		Environment:       getenv("PIPVC_ENV", "development"),
		IssuerDID:         getenv("PIPVC_ISSUER_DID", "did:web:pip.gov.uk"),
		KeyFragment:       getenv("PIPVC_KEY_FRAGMENT", "key-1"),
		SigningSeed:       os.Getenv("PIPVC_SIGNING_SEED"),
		ThirdParty:        getenv("PIPVC_THIRD_PARTY", "did:web:eon.co.uk"),
		AuthenticatedRead: os.Getenv("PIPVC_AUTHENTICATED_READ") == "true",
		TokenSecret:       getenv("PIPVC_TOKEN_SECRET", "dev-secret-key-change-in-production"),
		RequestTimeout:    30 * time.Second,
	}

	if timeoutStr := os.Getenv("PIPVC_REQUEST_TIMEOUT"); timeoutStr != "" {
		if duration, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.RequestTimeout = duration
		}
	}

	return cfg
}

// VerificationMethod returns the full verification method reference for the
// configured issuing key.
func (s Server) VerificationMethod() string {
	return s.IssuerDID + "#" + s.KeyFragment
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
