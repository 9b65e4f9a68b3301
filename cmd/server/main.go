package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipvc/internal/credential/builder"
	"pipvc/internal/credential/sign"
	"pipvc/internal/issuance"
	issuancehandler "pipvc/internal/issuance/handler"
	"pipvc/internal/issuance/metrics"
	"pipvc/internal/issuance/tracer"
	"pipvc/internal/platform/config"
	"pipvc/internal/platform/health"
	"pipvc/internal/platform/logger"
	"pipvc/internal/pod"
	registryhandler "pipvc/internal/registry/handler"
	registryservice "pipvc/internal/registry/service"
	"pipvc/internal/registry/store"
	httptransport "pipvc/internal/transport/http"
	id "pipvc/pkg/domain"
	"pipvc/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing pipvc",
		"addr", cfg.Addr,
		"issuer", cfg.IssuerDID,
		"environment", cfg.Environment,
	)

	keys, err := loadKeys(cfg)
	if err != nil {
		log.Error("failed to load signing key", "error", err)
		os.Exit(1)
	}

	credentialBuilder, err := builder.New(cfg.IssuerDID)
	if err != nil {
		log.Error("failed to initialize credential builder", "error", err)
		os.Exit(1)
	}
	signer := sign.New(keys, cfg.VerificationMethod())
	pods := pod.NewHTTPClient(pod.WithLogger(log))

	registrySvc := registryservice.NewService(store.NewInMemoryStore(),
		registryservice.WithLogger(log),
	)

	issuanceSvc := issuance.NewService(
		credentialBuilder, signer, pods, registrySvc,
		id.AgentID(cfg.ThirdParty),
		issuance.WithLogger(log),
		issuance.WithMetrics(metrics.New()),
		issuance.WithTracer(tracer.NewOTel()),
		issuance.WithAuthenticatedRead(cfg.AuthenticatedRead),
	)

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("signing_key", func() error {
		_, err := keys.PublicKey(cfg.VerificationMethod())
		return err
	})

	router := httptransport.NewRouter(httptransport.Deps{
		Issuance:       issuancehandler.New(issuanceSvc, log),
		Registry:       registryhandler.New(registrySvc, log),
		Health:         healthHandler,
		Verifier:       auth.NewJWTVerifier([]byte(cfg.TokenSecret)),
		RequestTimeout: cfg.RequestTimeout,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// loadKeys builds the key store from the configured seed, generating an
// ephemeral key outside production so the service starts without secrets.
func loadKeys(cfg config.Server) (*sign.StaticKeyStore, error) {
	if cfg.SigningSeed != "" {
		return sign.FromSeedHex(cfg.VerificationMethod(), cfg.SigningSeed)
	}
	return sign.GenerateEphemeral(cfg.VerificationMethod())
}
