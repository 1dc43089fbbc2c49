package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	anchorhandler "spectra/internal/anchor/handler"
	anchormetrics "spectra/internal/anchor/metrics"
	anchorservice "spectra/internal/anchor/service"
	"spectra/internal/credential/issuer"
	credmetrics "spectra/internal/credential/metrics"
	kychandler "spectra/internal/kyc/handler"
	kycmetrics "spectra/internal/kyc/metrics"
	kycservice "spectra/internal/kyc/service"
	"spectra/internal/kyc/workers/sweeper"
	"spectra/internal/kyc/workers/verification"
	"spectra/internal/platform/config"
	"spectra/internal/platform/health"
	"spectra/internal/platform/logger"
	rlmiddleware "spectra/internal/ratelimit/middleware"
	"spectra/internal/seeder"
	"spectra/internal/zkproof/mockzk"
	"spectra/pkg/platform/audit"
	"spectra/pkg/platform/middleware/metadata"
	"spectra/pkg/platform/tracer"
	"spectra/pkg/secrets"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
)

// main wires dependencies, starts the background workers and serves HTTP
// until SIGINT or SIGTERM.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing spectra",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checks := health.New(cfg.Environment)

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	cipher, err := secrets.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return err
	}
	if cipher.Ephemeral() {
		log.Warn("ENCRYPTION_KEY not set, using a per-process key; stored submissions become unreadable after restart")
	}
	generated, err := cfg.EnsureAdminToken(secrets.Generate)
	if err != nil {
		return err
	}
	if generated {
		log.Warn("ADMIN_API_TOKEN not set, generated a per-process admin token", "admin_token", cfg.AdminAPIToken)
	}

	in, err := connect(ctx, cfg, registry, checks, log)
	if err != nil {
		return err
	}
	defer in.Close(log)
	st := buildStores(in)

	auditPublisher := newAuditPublisher(st, in, cfg, log)
	defer auditPublisher.Close()
	auditor := audit.NewLogger(log, auditPublisher)
	spans := tracer.NewOTel()

	kycMetrics := kycmetrics.New(registry)
	credMetrics := credmetrics.New(registry)
	zk := mockzk.New()

	credIssuer := issuer.New(st.credentials, zk,
		issuer.WithLogger(log),
		issuer.WithMetrics(credMetrics),
	)
	kyc := kycservice.New(st.users, st.submissions, st.credentials, credIssuer, st.tasks, cipher,
		kycservice.WithLogger(log),
		kycservice.WithAuditor(auditor),
		kycservice.WithMetrics(kycMetrics),
		kycservice.WithCredentialMetrics(credMetrics),
		kycservice.WithTracer(spans),
		kycservice.WithAgeProofVerifier(zk),
		kycservice.WithDelays(cfg.KYC.StartDelay, cfg.KYC.ProcessDelay),
	)
	anchors := anchorservice.New(st.anchors, st.users, st.credentials,
		anchorservice.WithLogger(log),
		anchorservice.WithAuditor(auditor),
		anchorservice.WithMetrics(anchormetrics.New(registry)),
		anchorservice.WithTracer(spans),
	)

	if cfg.SeedAnchors {
		if err := seeder.New(st.anchors, log).SeedAll(ctx); err != nil {
			return err
		}
	}

	verifier, err := verification.New(st.tasks, kyc,
		verification.WithPollInterval(cfg.KYC.PollInterval),
		verification.WithProcessDelay(kyc.ProcessDelay()),
		verification.WithLogger(log),
		verification.WithMetrics(kycMetrics),
	)
	if err != nil {
		return err
	}
	stuck, err := sweeper.New(kyc,
		sweeper.WithInterval(cfg.KYC.SweepEvery),
		sweeper.WithStuckAfter(cfg.KYC.StuckAfter),
		sweeper.WithLogger(log),
	)
	if err != nil {
		return err
	}

	router := newRouter(routerDeps{
		kyc:            kychandler.New(kyc, log),
		anchors:        anchorhandler.New(anchors, log),
		health:         checks,
		ratelimit:      rlmiddleware.New(st.limiter, rateLimitPolicies(cfg.RateLimit), log),
		registry:       registry,
		adminToken:     cfg.AdminAPIToken,
		frontendURL:    cfg.FrontendURL,
		trustedProxies: trusted,
		logger:         log,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(verifier.Start(gctx)) })
	g.Go(func() error { return ignoreCanceled(stuck.Start(gctx)) })
	if in.redis != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					in.redis.RecordPoolStats()
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	if st.memoryLimiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					st.memoryLimiter.Sweep(time.Minute)
				case <-gctx.Done():
					return nil
				}
			}
		})
	}
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
