package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accesshandler "proofwall/internal/access/handler"
	accessmetrics "proofwall/internal/access/metrics"
	accessservice "proofwall/internal/access/service"
	contenthandler "proofwall/internal/content/handler"
	contentmetrics "proofwall/internal/content/metrics"
	"proofwall/internal/content/prover"
	contentservice "proofwall/internal/content/service"
	"proofwall/internal/identity"
	ledgermetrics "proofwall/internal/ledger/metrics"
	ledgerservice "proofwall/internal/ledger/service"
	"proofwall/internal/platform/config"
	"proofwall/internal/platform/health"
	"proofwall/internal/platform/logger"
	"proofwall/internal/pricing"
	"proofwall/internal/settlement"
	httptransport "proofwall/internal/transport/http"
	"proofwall/pkg/platform/middleware/request"
)

const poolStatsInterval = 15 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
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

	log.Info("initializing proofwall",
		"addr", cfg.Addr,
		"env", cfg.Environment,
		"store_backend", cfg.StoreBackend,
	)

	probes := health.New(cfg.Environment)

	infra, err := openBackends(cfg, log, probes)
	if err != nil {
		return err
	}
	defer infra.close(log)

	tiers, err := pricing.New(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("pricing: %w", err)
	}

	content := contentservice.NewService(infra.content, newProver(cfg.Prover, log),
		contentservice.WithLogger(log),
		contentservice.WithMetrics(contentmetrics.New()),
		contentservice.WithProofTimeout(cfg.Prover.Timeout),
	)

	verifier, err := newIdentityVerifier(cfg.Identity, log)
	if err != nil {
		return err
	}

	ledgerOpts := []ledgerservice.Option{ledgerservice.WithLogger(log)}
	ledgerMetrics := ledgermetrics.New()
	ledgerOpts = append(ledgerOpts, ledgerservice.WithMetrics(ledgerMetrics))
	if pub, err := newPublisher(cfg.Kafka, log, ledgerMetrics, probes, infra); err != nil {
		return err
	} else if pub != nil {
		ledgerOpts = append(ledgerOpts, ledgerservice.WithPublisher(pub))
	}
	ledger := ledgerservice.NewService(infra.ledger, ledgerOpts...)

	access := accessservice.NewService(content, verifier, ledger, tiers,
		accessservice.WithLogger(log),
		accessservice.WithMetrics(accessmetrics.New()),
	)
	accessHTTP := accesshandler.New(access, tiers, log)

	routes := httptransport.Routes{
		Health:  probes,
		Content: contenthandler.New(content, log),
		Access:  accessHTTP,
	}
	if cfg.Settlement.FacilitatorURL != "" {
		routes.Gate = settlement.NewGate(
			settlement.NewHTTPFacilitator(cfg.Settlement.FacilitatorURL, nil),
			cfg.Settlement,
			settlement.WithLogger(log),
			settlement.WithMetrics(settlement.NewMetrics()),
			settlement.WithPrecheck(accessHTTP.CheckPayable),
		)
		log.Info("x402 settlement enabled", "facilitator", cfg.Settlement.FacilitatorURL, "pay_to", cfg.Settlement.ReceiverWallet)
	} else {
		log.Warn("no facilitator configured; pay routes trust the request body")
	}

	router := httptransport.NewRouter(httptransport.Config{
		TrustedProxies: cfg.TrustedProxies,
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        request.NewMetrics(),
	}, routes, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads stay open for the whole proof wait.
		WriteTimeout: cfg.Prover.Timeout + cfg.RequestTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if infra.redis != nil {
		g.Go(func() error {
			return infra.redis.RunPoolStats(gctx, poolStatsInterval)
		})
	}

	return g.Wait()
}

func newProver(cfg config.ProverConfig, log *slog.Logger) contentservice.Prover {
	if cfg.URL == "" {
		log.Warn("PROVER_URL not set; uploads will fail verification")
		return prover.Disabled{}
	}
	return prover.NewHTTPClient(cfg.URL,
		prover.WithPollInterval(cfg.PollInterval),
		prover.WithLogger(log),
	)
}

func newIdentityVerifier(cfg config.IdentityConfig, log *slog.Logger) (*identity.Verifier, error) {
	var jwtOpts []identity.JWTOption
	if cfg.JWKSURL != "" {
		keys, err := identity.NewJWKS(cfg.JWKSURL, log)
		if err != nil {
			return nil, fmt.Errorf("credential JWKS: %w", err)
		}
		jwtOpts = append(jwtOpts, identity.WithJWKS(keys))
	}

	m := identity.NewMetrics()
	credentials := identity.NewCachingVerifier(identity.NewJWTVerifier(jwtOpts...), cfg.CacheSize, cfg.CacheTTL, m)

	return identity.NewVerifier(credentials,
		identity.WithLogger(log),
		identity.WithMetrics(m),
		identity.WithMessagePrefix(cfg.MessagePrefix),
		identity.WithAllowedIssuers(cfg.AllowedIssuers),
	), nil
}
