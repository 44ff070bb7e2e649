package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/zklr-network/zklr/api"
	"github.com/zklr-network/zklr/app"
	"github.com/zklr-network/zklr/app/health"
	"github.com/zklr-network/zklr/app/telemetry"
)

const (
	flagAPIListen       = "api.listen"
	flagAPIJWTSecret    = "api.jwt-secret"
	flagAPIRateLimitRPS = "api.rate-limit-rps"
	flagAPIFaucet       = "api.enable-faucet"
	flagMetricsEnabled  = "metrics.enabled"
	flagMetricsListen   = "metrics.listen"
	flagTelemetry       = "telemetry.enabled"
	flagOTLPEndpoint    = "telemetry.otlp-endpoint"
	flagSampleRate      = "telemetry.sample-rate"
)

// Version is reported by the health endpoints
var Version = "dev"

// ServeCmd returns the command running the HTTP API, the metrics endpoint
// and the health endpoints until interrupted.
func ServeCmd(cctx *cliContext) *cobra.Command {
	defaults := app.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the settlement engine API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cctx.config, cctx.logger)
		},
	}

	cmd.Flags().String(flagAPIListen, defaults.API.Listen, "API listen address")
	cmd.Flags().String(flagAPIJWTSecret, "", "HMAC secret for API tokens (random if empty)")
	cmd.Flags().Int(flagAPIRateLimitRPS, defaults.API.RateLimitRPS, "requests per second allowed per client IP")
	cmd.Flags().Bool(flagAPIFaucet, defaults.API.EnableFaucet, "expose the development faucet")
	cmd.Flags().Bool(flagMetricsEnabled, defaults.Metrics.Enabled, "serve Prometheus metrics and health checks")
	cmd.Flags().String(flagMetricsListen, defaults.Metrics.Listen, "metrics and health listen address")
	cmd.Flags().Bool(flagTelemetry, defaults.Telemetry.Enabled, "export traces over OTLP")
	cmd.Flags().String(flagOTLPEndpoint, defaults.Telemetry.OTLPEndpoint, "OTLP HTTP collector endpoint")
	cmd.Flags().Float64(flagSampleRate, defaults.Telemetry.SampleRate, "trace sample rate")

	return cmd
}

func serve(ctx context.Context, cfg app.Config, logger log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	engine, err := app.NewEngineFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	logger.Info("engine loaded", "chain_id", engine.ChainID(), "height", engine.Height())

	server, err := api.NewServer(engine, &api.Config{
		Listen:          cfg.API.Listen,
		JWTSecret:       []byte(cfg.API.JWTSecret),
		RateLimitRPS:    cfg.API.RateLimitRPS,
		ReadTimeout:     cfg.API.ReadTimeout,
		WriteTimeout:    cfg.API.WriteTimeout,
		ShutdownTimeout: cfg.API.ShutdownTimeout,
		RequestTimeout:  cfg.API.WriteTimeout,
		EnableFaucet:    cfg.API.EnableFaucet,
	}, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- server.Start(ctx) }()

	running := 1
	if cfg.Metrics.Enabled {
		checker, err := health.NewChecker(logger.With("module", "health"), health.Config{
			Version:         Version,
			MaxResponseTime: time.Second,
			CacheDuration:   5 * time.Second,
		}, engine, provider)
		if err != nil {
			return err
		}

		router := mux.NewRouter()
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
		checker.RegisterRoutes(router)

		running++
		go func() { errCh <- serveMetrics(ctx, cfg.Metrics.Listen, router, cfg.API.ShutdownTimeout, logger) }()
	}

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

func serveMetrics(ctx context.Context, listen string, handler http.Handler, shutdownTimeout time.Duration, logger log.Logger) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting metrics server", "listen", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
