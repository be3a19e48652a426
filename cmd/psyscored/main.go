// Command psyscored is the psyscore scoring service.
// It serves the catalog, scoring, and encoding endpoints and a health check.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/psyscore/psyscore/internal/api"
	"github.com/psyscore/psyscore/internal/export"
	"github.com/psyscore/psyscore/internal/logging"
	"github.com/psyscore/psyscore/pkg/config"
	"github.com/psyscore/psyscore/pkg/instrument"
	"github.com/psyscore/psyscore/pkg/scoring"
)

func main() {
	configPath := flag.String("config", os.Getenv("PSYSCORE_CONFIG"), "Path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	handler, closeSink, err := newHandler(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.RequestLog(log.Named("http"))(api.CORS(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting psyscored", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHandler(ctx context.Context, cfg *config.Config, log *zap.Logger) (*api.Handler, func(), error) {
	var (
		catalog *instrument.Catalog
		err     error
	)
	if cfg.Scoring.CatalogPath == "" {
		catalog, err = instrument.Default()
	} else {
		catalog, err = instrument.LoadFile(cfg.Scoring.CatalogPath)
	}
	if err != nil {
		return nil, nil, err
	}

	policy, err := scoring.ParseLengthPolicy(cfg.Scoring.LengthPolicy)
	if err != nil {
		return nil, nil, err
	}
	calc := scoring.NewCalculator(catalog,
		scoring.WithLengthPolicy(policy),
		scoring.WithLogger(log.Named("scoring")),
	)

	closeSink := func() {}
	var sink export.Sink
	if cfg.Server.ExportReports {
		sink, err = export.New(ctx, cfg.Export)
		if err != nil {
			return nil, nil, err
		}
		if c, ok := sink.(interface{ Close() error }); ok {
			closeSink = func() { _ = c.Close() }
		}
	}

	return api.NewHandler(calc, sink, log), closeSink, nil
}
