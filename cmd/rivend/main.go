package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/config"
	"github.com/danielpatrickdp/rivenwatch/internal/grade"
	"github.com/danielpatrickdp/rivenwatch/internal/logging"
	"github.com/danielpatrickdp/rivenwatch/internal/metrics"
	"github.com/danielpatrickdp/rivenwatch/internal/rpc"
)

// #region main
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	logger = logger.With().Str(logging.SERVICE, "rivend").Logger()

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("rivend exited")
	}
}

// #endregion main

// #region run
func run(cfg *config.Config, logger zerolog.Logger) error {
	store, err := catalog.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	if err := logging.EnsureSchema(store.DB()); err != nil {
		return err
	}

	costs := grade.DefaultCostTable()
	if cfg.ReferenceFile != "" {
		if costs, err = grade.LoadCostTable(cfg.ReferenceFile); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	holder, err := seed(cfg, store, m, logger)
	if err != nil {
		return err
	}

	var refresher *catalog.Refresher
	if cfg.CatalogURL != "" {
		refresher = catalog.NewRefresher(
			catalog.NewHTTPSource(cfg.CatalogURL, cfg.RefreshTimeout),
			store, holder, m, logger,
			catalog.RefreshConfig{
				Schedule:   cfg.CatalogRefresh,
				Timeout:    cfg.RefreshTimeout,
				Retries:    cfg.RefreshRetries,
				RetryDelay: catalog.DefaultRefreshConfig().RetryDelay,
			},
		)
		if err := refresher.Start(); err != nil {
			return err
		}
		defer refresher.Stop()
		if holder.Load().Len() == 0 {
			go func() {
				if _, err := refresher.Refresh(context.Background()); err != nil {
					logger.Warn().Err(err).Msg("initial catalog refresh failed")
				}
			}()
		}
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := grpc.NewServer()
	rpc.RegisterEngineServer(srv, rpc.NewServer(holder, costs, store.DB(), m, logger))

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(lis) }()
	logger.Info().
		Str("addr", cfg.Addr).
		Str("metrics_addr", cfg.MetricsAddr).
		Str(logging.VERSION, holder.Load().Version()).
		Msg("rivend ready")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("grpc serve: %w", err)
	}

	srv.GracefulStop()
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(ctx)
	}
	return nil
}

// #endregion run

// #region seed
// seed publishes the initial snapshot: the catalog file when configured
// (committing it if it differs from the active version), else the stored
// active version, else an empty catalog waiting for the first refresh.
func seed(cfg *config.Config, store *catalog.Store, m *metrics.Metrics, logger zerolog.Logger) (*catalog.Holder, error) {
	current, rec, err := store.Current()
	if err != nil && !errors.Is(err, catalog.ErrNoActiveCatalog) {
		return nil, err
	}

	if cfg.CatalogFile != "" {
		snap, err := catalog.LoadYAML(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		if current == nil || rec.CatalogVersion != snap.Version() {
			if rec, err = store.Commit(snap, "file:"+cfg.CatalogFile); err != nil {
				return nil, err
			}
			logger.Info().Str(logging.VERSION, rec.VersionID).Str("catalog_version", snap.Version()).Msg("catalog file committed")
		}
		current = snap
	}

	if current == nil {
		logger.Warn().Msg("no catalog available; serving empty catalog")
		current = catalog.EmptySnapshot()
	}
	m.CatalogWeapons.Set(float64(current.Len()))
	return catalog.NewHolder(current), nil
}

// #endregion seed
