package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Zereker/gamewire"
	"github.com/Zereker/gamewire/metrics"
	"github.com/Zereker/gamewire/play"
	"github.com/Zereker/gamewire/protocol"
)

const metricsShutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept players over TCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cfg.Log, cmd.ErrOrStderr())
			return runServe(ctx, cfg, logger, nil)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	return cmd
}

// runServe serves players until ctx is canceled. ready, when non-nil,
// receives the bound player address once the listener is up.
func runServe(ctx context.Context, cfg *Config, zl zerolog.Logger, ready chan<- net.Addr) error {
	logger := newZerologAdapter(zl)

	addr, err := net.ResolveTCPAddr("tcp", cfg.Server.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", cfg.Server.ListenAddr)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	codecMetrics := metrics.New(metrics.WithRegistry(promRegistry))

	registry := protocol.NewRegistry()
	play.RegisterServer(registry, play.DefaultCatalogs())

	server, err := gamewire.New(addr,
		gamewire.ServerLoggerOption(logger),
		gamewire.ServerShutdownTimeoutOption(cfg.Server.ShutdownTimeout),
	)
	if err != nil {
		return err
	}

	handler := newPlayerHandler(registry, cfg, logger, codecMetrics)

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{Registry: promRegistry}))
		metricsServer := &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		group.Go(func() error {
			zl.Info().Str("addr", cfg.Metrics.ListenAddr).Str("path", cfg.Metrics.Path).Msg("metrics endpoint listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics server")
			}
			return nil
		})
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), metricsShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	group.Go(func() error {
		zl.Info().
			Str("addr", server.Addr().String()).
			Str("game_mode", cfg.World.GameMode).
			Str("dimension", cfg.World.Dimension).
			Msg("server listening")
		if ready != nil {
			ready <- server.Addr()
		}

		err := server.Serve(groupCtx, handler)
		zl.Info().Int("online", handler.online()).Msg("server stopped")
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return group.Wait()
}
