package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatchbook/internal/accessor"
	"github.com/jmylchreest/swatchbook/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recipes over HTTP",
		Long: `Serve the recipe API.

  PUT  /v1/view           set the colours in view ({"hexes": [...]})
  GET  /v1/view           current view; ?wait=5s blocks until recipes settle
  GET  /v1/recipes/:hex   best available recipe for one colour
  POST /v1/recipes        resolve a batch of colours synchronously
  GET  /healthz           health and cache status
  GET  /metrics           Prometheus metrics

The recipe cache is flushed on SIGINT or SIGTERM before exiting.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default from config, 127.0.0.1:8787)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	view := accessor.New(a.coordinator, a.cache,
		accessor.WithLogger(a.logger.Named("accessor")),
		accessor.WithMetrics(accessor.NewMetrics(a.registry)),
	)
	defer view.Close()

	if !a.logger.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(view, a.coordinator,
		server.WithLogger(a.logger.Named("http")),
		server.WithGatherer(prometheus.Gatherer(a.registry)),
	)

	addr := a.cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr, _ = cmd.Flags().GetString("addr")
	}
	a.logger.Info("serving recipes", "addr", addr, "remote", a.coordinator.RemoteEnabled(), "cache", a.cfg.Cache.Backend)
	return srv.ListenAndServe(ctx, addr, a.cfg.Server.ShutdownTimeout)
}
