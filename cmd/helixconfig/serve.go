package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/godamri/helix-config/app"
	"github.com/godamri/helix-config/config"
	"github.com/godamri/helix-config/database"
	"github.com/godamri/helix-config/metrics"
	"github.com/godamri/helix-config/server"
	"github.com/godamri/helix-config/server/health"
	"github.com/godamri/helix-config/server/middleware"
	"github.com/godamri/helix-config/tree"
)

const serviceName = "helixconfig"

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Boot the configuration and serve health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := prometheus.NewRegistry()
			recorder, err := metrics.NewPrometheus(reg)
			if err != nil {
				return err
			}

			var fingerprint string
			cfg, err := config.BootContextOf[AppConfig](cmd.Context(),
				config.WithSource(e.source),
				config.WithLogger(e.logger),
				config.WithMetrics(recorder),
				config.OnLoaded(func(root *tree.Tree) { fingerprint = config.Fingerprint(root) }),
			)
			if err != nil {
				return err
			}

			db, err := database.Open(cfg.DB, serviceName)
			if err != nil {
				return err
			}
			defer db.Close()

			httpMetrics, err := middleware.NewMetrics(reg)
			if err != nil {
				return err
			}

			r := chi.NewRouter()
			r.Use(
				middleware.PanicRecovery(e.logger),
				middleware.OTelMiddleware(serviceName),
				middleware.LoggerMiddleware(e.logger),
				httpMetrics.Middleware,
				middleware.SecurityHeaders,
			)
			health.NewChecker(db, fingerprint, e.logger).RegisterRoutes(r)
			r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			srv := server.New(cfg.HTTP, e.logger, r)
			return app.NewRunner(e.logger).RunContext(cmd.Context(), func(ctx context.Context) error {
				return srv.Start(ctx)
			})
		},
	}
}
