package command

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/pipelinekit/logger"
	"github.com/kbukum/pipelinekit/observability"
	"github.com/kbukum/pipelinekit/server"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation and migration API over HTTP",
		Long: highlight("pipelinectl serve [--config FILE]") + "\n\n" +
			"Start the HTTP API. Host, port, limits and telemetry come from the\n" +
			"configuration file and PIPELINECTL_* environment variables.\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.loadEnvironment()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, env)
		},
	}
}

func runServe(ctx context.Context, env *environment) error {
	cfg := env.cfg
	log := logger.Get("server")

	shutdownTelemetry, err := observability.Setup(ctx, &cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}()

	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware(func(r *http.Request, status int, d time.Duration) {
		metrics.RecordRequest(r.Context(), r.URL.Path, r.Method, status, d)
	})

	api := server.NewAPI(env.reg,
		server.WithPipelineProperties(env.pipelineProps),
		server.WithCycleTimeout(cfg.Validation.CycleTimeout),
		server.WithMigrateOnOpen(cfg.Validation.MigrateOnOpen),
		server.WithMetrics(metrics),
		server.WithLogger(logger.Get("api")),
	)
	api.Register(srv.Engine(), cfg.Name)

	if err := srv.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(sctx)
}
