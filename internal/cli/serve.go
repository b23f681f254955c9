package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/metrics"
	"github.com/ppiankov/antiplagiat/internal/model"
	"github.com/ppiankov/antiplagiat/internal/pipeline"
	"github.com/ppiankov/antiplagiat/internal/server"
	"github.com/ppiankov/antiplagiat/internal/store"
	"github.com/ppiankov/antiplagiat/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the check API:

  POST   /api/v1/check            submit a text, returns a task id
  GET    /api/v1/check/{task_id}  poll the task
  DELETE /api/v1/check/{task_id}  forget the task
  GET    /api/v1/sources          known reference sources
  POST   /api/v1/ai/compare       ask the LLM judge directly
  GET    /health, /metrics

Results are kept in the configured store (memory, sqlite, postgres, redis).

Example:
  antiplagiat serve --addr :8000 --store sqlite`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().String("store", "", "result store backend (memory, sqlite, postgres, redis)")
	serveCmd.Flags().Int("max-in-flight", 0, "maximum concurrent analyses")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("store.backend", serveCmd.Flags().Lookup("store"))
	_ = viper.BindPFlag("server.max_in_flight", serveCmd.Flags().Lookup("max-in-flight"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warnf("Tracing shutdown: %v", err)
		}
	}()

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warnf("Close store: %v", err)
		}
	}()

	go store.RunCleanup(ctx, st, time.Hour)

	m := metrics.New()
	p := newPipeline(cfg, model.DefaultAnalyzeOptions(), pipeline.WithMetrics(m))

	log.WithFields(logrus.Fields{
		"addr":       cfg.Server.Addr,
		"store":      cfg.Store.Backend,
		"search":     cfg.Search.Configured(),
		"paraphrase": cfg.LLM.Provider,
		"tracing":    cfg.Telemetry.OTLPEndpoint != "",
	}).Info("Starting antiplagiat API")

	srv := server.New(p, st, cfg.Server, server.WithMetrics(m), server.WithVersion(Version))
	return srv.Run(ctx)
}
