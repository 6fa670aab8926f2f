package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/config"
	"github.com/jonathan/recruit-portal/internal/db"
	"github.com/jonathan/recruit-portal/internal/logging"
	"github.com/jonathan/recruit-portal/internal/metrics"
	"github.com/jonathan/recruit-portal/internal/server"
	"github.com/jonathan/recruit-portal/internal/server/ratelimit"
	"github.com/jonathan/recruit-portal/internal/storage"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal web server",
	Long: `Start the HTTP server that renders the HR dashboard and the candidate portal.
Sessions are kept in memory unless DATABASE_URL is set, in which case they are stored in PostgreSQL.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	sess, err := config.NewSessionConfig()
	if err != nil {
		return err
	}

	logger, flush, err := logging.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rl, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	deps := server.Deps{
		RateLimit: rl,
		Metrics:   metrics.New(reg),
		Logger:    logger,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare session schema: %w", err)
		}
		store := db.NewSessionStore(database)
		deps.Storage = store
		deps.Purger = store
		logger.Info("using database-backed sessions")
	} else {
		store := storage.NewMemory()
		deps.Storage = store
		deps.Purger = store
		logger.Info("using in-memory sessions")
	}

	srv, err := server.New(cfg, sess, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Start(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
