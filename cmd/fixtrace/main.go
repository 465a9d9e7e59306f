package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/fixtrace/internal/adapter/driven/httpstore"
	"github.com/ericfisherdev/fixtrace/internal/adapter/driven/s3store"
	sqliteadapter "github.com/ericfisherdev/fixtrace/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/fixtrace/internal/adapter/driving/http"
	"github.com/ericfisherdev/fixtrace/internal/application"
	"github.com/ericfisherdev/fixtrace/internal/config"
	"github.com/ericfisherdev/fixtrace/internal/domain/port/driven"
)

var rootCmd = &cobra.Command{
	Use:   "fixtrace",
	Short: "Dashboard backend for automated PR-fix agent traces",
	Long: `fixtrace serves a read-only JSON API over execution traces that the
automated PR-fixing pipeline uploads to an object store: per-attempt summary
rows, aggregate success metrics, and full agent timelines. It never writes to
the trace store; the only local state is an optional SQLite archive of
metrics snapshots for trend history.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and periodic snapshot loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Derive one metrics snapshot and archive it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshot()
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, snapshotCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// newTraceStore creates the configured TraceStore adapter: an S3-compatible
// bucket or a plain HTTP origin.
func newTraceStore(ctx context.Context, cfg *config.Config) (driven.TraceStore, error) {
	if cfg.UsesS3() {
		return s3store.New(ctx, s3store.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return httpstore.New(cfg.BaseURL, cfg.FetchTimeout), nil
}

func runServe() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"snapshot_interval", cfg.SnapshotInterval,
		"s3", cfg.UsesS3(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Create the trace store adapter.
	store, err := newTraceStore(ctx, cfg)
	if err != nil {
		return err
	}

	// 4. Open the snapshot archive and run migrations.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("snapshot archive ready", "path", cfg.DBPath)

	// 5. Wire services.
	snapshotStore := sqliteadapter.NewSnapshotRepo(db)
	summarySvc := application.NewSummaryService(store, cfg.FetchConcurrency, cfg.FetchTimeout)
	metricsSvc := application.NewMetricsService(store, summarySvc, snapshotStore)
	traceSvc := application.NewTraceService(store)
	snapshotSvc := application.NewSnapshotService(metricsSvc, snapshotStore, cfg.SnapshotInterval)

	// 6. Start the snapshot loop.
	go snapshotSvc.Start(ctx)

	// 7. Start the HTTP server.
	handler := httphandler.NewHandler(summarySvc, metricsSvc, traceSvc, snapshotSvc, slog.Default())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// 8. Graceful shutdown.
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runSnapshot() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newTraceStore(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	snapshotStore := sqliteadapter.NewSnapshotRepo(db)
	summarySvc := application.NewSummaryService(store, cfg.FetchConcurrency, cfg.FetchTimeout)
	metricsSvc := application.NewMetricsService(store, summarySvc, snapshotStore)
	snapshotSvc := application.NewSnapshotService(metricsSvc, snapshotStore, cfg.SnapshotInterval)

	return snapshotSvc.Snapshot(ctx)
}
