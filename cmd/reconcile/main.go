package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/config"
	"github.com/harryzhoudev/portfolio-api/internal/content/repository"
	"github.com/harryzhoudev/portfolio-api/internal/database"
	"github.com/harryzhoudev/portfolio-api/internal/reconcile"
	"github.com/harryzhoudev/portfolio-api/internal/storage"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
)

// reconcile removes stored assets that no content document references.
// Run it from cron or by hand; it never falls back to in-memory stores.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	dryRun := flag.Bool("dry-run", false, "only report orphaned assets")
	grace := flag.Duration("grace", cfg.Reconcile.GracePeriod, "skip assets modified more recently than this")
	gateway := flag.String("pushgateway", cfg.Reconcile.PushgatewayURL, "Pushgateway URL for the sweep report (empty: log only)")
	flag.Parse()

	if !cfg.Storage.Configured() {
		logger.Fatalf("MINIO_ENDPOINT and MINIO_BUCKET are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	store, err := storage.NewMinIOStorage(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatalf("could not initialise MinIO: %v", err)
	}

	prefix := ""
	if cfg.Storage.Folder != "" {
		prefix = cfg.Storage.Folder + "/"
	}

	start := time.Now()
	rep, err := reconcile.Run(ctx, repository.NewMongoRepo(client.Database(cfg.MongoDB.Database)), store, reconcile.Options{
		Prefix:      prefix,
		GracePeriod: *grace,
		DryRun:      *dryRun,
	})
	if err != nil {
		logger.Fatalf("reconcile failed: %v", err)
	}
	logger.Infof("reconcile done in %s: scanned=%d referenced=%d recent=%d orphans=%d deleted=%d failed=%d dryRun=%v",
		time.Since(start).Round(time.Millisecond), rep.Scanned, rep.Referenced, rep.Recent, len(rep.Orphans), rep.Deleted, len(rep.Failed), *dryRun)
	if *gateway != "" {
		if err := reconcile.PushReport(ctx, *gateway, rep, *dryRun, time.Now()); err != nil {
			logger.Warnf("pushing reconcile report to %s: %v", *gateway, err)
		}
	}
	if len(rep.Failed) > 0 {
		logger.Fatalf("%d orphaned assets could not be deleted", len(rep.Failed))
	}
}
