package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron"

	"airbnb-analytics/config"
	"airbnb-analytics/datasource"
	"airbnb-analytics/models"
	"airbnb-analytics/server"
	"airbnb-analytics/services"
	"airbnb-analytics/storage"
	"airbnb-analytics/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.DebugLog)

	logger.Info("=== Rental Analytics Service starting ===")
	logger.Info("Config — data: %s | listen: %s | backend: %s | reload: every %s",
		cfg.DataPath, cfg.ListenAddr, cfg.StorageBackend, cfg.ReloadInterval)

	cleaner := services.NewCleaner(logger)
	insights := services.NewInsightService(logger)
	filters := services.NewFilterEngine(logger)
	cache := datasource.NewCache(cfg.DataPath, cleaner, insights, logger)

	// Warm the cache before anything serves. A schema mismatch is fatal
	// here: the missing column names go to the log and nothing renders.
	snap, err := cache.Snapshot()
	if err != nil {
		var schemaErr *models.SchemaError
		if errors.As(err, &schemaErr) {
			logger.Error("Source file rejected: %v", schemaErr)
		} else {
			logger.Error("Initial load failed: %v", err)
		}
		os.Exit(1)
	}

	if snap.Report.DroppedRows > 0 {
		logger.Warn("Load report: %d of %d rows dropped", snap.Report.DroppedRows, snap.Report.TotalRows)
		for _, sample := range snap.Report.Samples {
			logger.Warn("  %s", sample)
		}
	}
	logger.Info("Dataset ready: %d listings, %d cities, %d hosts",
		snap.Stats.TotalListings, len(snap.Stats.Cities), snap.Stats.TotalHosts)

	if writer := newListingWriter(cfg, logger); writer != nil {
		defer writer.Close()
		if err := writer.Write(snap.Listings); err != nil {
			logger.Error("Storage write failed: %v", err)
		} else {
			logger.Info("Clean listings stored via %s backend", cfg.StorageBackend)
		}
	}

	// The watcher invalidates the epoch as soon as the source file
	// changes; the next request reloads.
	monitor, err := datasource.NewMonitor(cfg.DataPath, logger)
	if err != nil {
		logger.Warn("File monitoring unavailable: %v", err)
	} else {
		defer monitor.Close()
		go func() {
			if err := monitor.Watch(cache.Invalidate); err != nil {
				logger.Error("File monitoring stopped: %v", err)
			}
		}()
	}

	// Scheduled refresh catches changes the watcher misses, e.g. files
	// on network mounts that emit no inotify events.
	c := cron.New()
	if err := c.AddFunc("@every "+cfg.ReloadInterval, func() {
		if _, err := cache.Snapshot(); err != nil {
			logger.Error("Scheduled refresh failed: %v", err)
		}
	}); err != nil {
		logger.Warn("Scheduled refresh disabled: %v", err)
	} else {
		c.Start()
		defer c.Stop()
	}

	srv := server.New(cfg, cache, filters, insights, logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("HTTP server failed: %v", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger)
}

// newListingWriter picks the persistence backend, or nil when disabled.
func newListingWriter(cfg *config.Config, logger *utils.Logger) storage.ListingWriter {
	switch cfg.StorageBackend {
	case "csv":
		w, err := storage.NewCSVWriter(cfg.CSVPath)
		if err != nil {
			logger.Error("CSV output unavailable: %v", err)
			return nil
		}
		return w
	case "postgres":
		w, err := storage.NewPostgresWriter(cfg.DSN(), cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("PostgreSQL unavailable: %v", err)
			return nil
		}
		return w
	case "sqlite":
		w, err := storage.NewSQLiteWriter(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("SQLite unavailable: %v", err)
			return nil
		}
		return w
	case "none", "":
		return nil
	default:
		logger.Warn("Unknown storage backend %q, persistence disabled", cfg.StorageBackend)
		return nil
	}
}

func waitForShutdown(logger *utils.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("Received signal: %s, shutting down", sig)
}
