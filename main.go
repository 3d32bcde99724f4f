package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airbnb-monitor/config"
	"airbnb-monitor/models"
	"airbnb-monitor/scraper/airbnb"
	"airbnb-monitor/services"
	"airbnb-monitor/storage"
	"airbnb-monitor/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("=== Airbnb Listing Monitor starting ===")
	logger.Info("Config — sources: %d | store: %s | delay: %s | cap: %d/page",
		len(cfg.Sources), cfg.SeenStore, cfg.SourceDelay, cfg.MaxListingsPerPage)

	// Pre-flight: the only fatal errors; nothing touches the network yet.
	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Failed to open seen-set store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	seen := store.Load()

	renderer := airbnb.NewChromeRenderer(cfg, logger)
	defer renderer.Close()

	scraper := airbnb.New(cfg, logger, renderer)
	current := scraper.Scrape(ctx)

	// An interrupted or empty run mutates nothing: the prior persisted state
	// stays untouched and the next run re-detects from scratch.
	if ctx.Err() != nil {
		logger.Warn("Run cancelled (%v) — seen-set left untouched", ctx.Err())
		return
	}
	if len(current) == 0 {
		logger.Warn("No listings found across all searches — seen-set left untouched")
		return
	}

	detector := services.NewDetector(logger)
	newListings, updated := detector.Detect(current, seen)

	updated.LastUpdated = time.Now()
	updated.SourceCount = len(cfg.Sources)

	// The seen-set is persisted before notification, so a delivery failure
	// can only cost a missed digest, never a duplicate one.
	saved := true
	if err := store.Save(updated); err != nil {
		saved = false
		logger.Error("Seen-set save failed: %v — next run will re-detect the same listings", err)
	}

	writeSnapshot(cfg, logger, current)

	notified := false
	if len(newListings) > 0 {
		notified = notify(cfg, logger, newListings)
	} else {
		logger.Info("No new listings found across any searches")
	}

	services.PrintReport(&models.RunReport{
		Sources:        perSourceCounts(cfg.Sources, current),
		TotalCollected: len(current),
		NewCount:       len(newListings),
		SeenTotal:      updated.Len(),
		Notified:       notified,
		Saved:          saved,
		Duration:       time.Since(start),
	})
}

func openStore(cfg *config.Config, logger *utils.Logger) (storage.SeenStore, error) {
	if cfg.SeenStore == config.StorePostgres {
		return storage.NewPostgresStore(cfg.DSN(), logger)
	}
	return storage.NewFileStore(cfg.SeenFilePath, logger), nil
}

func writeSnapshot(cfg *config.Config, logger *utils.Logger, current []*models.Listing) {
	if cfg.SnapshotCSVPath == "" {
		return
	}

	snap, err := storage.NewSnapshotWriter(cfg.SnapshotCSVPath)
	if err != nil {
		logger.Warn("Snapshot writer unavailable: %v", err)
		return
	}
	defer snap.Close()

	if err := snap.Write(current); err != nil {
		logger.Warn("Snapshot write failed: %v", err)
		return
	}
	logger.Info("Run snapshot written to %s", cfg.SnapshotCSVPath)
}

func notify(cfg *config.Config, logger *utils.Logger, newListings []*models.Listing) bool {
	digest, err := services.BuildDigest(newListings, time.Now())
	if err != nil {
		logger.Error("Digest formatting failed: %v", err)
		return false
	}

	mailer := services.NewMailer(cfg, logger)
	if err := mailer.Send(digest); err != nil {
		logger.Error("Notification delivery failed: %v — seen-set update stands", err)
		return false
	}
	return true
}

func perSourceCounts(sources []models.SearchSource, current []*models.Listing) []models.SourceResult {
	counts := make(map[string]int, len(sources))
	for _, l := range current {
		counts[l.Source]++
	}

	results := make([]models.SourceResult, 0, len(sources))
	for _, src := range sources {
		results = append(results, models.SourceResult{Label: src.Label, Collected: counts[src.Label]})
	}
	return results
}
