package airbnb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"airbnb-monitor/config"
	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// Scraper polls every configured search source and aggregates the extracted
// listing records. Sources are polled strictly one at a time with a fixed
// inter-request delay; that pacing is a deliberate throttling policy toward
// the target site, not an accidental limitation.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	renderer  Renderer
	collector *Collector
	retry     *utils.RetryConfig
	limiter   *rate.Limiter
}

// New creates a Scraper using the given renderer for the page-rendering
// boundary.
func New(cfg *config.Config, logger *utils.Logger, renderer Renderer) *Scraper {
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		renderer:  renderer,
		collector: NewCollector(logger, cfg.MaxListingsPerPage),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   5 * time.Second,
			Logger:      logger,
		},
		limiter: rate.NewLimiter(rate.Every(cfg.SourceDelay), 1),
	}
}

// Scrape iterates the configured sources in order and concatenates their
// records, each tagged with its source label. A source whose render or
// collection fails contributes an empty sequence; the run proceeds. Scrape
// stops early only on run-level cancellation, returning what it has.
func (s *Scraper) Scrape(ctx context.Context) []*models.Listing {
	s.logger.Info("[scraper] Starting run — %d source(s), %s between requests",
		len(s.cfg.Sources), s.cfg.SourceDelay)

	var all []*models.Listing
	for _, src := range s.cfg.Sources {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Warn("[scraper] Run cancelled before %s: %v", src.Label, err)
			break
		}

		listings, err := s.scrapeSource(ctx, src)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Warn("[scraper] Run cancelled during %s", src.Label)
				break
			}
			s.logger.Error("[scraper] %s failed: %v — continuing with remaining sources", src.Label, err)
			continue
		}

		all = append(all, listings...)
		s.logger.Info("[scraper] %s done — %d listings (%d total so far)",
			src.Label, len(listings), len(all))
	}

	s.logger.Info("[scraper] Run complete — %d listings across all sources", len(all))
	return all
}

// scrapeSource renders one source URL (with retries) and collects its
// listings. A page where no selector strategy matches is an empty
// contribution, not an error.
func (s *Scraper) scrapeSource(ctx context.Context, src models.SearchSource) ([]*models.Listing, error) {
	s.logger.Info("[scraper] === Processing %s ===", src.Label)
	s.logger.Debug("[scraper] %s URL: %s", src.Label, src.URL)

	var html string
	err := s.retry.Do(ctx, "render-"+src.Label, func() error {
		var rerr error
		html, rerr = s.renderer.Render(ctx, src.URL)
		return rerr
	})
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", src.Label, err)
	}

	listings, err := s.collector.Collect(html, src.URL, src.Label)
	if err != nil {
		if errors.Is(err, ErrNoListingNodes) {
			s.logger.Warn("[scraper] %s: no listing nodes found on page", src.Label)
			return nil, nil
		}
		return nil, err
	}
	return listings, nil
}
