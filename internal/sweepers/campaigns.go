package sweepers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/pricing"
)

// CampaignSweeper periodically flags campaigns whose window has passed as
// inactive and invalidates the campaign cache when it changed anything.
// The resolver already ignores out-of-window campaigns, the sweeper keeps
// the stored status field honest for the admin API.
type CampaignSweeper struct {
	cache    *pricing.CampaignCache
	logger   *zerolog.Logger
	interval time.Duration
	stopChan chan struct{}
}

// NewCampaignSweeper creates a sweeper over the shared campaign table
func NewCampaignSweeper(cache *pricing.CampaignCache, logger *zerolog.Logger, interval time.Duration) *CampaignSweeper {
	return &CampaignSweeper{
		cache:    cache,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (s *CampaignSweeper) Start(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("Starting campaign sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Campaign sweeper stopping (context cancelled)")
			return
		case <-s.stopChan:
			s.logger.Info().Msg("Campaign sweeper stopping (stop signal)")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Failed to sweep ended campaigns")
			}
		}
	}
}

// Stop signals the sweeper to stop
func (s *CampaignSweeper) Stop() {
	close(s.stopChan)
}

// Sweep deactivates ended campaigns and drops the cached snapshot when any
// row changed
func (s *CampaignSweeper) Sweep(ctx context.Context) error {
	s.logger.Debug().Msg("Running ended campaign sweep")

	deactivated, err := database.DeactivateEndedCampaigns(ctx)
	if err != nil {
		return err
	}

	if deactivated > 0 {
		s.cache.Invalidate()
		s.logger.Info().
			Int("deactivated", deactivated).
			Msg("Deactivated ended campaigns")
	}
	return nil
}
