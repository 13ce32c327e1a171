package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CleanupConfig configures retention policies for cleanup jobs
type CleanupConfig struct {
	CampaignRetentionDays int
	CartRetentionDays     int
}

// DefaultCleanupConfig returns sensible retention defaults
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		CampaignRetentionDays: 90,  // Keep ended campaigns for 90 days
		CartRetentionDays:     180, // Keep untouched carts for 180 days
	}
}

// CleanupEndedCampaigns removes campaigns whose window ended before the
// retention cutoff. Ended campaigns are kept for a while so reporting and
// support can still look them up.
func CleanupEndedCampaigns(ctx context.Context, db *pgxpool.Pool, cfg CleanupConfig) error {
	cutoffDate := time.Now().AddDate(0, 0, -cfg.CampaignRetentionDays)

	result, err := db.Exec(ctx, `
		DELETE FROM campaigns
		WHERE end_time < $1
	`, cutoffDate)

	if err != nil {
		return fmt.Errorf("cleanup ended campaigns: %w", err)
	}

	rowsAffected := result.RowsAffected()
	slog.Info("cleaned up ended campaigns", "rows_deleted", rowsAffected, "cutoff", cutoffDate)

	return nil
}

// CleanupStaleCarts removes cart documents that have not been written for
// longer than the retention window
func CleanupStaleCarts(ctx context.Context, db *pgxpool.Pool, cfg CleanupConfig) error {
	cutoffDate := time.Now().AddDate(0, 0, -cfg.CartRetentionDays)

	result, err := db.Exec(ctx, `
		DELETE FROM carts
		WHERE updated_at < $1
	`, cutoffDate)

	if err != nil {
		return fmt.Errorf("cleanup stale carts: %w", err)
	}

	rowsAffected := result.RowsAffected()
	slog.Info("cleaned up stale carts", "rows_deleted", rowsAffected, "cutoff", cutoffDate)

	return nil
}
