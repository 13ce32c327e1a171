package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/khighway/storefront-service/internal/pkg/cuid2"
	"github.com/khighway/storefront-service/internal/pricing"
)

const campaignColumns = `id, name, kind, value, status, start_time, end_time, product_ids`

func scanCampaign(row pgx.Row) (pricing.Campaign, error) {
	var (
		c          pricing.Campaign
		kindText   string
		statusText string
	)
	err := row.Scan(&c.ID, &c.Name, &kindText, &c.Value, &statusText,
		&c.StartTime, &c.EndTime, &c.ProductIDs)
	if err != nil {
		return pricing.Campaign{}, err
	}
	// Unknown kinds scan to the zero DiscountKind; the resolver treats such
	// campaigns as malformed and skips them.
	c.Kind, _ = pricing.ParseDiscountKind(kindText)
	c.Status = pricing.CampaignStatus(statusText)
	return c, nil
}

// ListActiveCampaigns returns every campaign flagged active, regardless of
// time window. The resolver applies the in-effect window check itself.
func ListActiveCampaigns(ctx context.Context) ([]pricing.Campaign, error) {
	pool := Pool()

	query := fmt.Sprintf(`
		SELECT %s
		FROM campaigns
		WHERE status = 'active'
		ORDER BY id
	`, campaignColumns)

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]pricing.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// ListCampaigns lists campaigns with pagination, newest start first
func ListCampaigns(ctx context.Context, limit, offset int) ([]pricing.Campaign, error) {
	pool := Pool()

	query := fmt.Sprintf(`
		SELECT %s
		FROM campaigns
		ORDER BY start_time DESC, id
		LIMIT $1 OFFSET $2
	`, campaignColumns)

	rows, err := pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]pricing.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// GetCampaign retrieves a campaign by its ID. The wrapped pgx.ErrNoRows is
// preserved so callers can map it to a not-found response.
func GetCampaign(ctx context.Context, id string) (*pricing.Campaign, error) {
	pool := Pool()

	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns)

	c, err := scanCampaign(pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("error querying campaign %s: %w", id, err)
	}
	return &c, nil
}

// CreateCampaign inserts a new campaign. An empty ID gets a generated one;
// the assigned ID is written back to the campaign.
func CreateCampaign(ctx context.Context, c *pricing.Campaign) error {
	pool := Pool()

	if c.ID == "" {
		c.ID = cuid2.GeneratePrefixedId("cmp", cuid2.PrefixedIdOptions{TimeSortable: true})
	}
	now := time.Now()

	_, err := pool.Exec(ctx, `
		INSERT INTO campaigns (
			id, name, kind, value, status, start_time, end_time, product_ids,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, c.ID, c.Name, c.Kind.String(), c.Value, string(c.Status),
		c.StartTime, c.EndTime, c.ProductIDs, now)

	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

// UpdateCampaign overwrites an existing campaign's fields
func UpdateCampaign(ctx context.Context, c *pricing.Campaign) error {
	pool := Pool()

	result, err := pool.Exec(ctx, `
		UPDATE campaigns
		SET name = $2, kind = $3, value = $4, status = $5,
		    start_time = $6, end_time = $7, product_ids = $8,
		    updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Name, c.Kind.String(), c.Value, string(c.Status),
		c.StartTime, c.EndTime, c.ProductIDs)

	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("error updating campaign %s: %w", c.ID, pgx.ErrNoRows)
	}
	return nil
}

// DeleteCampaign removes a campaign by ID
func DeleteCampaign(ctx context.Context, id string) error {
	pool := Pool()

	result, err := pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("error deleting campaign %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// DeactivateEndedCampaigns flags active campaigns whose window has passed as
// inactive. Returns the number of campaigns flipped.
func DeactivateEndedCampaigns(ctx context.Context) (int, error) {
	pool := Pool()

	result, err := pool.Exec(ctx, `
		UPDATE campaigns
		SET status = 'inactive', updated_at = NOW()
		WHERE status = 'active' AND end_time < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate ended campaigns: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// DeleteCampaignsEndedBefore removes campaigns whose window ended before the
// cutoff. Returns the number of campaigns deleted.
func DeleteCampaignsEndedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	pool := Pool()

	result, err := pool.Exec(ctx, `
		DELETE FROM campaigns
		WHERE end_time < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ended campaigns: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// BulkUpsertCampaigns inserts or replaces campaigns in a single transaction.
// Used by the spreadsheet importer. Returns the number of rows written.
func BulkUpsertCampaigns(ctx context.Context, campaigns []pricing.Campaign) (int, error) {
	if len(campaigns) == 0 {
		return 0, nil
	}

	pool := Pool()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	now := time.Now()

	for i := range campaigns {
		c := &campaigns[i]
		if c.ID == "" {
			c.ID = cuid2.GeneratePrefixedId("cmp", cuid2.PrefixedIdOptions{TimeSortable: true})
		}
		batch.Queue(`
			INSERT INTO campaigns (
				id, name, kind, value, status, start_time, end_time, product_ids,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				kind = EXCLUDED.kind,
				value = EXCLUDED.value,
				status = EXCLUDED.status,
				start_time = EXCLUDED.start_time,
				end_time = EXCLUDED.end_time,
				product_ids = EXCLUDED.product_ids,
				updated_at = EXCLUDED.updated_at
		`, c.ID, c.Name, c.Kind.String(), c.Value, string(c.Status),
			c.StartTime, c.EndTime, c.ProductIDs, now)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(campaigns); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("failed to upsert campaign %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(campaigns), nil
}

// Campaigns adapts the campaign table to the pricing cache's repository
// interface, backed by the shared pool.
type Campaigns struct{}

func (Campaigns) ListActive(ctx context.Context) ([]pricing.Campaign, error) {
	return ListActiveCampaigns(ctx)
}
