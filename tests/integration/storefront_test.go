package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khighway/storefront-service/internal/cart"
	"github.com/khighway/storefront-service/internal/database"
	"github.com/khighway/storefront-service/internal/pricing"
)

// setupTestDB starts a PostgreSQL container, connects the shared pool to it
// and creates the schema. Cleanup closes the pool and terminates the container.
func setupTestDB(ctx context.Context, t testing.TB) (func(), error) {
	if testing.Short() {
		return func() {}, fmt.Errorf("skipping integration test in short mode")
	}

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	if err := database.Connect(ctx, connString, 5, 1, time.Hour, 30*time.Minute); err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := runTestMigrations(ctx); err != nil {
		database.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	cleanup := func() {
		database.Close()
		container.Terminate(ctx)
	}

	return cleanup, nil
}

// runTestMigrations sets up the minimal schema for testing
func runTestMigrations(ctx context.Context) error {
	schema := `
		-- Discount campaigns
		CREATE TABLE IF NOT EXISTS campaigns (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			product_ids TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		-- Catalog products
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			image_url TEXT,
			list_price BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		-- Variant combination prices
		CREATE TABLE IF NOT EXISTS product_variants (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id),
			combination TEXT NOT NULL,
			price BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (product_id, combination)
		);

		-- Stored carts, one document per identity
		CREATE TABLE IF NOT EXISTS carts (
			identity TEXT PRIMARY KEY,
			items JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`

	_, err := database.Pool().Exec(ctx, schema)
	return err
}

// TestCampaignStorageFlow exercises the full campaign lifecycle against a
// real database: create, read, update, expire, bulk upsert, delete.
func TestCampaignStorageFlow(t *testing.T) {
	ctx := context.Background()

	cleanup, err := setupTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
		return
	}
	defer cleanup()

	now := time.Now().UTC().Truncate(time.Second)

	campaign := &pricing.Campaign{
		Name:       "Summer Sale",
		Kind:       pricing.KindPercentage,
		Value:      20,
		Status:     pricing.StatusActive,
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(24 * time.Hour),
		ProductIDs: []string{"prd_hammer", "prd_saw"},
	}
	require.NoError(t, database.CreateCampaign(ctx, campaign))
	require.NotEmpty(t, campaign.ID, "create should assign an ID")

	t.Run("get returns the stored campaign", func(t *testing.T) {
		got, err := database.GetCampaign(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, "Summer Sale", got.Name)
		assert.Equal(t, pricing.KindPercentage, got.Kind)
		assert.Equal(t, float64(20), got.Value)
		assert.Equal(t, pricing.StatusActive, got.Status)
		assert.Equal(t, []string{"prd_hammer", "prd_saw"}, got.ProductIDs)
		assert.True(t, got.StartTime.Equal(campaign.StartTime))
		assert.True(t, got.EndTime.Equal(campaign.EndTime))
	})

	t.Run("get unknown ID is a lookup miss", func(t *testing.T) {
		_, err := database.GetCampaign(ctx, "cmp_does_not_exist")
		require.Error(t, err)
		assert.True(t, database.IsNotFound(err))
	})

	t.Run("active listing feeds the resolver", func(t *testing.T) {
		active, err := database.ListActiveCampaigns(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, campaign.ID, active[0].ID)
	})

	t.Run("update overwrites fields", func(t *testing.T) {
		campaign.Value = 25
		campaign.Name = "Summer Sale Extended"
		require.NoError(t, database.UpdateCampaign(ctx, campaign))

		got, err := database.GetCampaign(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, "Summer Sale Extended", got.Name)
		assert.Equal(t, float64(25), got.Value)
	})

	t.Run("update unknown ID is a lookup miss", func(t *testing.T) {
		missing := *campaign
		missing.ID = "cmp_does_not_exist"
		err := database.UpdateCampaign(ctx, &missing)
		require.Error(t, err)
		assert.True(t, database.IsNotFound(err))
	})

	t.Run("expire flips only ended active campaigns", func(t *testing.T) {
		ended := &pricing.Campaign{
			Name:       "Last Week",
			Kind:       pricing.KindFixedAmount,
			Value:      500,
			Status:     pricing.StatusActive,
			StartTime:  now.Add(-72 * time.Hour),
			EndTime:    now.Add(-24 * time.Hour),
			ProductIDs: []string{"prd_hammer"},
		}
		require.NoError(t, database.CreateCampaign(ctx, ended))

		flipped, err := database.DeactivateEndedCampaigns(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, flipped)

		got, err := database.GetCampaign(ctx, ended.ID)
		require.NoError(t, err)
		assert.Equal(t, pricing.StatusInactive, got.Status)

		// The in-window campaign stays active
		got, err = database.GetCampaign(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, pricing.StatusActive, got.Status)
	})

	t.Run("bulk upsert inserts and replaces by ID", func(t *testing.T) {
		batch := []pricing.Campaign{
			{
				ID:         campaign.ID, // replaces the existing row
				Name:       "Summer Sale Reimported",
				Kind:       pricing.KindPercentage,
				Value:      30,
				Status:     pricing.StatusActive,
				StartTime:  now.Add(-time.Hour),
				EndTime:    now.Add(24 * time.Hour),
				ProductIDs: []string{"prd_hammer"},
			},
			{
				Name:       "Clearance",
				Kind:       pricing.KindFixedAmount,
				Value:      1000,
				Status:     pricing.StatusInactive,
				StartTime:  now,
				EndTime:    now.Add(48 * time.Hour),
				ProductIDs: []string{"prd_saw"},
			},
		}

		written, err := database.BulkUpsertCampaigns(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, 2, written)

		got, err := database.GetCampaign(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, "Summer Sale Reimported", got.Name)
		assert.Equal(t, float64(30), got.Value)

		all, err := database.ListCampaigns(ctx, 50, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("delete removes the campaign", func(t *testing.T) {
		require.NoError(t, database.DeleteCampaign(ctx, campaign.ID))

		_, err := database.GetCampaign(ctx, campaign.ID)
		require.Error(t, err)
		assert.True(t, database.IsNotFound(err))

		err = database.DeleteCampaign(ctx, campaign.ID)
		require.Error(t, err)
		assert.True(t, database.IsNotFound(err))
	})
}

// TestCartStorageFlow exercises stored-cart round trips, distinguishing an
// absent document from an existing empty one.
func TestCartStorageFlow(t *testing.T) {
	ctx := context.Background()

	cleanup, err := setupTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
		return
	}
	defer cleanup()

	const identity = "acct_42"

	t.Run("absent document reads as not existing", func(t *testing.T) {
		items, exists, err := database.GetCart(ctx, identity)
		require.NoError(t, err)
		assert.False(t, exists)
		assert.Nil(t, items)
	})

	t.Run("put then get round trips", func(t *testing.T) {
		local := cart.Items{
			{ProductID: "prd_hammer", Name: "Hammer", UnitPrice: 1299, Quantity: 2},
			{ProductID: "prd_saw", Name: "Saw", UnitPrice: 2499, Quantity: 1},
		}
		require.NoError(t, database.PutCart(ctx, identity, local))

		got, exists, err := database.GetCart(ctx, identity)
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, local, got)
	})

	t.Run("empty overwrite still exists", func(t *testing.T) {
		require.NoError(t, database.PutCart(ctx, identity, cart.Items{}))

		got, exists, err := database.GetCart(ctx, identity)
		require.NoError(t, err)
		assert.True(t, exists, "an existing empty cart is not the same as no cart")
		assert.Empty(t, got)
	})

	t.Run("delete reports whether a document existed", func(t *testing.T) {
		existed, err := database.DeleteCart(ctx, identity)
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = database.DeleteCart(ctx, identity)
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("stale cleanup removes old documents only", func(t *testing.T) {
		require.NoError(t, database.PutCart(ctx, "acct_old", cart.Items{}))
		require.NoError(t, database.PutCart(ctx, "acct_new", cart.Items{}))

		// Age one document past the cutoff
		_, err := database.Pool().Exec(ctx,
			`UPDATE carts SET updated_at = NOW() - INTERVAL '200 days' WHERE identity = 'acct_old'`)
		require.NoError(t, err)

		deleted, err := database.DeleteCartsStaleBefore(ctx, time.Now().Add(-180*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		_, exists, err := database.GetCart(ctx, "acct_new")
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

// TestPricingResolutionFlow resolves a product's price end to end: catalog
// rows and campaigns in the database, resolution through the campaign cache.
func TestPricingResolutionFlow(t *testing.T) {
	ctx := context.Background()

	cleanup, err := setupTestDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
		return
	}
	defer cleanup()

	product := &database.Product{
		ID:        "prd_hammer",
		Name:      "Claw Hammer",
		ListPrice: 1000,
	}
	require.NoError(t, database.UpsertProduct(ctx, product))

	require.NoError(t, database.UpsertProductVariant(ctx, &database.ProductVariant{
		ID: "var_1", ProductID: product.ID, Combination: "16oz", Price: 1000,
	}))
	require.NoError(t, database.UpsertProductVariant(ctx, &database.ProductVariant{
		ID: "var_2", ProductID: product.ID, Combination: "20oz", Price: 1250,
	}))

	now := time.Now()
	require.NoError(t, database.CreateCampaign(ctx, &pricing.Campaign{
		Name:       "Tool Week",
		Kind:       pricing.KindPercentage,
		Value:      20,
		Status:     pricing.StatusActive,
		StartTime:  now.Add(-time.Hour),
		EndTime:    now.Add(time.Hour),
		ProductIDs: []string{product.ID},
	}))

	cache := pricing.NewCampaignCache(database.Campaigns{}, 5*time.Minute, nil)
	resolver := pricing.NewResolver(cache, nil)

	info, err := database.GetProductPricing(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.ListPrice)
	assert.Equal(t, []int64{1000, 1250}, info.VariantPrices)

	outcome, err := resolver.Resolve(ctx, product.ID, info.ListPrice)
	require.NoError(t, err)
	assert.True(t, outcome.HasDiscount)
	assert.Equal(t, int64(1000), outcome.OriginalPrice)
	assert.Equal(t, int64(200), outcome.DiscountAmount)
	assert.Equal(t, int64(800), outcome.FinalPrice)
	assert.Equal(t, "Tool Week", outcome.CampaignName)

	min, max, err := pricing.PriceRange(info.VariantPrices)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), min)
	assert.Equal(t, int64(1250), max)

	t.Run("variant price upsert replaces by combination", func(t *testing.T) {
		require.NoError(t, database.UpsertProductVariant(ctx, &database.ProductVariant{
			ID: "var_3", ProductID: product.ID, Combination: "20oz", Price: 1300,
		}))

		info, err := database.GetProductPricing(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{1000, 1300}, info.VariantPrices)
	})

	t.Run("unknown product is a lookup miss", func(t *testing.T) {
		_, err := database.GetProductPricing(ctx, "prd_does_not_exist")
		require.Error(t, err)
		assert.True(t, database.IsNotFound(err))
	})
}
