//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	"github.com/jhoicas/backoffice-api/internal/application/analytics"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-api/migrations"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if _, err := testcontainers.ProviderDocker.GetProvider(); err != nil {
		t.Skip("docker no disponible:", err)
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	m, err := postgres.NewFSMigrator(pool, migrations.FS, nil)
	require.NoError(t, err)
	_, err = m.MigrateUp(ctx)
	require.NoError(t, err)
	return pool
}

func seedBin(t *testing.T, pool *pgxpool.Pool, row, rack string, capacity int) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO storage_bins (id, bin_id, bin_row, bin_rack, capacity) VALUES ($1, $2, $3, $4, $5)`,
		id, row+"-"+rack, row, rack, capacity)
	require.NoError(t, err)
	return id
}

func seedItem(t *testing.T, pool *pgxpool.Pool, name, partNumber string, qty int, expiry *time.Time) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO items (id, name, part_number, quantity, expiry_date) VALUES ($1, $2, $3, $4, $5)`,
		id, name, partNumber, qty, expiry)
	require.NoError(t, err)
	return id
}

func newProcessor(pool *pgxpool.Pool) *inventory.LocationEventProcessor {
	return inventory.NewLocationEventProcessor(
		postgres.NewTxRunner(pool),
		postgres.NewStorageBinRepository(pool),
		postgres.NewItemRepository(pool),
		nil, nil, nil,
		inventory.ProcessorConfig{MaxRetries: 3},
	)
}

func qty(n int) *int { return &n }

func TestIntegration_Migrator(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	m, err := postgres.NewFSMigrator(pool, migrations.FS, nil)
	require.NoError(t, err)
	st, err := m.Status(ctx)
	require.NoError(t, err)
	assert.False(t, st.HasPendingChanges)
	assert.Equal(t, st.TotalMigrations, st.CurrentVersion)

	require.NoError(t, m.MigrateDown(ctx))
	st, err = m.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.HasPendingChanges)

	n, err := m.MigrateUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIntegration_PermissionRepo(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	reg, err := appaccess.NewPermissionRegistry(postgres.NewPermissionRepository(pool), appaccess.DefaultPolicy{
		Page: string(access.RoleStaff), Action: appaccess.PolicyDeny,
	})
	require.NoError(t, err)

	// Sembrada por la migración 0002.
	req, err := reg.GetRequiredLevel(ctx, access.KindAction, "generate_api_key")
	require.NoError(t, err)
	assert.True(t, req.Configured)
	assert.Equal(t, access.RoleAdmin.Level(), req.Level)

	rule, created, err := reg.Upsert(ctx, access.KindAction, "delete_item", "md")
	require.NoError(t, err)
	assert.True(t, created)
	id := rule.ID

	rule, created, err = reg.Upsert(ctx, access.KindAction, "delete_item", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, rule.ID)
	assert.Equal(t, access.RoleMD, rule.MinRole)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := reg.Upsert(ctx, access.KindPage, "warehouse", "finance_manager")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	var n int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM permission_rules WHERE kind = 'page' AND key = 'warehouse'`).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, reg.Delete(ctx, access.KindAction, "delete_item"))
	assert.ErrorIs(t, reg.Delete(ctx, access.KindAction, "delete_item"), domain.ErrNotFound)
}

func TestIntegration_ProcesaEventos(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	binID := seedBin(t, pool, "A1", "R02", 100)
	itemID := seedItem(t, pool, "Widget", "WG-1", 0, nil)
	p := newProcessor(pool)

	res, err := p.Process(ctx, inventory.LocationEventInput{Location: "a1 – r02", ItemName: "widget", Event: "item_added", Quantity: qty(5)})
	require.NoError(t, err)
	assert.Equal(t, "A1-R02", res.ResolvedLocation)
	assert.Equal(t, 5, res.BinUsedCapacity)

	res, err = p.Process(ctx, inventory.LocationEventInput{Location: "A1-R02", ItemName: "Widget", Event: "item_removed", Quantity: qty(8)})
	require.NoError(t, err)
	assert.Equal(t, 5, res.QuantityApplied)
	assert.True(t, res.Critical)
	assert.Equal(t, 0, res.BinUsedCapacity)

	var itemQty, used, events int
	require.NoError(t, pool.QueryRow(ctx, `SELECT quantity FROM items WHERE id = $1`, itemID).Scan(&itemQty))
	require.NoError(t, pool.QueryRow(ctx, `SELECT used FROM storage_bins WHERE id = $1`, binID).Scan(&used))
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM location_events WHERE processed`).Scan(&events))
	assert.Equal(t, 0, itemQty)
	assert.Equal(t, 0, used)
	assert.Equal(t, 2, events)

	_, err = p.Process(ctx, inventory.LocationEventInput{Location: "Z9-R99", ItemName: "Widget", Event: "item_added"})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM location_events`).Scan(&events))
	assert.Equal(t, 2, events)
}

func TestIntegration_SalidasConcurrentes(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	seedBin(t, pool, "B2", "R01", 50)
	itemID := seedItem(t, pool, "Gadget", "GD-1", 0, nil)
	p := newProcessor(pool)

	_, err := p.Process(ctx, inventory.LocationEventInput{Location: "B2-R01", ItemName: "Gadget", Event: "item_added", Quantity: qty(4)})
	require.NoError(t, err)

	applied := make([]int, 2)
	var wg sync.WaitGroup
	for i := range applied {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := p.Process(ctx, inventory.LocationEventInput{Location: "B2-R01", ItemName: "Gadget", Event: "item_removed", Quantity: qty(3)})
			if assert.NoError(t, err) {
				applied[i] = res.QuantityApplied
			}
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{3, 1}, applied)
	var itemQty, stockQty int
	require.NoError(t, pool.QueryRow(ctx, `SELECT quantity FROM items WHERE id = $1`, itemID).Scan(&itemQty))
	require.NoError(t, pool.QueryRow(ctx, `SELECT quantity FROM stock_records WHERE item_id = $1`, itemID).Scan(&stockQty))
	assert.Equal(t, 0, itemQty)
	assert.Equal(t, 0, stockQty)
}

func TestIntegration_Dashboard(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	seedBin(t, pool, "C1", "R01", 40)
	seedBin(t, pool, "C1", "R02", 60)
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	seedItem(t, pool, "Tornillo", "TR-10", 0, &yesterday)
	seedItem(t, pool, "Tuerca", "TC-20", 0, nil)
	p := newProcessor(pool)

	_, err := p.Process(ctx, inventory.LocationEventInput{Location: "C1-R01", ItemName: "Tornillo", Event: "item_added", Quantity: qty(10)})
	require.NoError(t, err)
	_, err = p.Process(ctx, inventory.LocationEventInput{Location: "C1-R02", ItemName: "Tuerca", Event: "item_added", Quantity: qty(20)})
	require.NoError(t, err)

	agg := analytics.NewDashboardAggregator(postgres.NewDashboardRepository(pool))

	all, err := agg.Counts(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalItems)
	assert.EqualValues(t, 2, all.TotalStockRecords)
	assert.EqualValues(t, 2, all.TotalBins)
	assert.EqualValues(t, 1, all.TotalExpiredItems)
	assert.Equal(t, "30", all.CapacityUtilization.String())

	filtered, err := agg.Counts(ctx, "tr-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, filtered.TotalItems)
	assert.EqualValues(t, 1, filtered.TotalBins)
	assert.Equal(t, "25", filtered.CapacityUtilization.String())
}
