package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura para el tablero de inventario.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

const itemMatch = `(i.name ILIKE $1 OR i.part_number ILIKE $1)`

// binsMatching subconsulta con los bins que tienen al menos un registro de un ítem coincidente.
const binsMatching = `
	SELECT sr.storage_bin_id FROM stock_records sr
	JOIN items i ON i.id = sr.item_id
	WHERE sr.storage_bin_id IS NOT NULL AND ` + itemMatch

func (r *DashboardRepo) count(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// CountItems ver repository.DashboardRepository.
func (r *DashboardRepo) CountItems(ctx context.Context, search string) (int64, error) {
	return r.count(ctx, "count items", `SELECT count(*) FROM items i WHERE `+itemMatch, likePattern(search))
}

// CountStockRecords ver repository.DashboardRepository.
func (r *DashboardRepo) CountStockRecords(ctx context.Context, search string) (int64, error) {
	return r.count(ctx, "count stock records",
		`SELECT count(*) FROM stock_records sr JOIN items i ON i.id = sr.item_id WHERE `+itemMatch, likePattern(search))
}

// CountBins ver repository.DashboardRepository.
func (r *DashboardRepo) CountBins(ctx context.Context, search string) (int64, error) {
	if search == "" {
		return r.count(ctx, "count bins", `SELECT count(*) FROM storage_bins`)
	}
	return r.count(ctx, "count bins",
		`SELECT count(DISTINCT m.storage_bin_id) FROM (`+binsMatching+`) m`, likePattern(search))
}

// CountExpiredItems ver repository.DashboardRepository.
func (r *DashboardRepo) CountExpiredItems(ctx context.Context, search string, today time.Time) (int64, error) {
	return r.count(ctx, "count expired items",
		`SELECT count(*) FROM items i WHERE i.expiry_date IS NOT NULL AND i.expiry_date <= $2 AND `+itemMatch,
		likePattern(search), time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))
}

// CapacityUtilization porcentaje used/capacity redondeado a 2 decimales (NUMERIC -> decimal.Decimal).
func (r *DashboardRepo) CapacityUtilization(ctx context.Context, search string) (decimal.Decimal, error) {
	query := `
		SELECT ROUND(100.0 * SUM(b.used) / NULLIF(SUM(b.capacity), 0), 2)
		FROM storage_bins b`
	args := []any{}
	if search != "" {
		query += ` WHERE b.id IN (` + binsMatching + `)`
		args = append(args, likePattern(search))
	}
	var pct decimal.NullDecimal
	if err := r.q.QueryRow(ctx, query, args...).Scan(&pct); err != nil {
		return decimal.Zero, fmt.Errorf("capacity utilization: %w", err)
	}
	if !pct.Valid {
		return decimal.Zero, nil
	}
	return pct.Decimal, nil
}
