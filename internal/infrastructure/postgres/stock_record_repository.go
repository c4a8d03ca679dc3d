package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL.
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de registros de stock.
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// GetOrCreateForUpdate inserta el registro (ítem, bin) si falta y lo devuelve bloqueado.
// ON CONFLICT DO NOTHING evita duplicados cuando dos transacciones lo crean a la vez.
func (r *StockRecordRepo) GetOrCreateForUpdate(ctx context.Context, itemID, binID, location string, now time.Time) (*entity.StockRecord, error) {
	insert := `
		INSERT INTO stock_records (id, item_id, storage_bin_id, location, quantity, critical, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, false, $5, $5)
		ON CONFLICT (item_id, storage_bin_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), itemID, binID, location, now); err != nil {
		return nil, classify("insert stock record", err)
	}

	query := `
		SELECT id, item_id, storage_bin_id, location, quantity, critical, created_at, updated_at
		FROM stock_records WHERE item_id = $1 AND storage_bin_id = $2
		FOR UPDATE`
	var rec entity.StockRecord
	err := r.q.QueryRow(ctx, query, itemID, binID).Scan(
		&rec.ID, &rec.ItemID, &rec.StorageBinID, &rec.Location, &rec.Quantity, &rec.Critical, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, classify("get stock record for update", err)
	}
	return &rec, nil
}

// Update persiste cantidad y bandera crítica.
func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord) error {
	query := `UPDATE stock_records SET quantity = $2, critical = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, rec.ID, rec.Quantity, rec.Critical, rec.UpdatedAt)
	if err != nil {
		return classify("update stock record", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: registro de stock %s", domain.ErrNotFound, rec.ID)
	}
	return nil
}

// SumQuantityByBin reconstruye el uso del bin desde sus registros.
func (r *StockRecordRepo) SumQuantityByBin(ctx context.Context, binID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::int FROM stock_records WHERE storage_bin_id = $1`, binID,
	).Scan(&total)
	if err != nil {
		return 0, classify("sum stock by bin", err)
	}
	return total, nil
}
