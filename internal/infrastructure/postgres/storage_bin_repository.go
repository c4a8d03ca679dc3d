package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.StorageBinRepository = (*StorageBinRepo)(nil)

const binColumns = `id, bin_id, bin_row, bin_rack, shelf, bin_type, capacity, used, description, created_at, updated_at`

// StorageBinRepo implementación de StorageBinRepository sobre PostgreSQL (usable con pool o tx).
type StorageBinRepo struct {
	q Querier
}

// NewStorageBinRepository construye el adaptador de bins.
func NewStorageBinRepository(q Querier) *StorageBinRepo {
	return &StorageBinRepo{q: q}
}

// FindByLocation usa el índice único (upper(bin_row), upper(bin_rack)).
func (r *StorageBinRepo) FindByLocation(ctx context.Context, row, rack string) (*entity.StorageBin, error) {
	query := `SELECT ` + binColumns + `
		FROM storage_bins WHERE upper(bin_row) = upper($1) AND upper(bin_rack) = upper($2)`
	b, err := scanBin(r.q.QueryRow(ctx, query, row, rack))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s-%s", domain.ErrLocationNotFound, row, rack)
		}
		return nil, fmt.Errorf("find storage bin: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el bin y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StorageBinRepo) GetForUpdate(ctx context.Context, id string) (*entity.StorageBin, error) {
	query := `SELECT ` + binColumns + ` FROM storage_bins WHERE id = $1 FOR UPDATE`
	b, err := scanBin(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: bin %s", domain.ErrLocationNotFound, id)
		}
		return nil, classify("get storage bin for update", err)
	}
	return b, nil
}

// UpdateUsed fija el uso recalculado del bin.
func (r *StorageBinRepo) UpdateUsed(ctx context.Context, id string, used int, now time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE storage_bins SET used = $2, updated_at = $3 WHERE id = $1`, id, used, now)
	if err != nil {
		return classify("update storage bin used", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: bin %s", domain.ErrLocationNotFound, id)
	}
	return nil
}

func scanBin(row pgx.Row) (*entity.StorageBin, error) {
	var b entity.StorageBin
	err := row.Scan(&b.ID, &b.BinID, &b.Row, &b.Rack, &b.Shelf, &b.Type, &b.Capacity, &b.Used,
		&b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
