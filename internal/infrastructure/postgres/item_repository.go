package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, name, quantity, part_number, manufacturer, contact, batch, expiry_date, custom_fields, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL.
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems.
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// FindByName coincidencia exacta sin distinguir mayúsculas. Se leen hasta dos filas para detectar ambigüedad.
func (r *ItemRepo) FindByName(ctx context.Context, name string) (*entity.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre vacío", domain.ErrItemNotFound)
	}
	query := `SELECT ` + itemColumns + `
		FROM items WHERE lower(btrim(name)) = lower($1) ORDER BY created_at LIMIT 2`
	rows, err := r.q.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	defer rows.Close()

	var found []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		found = append(found, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find item: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %q", domain.ErrItemNotFound, name)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q coincide con varios ítems", domain.ErrAmbiguousItem, name)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
		}
		return nil, classify("get item for update", err)
	}
	return it, nil
}

// UpdateQuantity fija la cantidad total del ítem.
func (r *ItemRepo) UpdateQuantity(ctx context.Context, id string, quantity int, now time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE items SET quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, now)
	if err != nil {
		return classify("update item quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.Name, &it.Quantity, &it.PartNumber, &it.Manufacturer, &it.Contact, &it.Batch,
		&it.ExpiryDate, &it.CustomFields, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
