package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.LocationEventRepository = (*LocationEventRepo)(nil)

// LocationEventRepo bitácora de eventos de ubicación sobre PostgreSQL.
type LocationEventRepo struct {
	q Querier
}

// NewLocationEventRepository construye el adaptador.
func NewLocationEventRepository(q Querier) *LocationEventRepo {
	return &LocationEventRepo{q: q}
}

// Create inserta el evento sin procesar.
func (r *LocationEventRepo) Create(ctx context.Context, ev *entity.LocationEvent) error {
	query := `
		INSERT INTO location_events
			(id, storage_bin_id, item_id, raw_location, event, quantity, applied_quantity, event_timestamp, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, false, $8)`
	_, err := r.q.Exec(ctx, query,
		ev.ID, ev.StorageBinID, ev.ItemID, ev.RawLocation, string(ev.Event), ev.Quantity, ev.Timestamp, ev.CreatedAt,
	)
	if err != nil {
		return classify("insert location event", err)
	}
	return nil
}

// MarkProcessed cambia processed a true una sola vez.
func (r *LocationEventRepo) MarkProcessed(ctx context.Context, id string, applied int) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE location_events SET processed = true, applied_quantity = $2 WHERE id = $1 AND NOT processed`,
		id, applied,
	)
	if err != nil {
		return classify("mark location event processed", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: evento %s inexistente o ya procesado", domain.ErrConflict, id)
	}
	return nil
}
