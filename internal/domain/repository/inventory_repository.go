package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// StorageBinRepository puerto de bins. Las lecturas con ForUpdate solo tienen sentido dentro de una transacción.
type StorageBinRepository interface {
	// FindByLocation busca por (row, rack) sin distinguir mayúsculas; domain.ErrLocationNotFound si no existe.
	FindByLocation(ctx context.Context, row, rack string) (*entity.StorageBin, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StorageBin, error)
	UpdateUsed(ctx context.Context, id string, used int, now time.Time) error
}

// ItemRepository puerto de ítems.
type ItemRepository interface {
	// FindByName coincidencia exacta sin distinguir mayúsculas.
	// domain.ErrItemNotFound si no hay coincidencia, domain.ErrAmbiguousItem si hay varias.
	FindByName(ctx context.Context, name string) (*entity.Item, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	UpdateQuantity(ctx context.Context, id string, quantity int, now time.Time) error
}

// StockRecordRepository puerto de existencias por (ítem, bin).
type StockRecordRepository interface {
	// GetOrCreateForUpdate devuelve el registro bloqueado, creándolo con cantidad 0 si no existe.
	GetOrCreateForUpdate(ctx context.Context, itemID, binID, location string, now time.Time) (*entity.StockRecord, error)
	Update(ctx context.Context, rec *entity.StockRecord) error
	// SumQuantityByBin suma las cantidades de todos los registros asignados al bin.
	SumQuantityByBin(ctx context.Context, binID string) (int, error)
}

// LocationEventRepository bitácora append-only de eventos de ubicación.
type LocationEventRepository interface {
	Create(ctx context.Context, ev *entity.LocationEvent) error
	// MarkProcessed marca el evento como procesado una sola vez; domain.ErrConflict si ya lo estaba.
	MarkProcessed(ctx context.Context, id string, applied int) error
}
