package inventory

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo. Los conflictos de serialización o de bloqueo
// se reportan como domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		binRepo repository.StorageBinRepository,
		itemRepo repository.ItemRepository,
		stockRepo repository.StockRecordRepository,
		eventRepo repository.LocationEventRepository,
	) error) error
}

// IdempotencyStore detecta reenvíos del mismo evento (cabecera Idempotency-Key o clave del mensaje Kafka).
type IdempotencyStore interface {
	// Reserve marca la clave como en curso; false si ya existía.
	Reserve(ctx context.Context, key string) (bool, error)
	// Get devuelve el resultado almacenado; nil si la clave está en curso o no existe.
	Get(ctx context.Context, key string) (*LocationEventResult, error)
	// Complete guarda el resultado final de la clave.
	Complete(ctx context.Context, key string, res *LocationEventResult) error
	// Release libera la clave tras un fallo para permitir reenviar.
	Release(ctx context.Context, key string) error
}
