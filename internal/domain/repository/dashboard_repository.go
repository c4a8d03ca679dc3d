package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardRepository consultas de solo lectura para el tablero de inventario.
// search filtra por subcadena (sin distinguir mayúsculas) en nombre o número de parte del ítem; vacío = sin filtro.
type DashboardRepository interface {
	CountItems(ctx context.Context, search string) (int64, error)
	CountStockRecords(ctx context.Context, search string) (int64, error)
	// CountBins cuenta todos los bins o, con filtro, los que tienen al menos un registro de un ítem coincidente.
	CountBins(ctx context.Context, search string) (int64, error)
	// CountExpiredItems ítems con fecha de vencimiento en o antes de today.
	CountExpiredItems(ctx context.Context, search string, today time.Time) (int64, error)
	// CapacityUtilization porcentaje used/capacity sobre los bins contados (0 si no hay capacidad).
	CapacityUtilization(ctx context.Context, search string) (decimal.Decimal, error)
}
