package inventory

import (
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// ApplyEvent muta el StockRecord y el Item según el evento y devuelve la cantidad efectivamente aplicada.
//
// Entradas suman en ambos. Salidas se recortan a lo disponible en el registro (nunca negativo) y
// descuentan lo retirado del ítem sin bajar de cero; el registro queda crítico si llega a cero.
func ApplyEvent(kind entity.EventKind, rec *entity.StockRecord, item *entity.Item, qty int) (int, error) {
	if qty < 1 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, qty)
	}
	switch kind {
	case entity.EventItemAdded:
		rec.Quantity += qty
		item.Quantity += qty
		rec.Critical = false
		return qty, nil
	case entity.EventItemRemoved:
		removed := qty
		if rec.Quantity < removed {
			removed = rec.Quantity
		}
		rec.Quantity -= removed
		item.Quantity -= removed
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		rec.Critical = rec.Quantity == 0
		return removed, nil
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInvalidEvent, kind)
}

// BinUsage recalcula el uso de un bin a partir de sus registros (reconstrucción, no contador).
func BinUsage(records []entity.StockRecord, binID string) int {
	total := 0
	for _, r := range records {
		if r.StorageBinID != nil && *r.StorageBinID == binID {
			total += r.Quantity
		}
	}
	return total
}
