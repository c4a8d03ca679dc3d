package entity

import (
	"encoding/json"
	"time"
)

// Item artículo del inventario. Quantity nunca es negativa.
type Item struct {
	ID           string
	Name         string
	Quantity     int
	PartNumber   string
	Manufacturer string
	Contact      string
	Batch        string
	ExpiryDate   *time.Time
	CustomFields json.RawMessage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired informa si el ítem vence en o antes de la fecha dada.
func (i *Item) IsExpired(today time.Time) bool {
	if i.ExpiryDate == nil {
		return false
	}
	y, m, d := today.Date()
	endOfDay := time.Date(y, m, d, 0, 0, 0, 0, today.Location()).AddDate(0, 0, 1)
	return i.ExpiryDate.Before(endOfDay)
}
