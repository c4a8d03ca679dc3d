package entity

import "time"

// StockRecord existencias de un ítem en un bin. Hay un único registro por (ItemID, StorageBinID).
// Critical se marca cuando una salida deja la cantidad en cero.
type StockRecord struct {
	ID           string
	ItemID       string
	StorageBinID *string
	Location     string // texto libre de respaldo
	Quantity     int
	Critical     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
