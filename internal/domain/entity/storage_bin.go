package entity

import "time"

// StorageBin ubicación física direccionable por (Row, Rack), p. ej. "A1-R02".
// Used es un campo derivado: suma de las cantidades de los StockRecord asignados al bin.
type StorageBin struct {
	ID          string
	BinID       string // código único visible
	Row         string
	Rack        string
	Shelf       string
	Type        string
	Capacity    int
	Used        int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocationCode devuelve el código "pasillo-rack" del bin.
func (b *StorageBin) LocationCode() string {
	return b.Row + "-" + b.Rack
}
