package entity

import "time"

// EventKind tipo de evento de ubicación (IoT).
type EventKind string

const (
	EventItemAdded   EventKind = "item_added"
	EventItemRemoved EventKind = "item_removed"
)

// LocationEvent registro de auditoría append-only de un evento aplicado al inventario.
// Solo existe en la base de datos si se aplicó completo (Processed=true en el mismo commit).
type LocationEvent struct {
	ID              string
	StorageBinID    string
	ItemID          string
	RawLocation     string
	Event           EventKind
	Quantity        int // solicitada
	AppliedQuantity int // aplicada tras el recorte en salidas
	Timestamp       time.Time
	Processed       bool
	CreatedAt       time.Time
}
