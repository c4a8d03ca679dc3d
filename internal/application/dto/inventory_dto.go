package dto

import "time"

// LocationEventRequest body de POST /api/inventory/location-events (y valor de los mensajes Kafka).
type LocationEventRequest struct {
	Location  string `json:"location"`  // "A1-R02"
	ItemName  string `json:"item_name"` // coincidencia exacta sin distinguir mayúsculas
	Event     string `json:"event"`     // item_added | item_removed (acepta "Item Added")
	Quantity  *int   `json:"quantity,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // "DD/MM/YYYY HH:MM:SS" o ISO 8601
}

// LocationEventResponse resultado del evento aplicado.
type LocationEventResponse struct {
	EventID           string    `json:"event_id"`
	ResolvedLocation  string    `json:"resolved_location"`
	ItemName          string    `json:"item_name"`
	Event             string    `json:"event"`
	QuantityRequested int       `json:"quantity_requested"`
	QuantityApplied   int       `json:"quantity_applied"`
	BinUsedCapacity   int       `json:"bin_used_capacity"`
	BinCapacity       int       `json:"bin_capacity"`
	StockQuantity     int       `json:"stock_quantity"`
	Critical          bool      `json:"critical"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessedAt       time.Time `json:"processed_at"`
}
