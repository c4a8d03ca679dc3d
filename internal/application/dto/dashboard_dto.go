package dto

import "github.com/shopspring/decimal"

// InventoryCountsDTO respuesta de GET /api/inventory/metrics.
type InventoryCountsDTO struct {
	TotalItems          int64           `json:"total_items"`
	TotalStockRecords   int64           `json:"total_stock_records"`
	TotalBins           int64           `json:"total_bins"`
	TotalExpiredItems   int64           `json:"total_expired_items"`
	CapacityUtilization decimal.Decimal `json:"capacity_utilization"` // porcentaje used/capacity, 2 decimales
	Search              string          `json:"search,omitempty"`
}
