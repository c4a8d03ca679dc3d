package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
)

// DashboardHandler métricas del inventario.
type DashboardHandler struct {
	uc *appanalytics.DashboardAggregator
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardAggregator) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetInventoryMetrics devuelve los totales del inventario.
// GET /api/inventory/metrics?search=
//
// search filtra por nombre o número de parte (contiene, sin distinguir mayúsculas).
// Un filtro sin coincidencias devuelve ceros.
func (h *DashboardHandler) GetInventoryMetrics(c *fiber.Ctx) error {
	counts, err := h.uc.Counts(c.Context(), c.Query("search"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(counts)
}
