package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
)

// HeaderIdempotencyKey cabecera opcional para detectar reenvíos del mismo evento.
const HeaderIdempotencyKey = "Idempotency-Key"

// LocationEventHandler recibe los eventos de ubicación de los lectores IoT (protegido).
type LocationEventHandler struct {
	processor *inventory.LocationEventProcessor
}

// NewLocationEventHandler construye el handler.
func NewLocationEventHandler(processor *inventory.LocationEventProcessor) *LocationEventHandler {
	return &LocationEventHandler{processor: processor}
}

// Create godoc
// @Summary      Registrar evento de ubicación
// @Description  Aplica item_added / item_removed al bin indicado. Las salidas se recortan a la existencia.
//
//	Con Idempotency-Key, un reenvío devuelve 200 con el resultado original.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                    false  "clave de idempotencia"
// @Param        body             body    dto.LocationEventRequest  true   "location, item_name, event, quantity, timestamp"
// @Success      201  {object}  dto.LocationEventResponse
// @Success      200  {object}  dto.LocationEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/location-events [post]
func (h *LocationEventHandler) Create(c *fiber.Ctx) error {
	var in dto.LocationEventRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.processor.Process(c.Context(), inventory.LocationEventInput{
		Location:       in.Location,
		ItemName:       in.ItemName,
		Event:          in.Event,
		Quantity:       in.Quantity,
		Timestamp:      in.Timestamp,
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toLocationEventResponse(res))
}

func toLocationEventResponse(r *inventory.LocationEventResult) dto.LocationEventResponse {
	return dto.LocationEventResponse{
		EventID:           r.EventID,
		ResolvedLocation:  r.ResolvedLocation,
		ItemName:          r.ItemName,
		Event:             string(r.Event),
		QuantityRequested: r.QuantityRequested,
		QuantityApplied:   r.QuantityApplied,
		BinUsedCapacity:   r.BinUsedCapacity,
		BinCapacity:       r.BinCapacity,
		StockQuantity:     r.StockQuantity,
		Critical:          r.Critical,
		Timestamp:         r.Timestamp,
		ProcessedAt:       r.ProcessedAt,
	}
}
