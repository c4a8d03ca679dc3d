package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

// writeError traduce errores de dominio a la respuesta HTTP. Los errores internos no exponen detalle.
func writeError(c *fiber.Ctx, err error) error {
	status, code := statusOf(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInternal):
		return fiber.StatusInternalServerError, "INTERNAL"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrLocationNotFound):
		return fiber.StatusNotFound, "LOCATION_NOT_FOUND"
	case errors.Is(err, domain.ErrItemNotFound):
		return fiber.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidEvent):
		return fiber.StatusBadRequest, "INVALID_EVENT"
	case errors.Is(err, domain.ErrInvalidTimestamp):
		return fiber.StatusBadRequest, "INVALID_TIMESTAMP"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return fiber.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrAmbiguousItem):
		return fiber.StatusBadRequest, "AMBIGUOUS_ITEM"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}
