package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-api/internal/domain/access"
)

// authorizer contrato mínimo de la compuerta; lo implementa *access.AuthorizationGate.
type authorizer interface {
	Authorize(ctx context.Context, role string, res access.Resource) error
}

// RequireAccess exige la página y/o acción indicadas para el rol del token.
// Va DESPUÉS de AuthMiddleware y antes de cualquier handler que lea o mute datos.
func RequireAccess(gate authorizer, res access.Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := gate.Authorize(c.Context(), GetRole(c), res); err != nil {
			return writeError(c, err)
		}
		return c.Next()
	}
}
