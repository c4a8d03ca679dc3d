package http

import (
	"github.com/gofiber/fiber/v2"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// PermissionHandler consulta de acceso por rol y administración de reglas página/acción.
type PermissionHandler struct {
	registry *appaccess.PermissionRegistry
	gate     *appaccess.AuthorizationGate
}

// NewPermissionHandler construye el handler.
func NewPermissionHandler(registry *appaccess.PermissionRegistry, gate *appaccess.AuthorizationGate) *PermissionHandler {
	return &PermissionHandler{registry: registry, gate: gate}
}

// PageAllowed godoc
// @Summary      ¿El rol del token puede ver la página?
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "clave de la página"
// @Success      200   {object}  dto.AllowedResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/access/pages/{name}/allowed [get]
func (h *PermissionHandler) PageAllowed(c *fiber.Ctx) error {
	return h.allowed(c, access.KindPage)
}

// ActionAllowed godoc
// @Summary      ¿El rol del token puede ejecutar la acción?
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Param        name  path  string  true  "clave de la acción"
// @Success      200   {object}  dto.AllowedResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/access/actions/{name}/allowed [get]
func (h *PermissionHandler) ActionAllowed(c *fiber.Ctx) error {
	return h.allowed(c, access.KindAction)
}

func (h *PermissionHandler) allowed(c *fiber.Ctx, kind access.ResourceKind) error {
	role := GetRole(c)
	d, err := h.gate.Check(c.Context(), role, kind, c.Params("name"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.AllowedResponse{
		Allowed:      d.Allowed,
		Reason:       d.Reason,
		Role:         role,
		RequiredRole: string(d.RequiredRole),
	}
	if d.RequiredLevel < access.LevelDenied {
		level := d.RequiredLevel
		out.RequiredLevel = &level
	}
	return c.JSON(out)
}

// ListPagePermissions godoc
// @Summary      Reglas de páginas configuradas
// @Tags         access
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.PermissionRuleDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/access/page-permissions [get]
func (h *PermissionHandler) ListPagePermissions(c *fiber.Ctx) error {
	return h.list(c, access.KindPage)
}

// UpsertPagePermission godoc
// @Summary      Crear o actualizar la regla de una página
// @Description  201 si la regla es nueva, 200 si ya existía. min_role vacío conserva el rol actual.
// @Tags         access
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertPermissionRequest  true  "key, min_role"
// @Success      200   {object}  dto.PermissionRuleDTO
// @Success      201   {object}  dto.PermissionRuleDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/access/page-permissions [post]
func (h *PermissionHandler) UpsertPagePermission(c *fiber.Ctx) error {
	return h.upsert(c, access.KindPage)
}

// DeletePagePermission godoc
// @Summary      Eliminar la regla de una página (vuelve a la política por defecto)
// @Tags         access
// @Security     Bearer
// @Param        key  path  string  true  "clave de la página"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/access/page-permissions/{key} [delete]
func (h *PermissionHandler) DeletePagePermission(c *fiber.Ctx) error {
	return h.delete(c, access.KindPage)
}

// ListActionPermissions GET /api/access/action-permissions
func (h *PermissionHandler) ListActionPermissions(c *fiber.Ctx) error {
	return h.list(c, access.KindAction)
}

// UpsertActionPermission POST /api/access/action-permissions
func (h *PermissionHandler) UpsertActionPermission(c *fiber.Ctx) error {
	return h.upsert(c, access.KindAction)
}

// DeleteActionPermission DELETE /api/access/action-permissions/:key
func (h *PermissionHandler) DeleteActionPermission(c *fiber.Ctx) error {
	return h.delete(c, access.KindAction)
}

func (h *PermissionHandler) list(c *fiber.Ctx, kind access.ResourceKind) error {
	rules, err := h.registry.List(c.Context(), kind)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PermissionRuleDTO, 0, len(rules))
	for _, r := range rules {
		out = append(out, toRuleDTO(r))
	}
	return c.JSON(out)
}

func (h *PermissionHandler) upsert(c *fiber.Ctx, kind access.ResourceKind) error {
	var in dto.UpsertPermissionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rule, created, err := h.registry.Upsert(c.Context(), kind, in.Key, in.MinRole)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(toRuleDTO(rule))
}

func (h *PermissionHandler) delete(c *fiber.Ctx, kind access.ResourceKind) error {
	if err := h.registry.Delete(c.Context(), kind, c.Params("key")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toRuleDTO(r *entity.PermissionRule) dto.PermissionRuleDTO {
	return dto.PermissionRuleDTO{
		ID:            r.ID,
		Kind:          string(r.Kind),
		Key:           r.Key,
		MinRole:       string(r.MinRole),
		RequiredLevel: r.MinRole.Level(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
