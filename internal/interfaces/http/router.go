package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appaccess "github.com/jhoicas/backoffice-api/internal/application/access"
	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain/access"
	"github.com/jhoicas/backoffice-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Registry  *appaccess.PermissionRegistry
	Gate      *appaccess.AuthorizationGate
	Processor *inventory.LocationEventProcessor
	Dashboard *appanalytics.DashboardAggregator
	Metrics   *metrics.Metrics            // opcional
	Health    func(context.Context) error // opcional: ping de dependencias
	JWTSecret string
	AppName   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			if err := deps.Health(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.AppName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Access: consultas para cualquier usuario autenticado; administración solo admin.
	permissionHandler := NewPermissionHandler(deps.Registry, deps.Gate)
	accessGroup := protected.Group("/access")
	accessGroup.Get("/pages/:name/allowed", permissionHandler.PageAllowed)
	accessGroup.Get("/actions/:name/allowed", permissionHandler.ActionAllowed)

	adminOnly := RequireRole(string(access.RoleAdmin))
	pagePerms := accessGroup.Group("/page-permissions", adminOnly)
	pagePerms.Get("/", permissionHandler.ListPagePermissions)
	pagePerms.Post("/", permissionHandler.UpsertPagePermission)
	pagePerms.Delete("/:key", permissionHandler.DeletePagePermission)

	actionPerms := accessGroup.Group("/action-permissions", adminOnly)
	actionPerms.Get("/", permissionHandler.ListActionPermissions)
	actionPerms.Post("/", permissionHandler.UpsertActionPermission)
	actionPerms.Delete("/:key", permissionHandler.DeleteActionPermission)

	// Inventory (protegido por página/acción)
	invGroup := protected.Group("/inventory")
	locationHandler := NewLocationEventHandler(deps.Processor)
	invGroup.Post("/location-events", RequireAccess(deps.Gate, access.Action("create_location_event")), locationHandler.Create)

	dashboardHandler := NewDashboardHandler(deps.Dashboard)
	invGroup.Get("/metrics", RequireAccess(deps.Gate, access.Page("inventory_metrics")), dashboardHandler.GetInventoryMetrics)
}
