package role

import (
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller *RoleController
	config     *config.Config
	perms      middleware.PermissionReader
}

func NewRoleApi(controller *RoleController, cfg *config.Config, perms middleware.PermissionReader) *RoleApi {
	return &RoleApi{
		controller: controller,
		config:     cfg,
		perms:      perms,
	}
}

// Setup registers role routes
func (h *RoleApi) Setup(app *fiber.App) {
	roles := app.Group("/api/roles", middleware.AuthMiddleware(h.config.SkipAuth))

	roles.Get("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "roles.view"), h.controller.ListRoles)
	roles.Post("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "roles.create"), h.controller.CreateRole)
	roles.Get("/:id", middleware.RequirePermission(h.perms, h.config.SkipAuth, "roles.view"), h.controller.GetRole)
	roles.Put("/:id/permissions", middleware.RequirePermission(h.perms, h.config.SkipAuth, "roles.edit"), h.controller.UpdateRolePermissions)
	roles.Delete("/:id", middleware.RequirePermission(h.perms, h.config.SkipAuth, "roles.delete"), h.controller.DeleteRole)
}
