package permission

import (
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	controller *PermissionController
	config     *config.Config
	perms      middleware.PermissionReader
}

func NewPermissionApi(controller *PermissionController, cfg *config.Config, perms middleware.PermissionReader) *PermissionApi {
	return &PermissionApi{
		controller: controller,
		config:     cfg,
		perms:      perms,
	}
}

// Setup registers permission catalog routes
func (h *PermissionApi) Setup(app *fiber.App) {
	permissions := app.Group("/api/permissions", middleware.AuthMiddleware(h.config.SkipAuth))

	permissions.Get("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "permissions.view"), h.controller.ListPermissions)
	permissions.Post("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "permissions.create"), h.controller.CreatePermission)
	permissions.Delete("/:key", middleware.RequirePermission(h.perms, h.config.SkipAuth, "permissions.delete"), h.controller.DeletePermission)
}
