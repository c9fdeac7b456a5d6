package sync

import (
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	config     *config.Config
	perms      middleware.PermissionReader
}

func NewSyncApi(controller *SyncController, cfg *config.Config, perms middleware.PermissionReader) *SyncApi {
	return &SyncApi{
		controller: controller,
		config:     cfg,
		perms:      perms,
	}
}

// Setup registers sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	group := app.Group("/api/sync", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/consistency", middleware.RequirePermission(h.perms, h.config.SkipAuth, "system.audit"), h.controller.ValidateConsistency)
}
