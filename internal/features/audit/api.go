package audit

import (
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	perms      middleware.PermissionReader
}

func NewAuditApi(controller *AuditController, cfg *config.Config, perms middleware.PermissionReader) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     cfg,
		perms:      perms,
	}
}

// Setup registers audit log routes
func (h *AuditApi) Setup(app *fiber.App) {
	logs := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth))

	logs.Get("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "system.audit"), h.controller.ListLogs)
}
