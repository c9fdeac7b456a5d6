package user

import (
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	perms      middleware.PermissionReader
}

func NewUserApi(controller *UserController, cfg *config.Config, perms middleware.PermissionReader) *UserApi {
	return &UserApi{
		controller: controller,
		config:     cfg,
		perms:      perms,
	}
}

// Setup registers user routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	users.Get("/me", h.controller.Me)
	users.Get("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "users.view"), h.controller.ListUsers)
	users.Post("/", middleware.RequirePermission(h.perms, h.config.SkipAuth, "users.create"), h.controller.CreateUser)
	users.Get("/:id", middleware.RequirePermission(h.perms, h.config.SkipAuth, "users.view"), h.controller.GetUser)
	users.Put("/:id/role", middleware.RequirePermission(h.perms, h.config.SkipAuth, "users.change_role"), h.controller.ChangeUserRole)
}
