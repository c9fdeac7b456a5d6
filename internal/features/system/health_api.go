package system

import (
	"context"
	"time"

	"go-opsdesk/internal/database"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	db *database.MongodbDB
}

func NewHealthApi(db *database.MongodbDB) *HealthApi {
	return &HealthApi{db: db}
}

// Setup registers the health route
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := "ok"
		if err := h.db.DB.Client().Ping(ctx, nil); err != nil {
			status = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": status})
		}
		return c.JSON(fiber.Map{"status": status, "time": time.Now().UTC()})
	})
}
