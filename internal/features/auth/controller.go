package auth

import (
	"go-opsdesk/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Service AuthService
}

func NewAuthController(service AuthService) *AuthController {
	return &AuthController{Service: service}
}

func (ct *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := ct.Service.Login(c.UserContext(), &req)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}
