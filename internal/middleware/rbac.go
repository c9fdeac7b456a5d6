package middleware

import (
	"context"
	"slices"

	"go-opsdesk/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// PermissionReader returns the materialized permission list cached on a
// user document. Authorization never resolves the role itself; the sync
// service is responsible for keeping the cached list correct.
type PermissionReader interface {
	PermissionsOf(ctx context.Context, userID string) ([]string, error)
}

// RequirePermission checks if the user has a specific permission key
func RequirePermission(reader PermissionReader, skipAuth bool, requiredPermission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			return c.Next()
		}

		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		permissions, err := reader.PermissionsOf(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		if !slices.Contains(permissions, requiredPermission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient permissions",
			})
		}

		return c.Next()
	}
}
