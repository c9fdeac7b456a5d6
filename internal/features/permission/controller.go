package permission

import (
	"go-opsdesk/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	PermissionService PermissionService
}

func NewPermissionController(permissionService PermissionService) *PermissionController {
	return &PermissionController{
		PermissionService: permissionService,
	}
}

// CreatePermission godoc
// @Summary      Create a custom permission
// @Description  Define a new permission key, optionally auto-assigning it to roles
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        permission body CreatePermissionRequest true "Permission definition"
// @Success      201  {object} models.Permission
// @Failure      400  {string} string "Invalid permission key"
// @Failure      409  {string} string "Key already exists"
// @Router       /api/permissions [post]
func (ctrl *PermissionController) CreatePermission(c *fiber.Ctx) error {
	var req CreatePermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	created, err := ctrl.PermissionService.CreatePermission(c.UserContext(), req)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// DeletePermission godoc
// @Summary      Delete a custom permission
// @Description  Remove a permission from the catalog and from every role referencing it
// @Tags         permissions
// @Produce      json
// @Param        key path string true "Permission key"
// @Success      200  {object} map[string]interface{}
// @Failure      403  {string} string "Built-in permission"
// @Failure      404  {string} string "Permission not found"
// @Router       /api/permissions/{key} [delete]
func (ctrl *PermissionController) DeletePermission(c *fiber.Ctx) error {
	key := c.Params("key")

	updatedRoles, err := ctrl.PermissionService.DeletePermission(c.UserContext(), key)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":       "Permission deleted successfully",
		"updated_roles": updatedRoles,
	})
}

// ListPermissions godoc
// @Summary      List permissions
// @Description  Built-in and custom permission definitions merged into one map
// @Tags         permissions
// @Produce      json
// @Success      200  {object} map[string]models.Permission
// @Router       /api/permissions [get]
func (ctrl *PermissionController) ListPermissions(c *fiber.Ctx) error {
	permissions, err := ctrl.PermissionService.ListPermissions(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(permissions)
}
