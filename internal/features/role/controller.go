package role

import (
	"go-opsdesk/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type RoleController struct {
	RoleService RoleService
}

func NewRoleController(roleService RoleService) *RoleController {
	return &RoleController{
		RoleService: roleService,
	}
}

// ListRoles godoc
// @Summary      List roles
// @Description  All roles, each annotated with its live user count
// @Tags         roles
// @Produce      json
// @Success      200  {array} RoleWithUsage
// @Router       /api/roles [get]
func (ctrl *RoleController) ListRoles(c *fiber.Ctx) error {
	roles, err := ctrl.RoleService.ListRoles(c.UserContext())
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(roles)
}

// GetRole godoc
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200  {object} models.Role
// @Failure      404  {string} string "Role not found"
// @Router       /api/roles/{id} [get]
func (ctrl *RoleController) GetRole(c *fiber.Ctx) error {
	role, err := ctrl.RoleService.GetRole(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(role)
}

// CreateRole godoc
// @Summary      Create a custom role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        role body CreateRoleRequest true "Role definition"
// @Success      201  {object} models.Role
// @Failure      409  {string} string "Role already exists"
// @Router       /api/roles [post]
func (ctrl *RoleController) CreateRole(c *fiber.Ctx) error {
	var req CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	created, err := ctrl.RoleService.CreateRole(c.UserContext(), req)
	if err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateRolePermissions godoc
// @Summary      Replace a role's permission set
// @Description  Persists the new set and propagates it to every user on the role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id path string true "Role ID"
// @Param        permissions body UpdateRolePermissionsRequest true "New permission keys"
// @Success      200  {object} map[string]string
// @Failure      404  {string} string "Role not found"
// @Router       /api/roles/{id}/permissions [put]
func (ctrl *RoleController) UpdateRolePermissions(c *fiber.Ctx) error {
	var req UpdateRolePermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.RoleService.UpdateRolePermissions(c.UserContext(), c.Params("id"), req.Permissions); err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Role permissions updated successfully",
	})
}

// DeleteRole godoc
// @Summary      Delete a custom role
// @Description  Users on the role are reassigned to the default role first
// @Tags         roles
// @Produce      json
// @Param        id path string true "Role ID"
// @Success      200  {object} map[string]string
// @Failure      403  {string} string "System role"
// @Failure      404  {string} string "Role not found"
// @Router       /api/roles/{id} [delete]
func (ctrl *RoleController) DeleteRole(c *fiber.Ctx) error {
	if err := ctrl.RoleService.DeleteRole(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(apperr.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Role deleted successfully",
	})
}
