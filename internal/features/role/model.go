package role

import (
	"slices"
	"time"

	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/features/permission"
)

// The four system roles. Their ids double as document keys and are the
// canonical role identity everywhere (users reference roles by this id).
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleUser       = "user"
)

// DefaultCustomLevel is the hierarchy level custom roles start at, below
// every system role.
const DefaultCustomLevel = 20

// floors is the minimum permission set a system role can never drop below.
// The generic update path unions whatever an operator submits with this
// floor, so a system role cannot be stripped to an unusable state.
var floors = map[string][]string{
	RoleAdmin: {
		"users.view", "users.create", "users.edit", "users.change_role",
		"roles.view", "roles.edit",
		"permissions.view",
		"settings.view",
		"system.audit",
	},
	RoleModerator: {
		"users.view",
		"crm.view", "crm.reply",
		"dashboard.view",
	},
	RoleUser: {
		"crm.view",
		"dashboard.view",
	},
}

// MinimumFloor returns the non-negotiable permission floor for a system
// role; non-system roles have no floor. Super-admin's floor is the whole
// built-in catalog.
func MinimumFloor(roleID string) []string {
	if roleID == RoleSuperAdmin {
		return permission.BuiltinKeys()
	}
	return slices.Clone(floors[roleID])
}

// SystemRoleTemplates returns the four built-in roles with their default
// permission sets, used to seed an empty role store.
func SystemRoleTemplates() []common_models.Role {
	now := time.Now()

	adminDefaults := make([]string, 0)
	for _, key := range permission.BuiltinKeys() {
		// Catalog management stays with super-admin by default.
		if key == "permissions.create" || key == "permissions.delete" {
			continue
		}
		adminDefaults = append(adminDefaults, key)
	}

	moderatorDefaults := append(MinimumFloor(RoleModerator), "crm.assign")

	return []common_models.Role{
		{
			ID:          RoleSuperAdmin,
			Name:        "Super Admin",
			Description: "Full access to every console capability",
			IsSystem:    true,
			Level:       100,
			Permissions: permission.BuiltinKeys(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          RoleAdmin,
			Name:        "Admin",
			Description: "Manages users, roles and console settings",
			IsSystem:    true,
			Level:       80,
			Permissions: adminDefaults,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          RoleModerator,
			Name:        "Moderator",
			Description: "Works the CRM inbox and moderates conversations",
			IsSystem:    true,
			Level:       60,
			Permissions: moderatorDefaults,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          RoleUser,
			Name:        "User",
			Description: "Default role with read-mostly access",
			IsSystem:    true,
			Level:       40,
			Permissions: MinimumFloor(RoleUser),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

type UpdateRolePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// RoleWithUsage is a role annotated with its live-computed user count.
type RoleWithUsage struct {
	common_models.Role `bson:",inline"`
	UserCount          int64 `json:"user_count"`
}
