package permission

import (
	"regexp"
	"sort"

	common_models "go-opsdesk/internal/common/models"
)

// keyPattern is the lexical form every permission key must match:
// "category.action", lowercase, underscores allowed.
var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Categories a permission may belong to.
const (
	CategoryUsers       = "users"
	CategoryRoles       = "roles"
	CategoryPermissions = "permissions"
	CategoryCRM         = "crm"
	CategoryDashboard   = "dashboard"
	CategorySettings    = "settings"
	CategorySystem      = "system"
)

var knownCategories = map[string]struct{}{
	CategoryUsers:       {},
	CategoryRoles:       {},
	CategoryPermissions: {},
	CategoryCRM:         {},
	CategoryDashboard:   {},
	CategorySettings:    {},
	CategorySystem:      {},
}

func ValidCategory(category string) bool {
	_, ok := knownCategories[category]
	return ok
}

// builtins is the static table of permissions the console ships with. It is
// immutable at runtime; custom definitions live in storage and overlay this
// table on read.
var builtins = map[string]common_models.Permission{
	"users.view":        {Key: "users.view", Name: "View Users", Description: "View the user directory", Category: CategoryUsers},
	"users.create":      {Key: "users.create", Name: "Create Users", Description: "Create console users", Category: CategoryUsers},
	"users.edit":        {Key: "users.edit", Name: "Edit Users", Description: "Edit user profiles", Category: CategoryUsers},
	"users.delete":      {Key: "users.delete", Name: "Delete Users", Description: "Remove console users", Category: CategoryUsers},
	"users.change_role": {Key: "users.change_role", Name: "Change User Roles", Description: "Assign a different role to a user", Category: CategoryUsers},

	"roles.view":   {Key: "roles.view", Name: "View Roles", Description: "View roles and their permissions", Category: CategoryRoles},
	"roles.create": {Key: "roles.create", Name: "Create Roles", Description: "Create custom roles", Category: CategoryRoles},
	"roles.edit":   {Key: "roles.edit", Name: "Edit Roles", Description: "Edit role permission sets", Category: CategoryRoles},
	"roles.delete": {Key: "roles.delete", Name: "Delete Roles", Description: "Delete custom roles", Category: CategoryRoles},

	"permissions.view":   {Key: "permissions.view", Name: "View Permissions", Description: "View the permission catalog", Category: CategoryPermissions},
	"permissions.create": {Key: "permissions.create", Name: "Create Permissions", Description: "Define custom permissions", Category: CategoryPermissions},
	"permissions.delete": {Key: "permissions.delete", Name: "Delete Permissions", Description: "Delete custom permissions", Category: CategoryPermissions},

	"crm.view":   {Key: "crm.view", Name: "View Inbox", Description: "Read CRM conversations", Category: CategoryCRM},
	"crm.reply":  {Key: "crm.reply", Name: "Reply", Description: "Reply to CRM conversations", Category: CategoryCRM},
	"crm.assign": {Key: "crm.assign", Name: "Assign Conversations", Description: "Assign conversations to agents", Category: CategoryCRM},
	"crm.export": {Key: "crm.export", Name: "Export Conversations", Description: "Export conversation history", Category: CategoryCRM},

	"dashboard.view":   {Key: "dashboard.view", Name: "View Dashboards", Description: "View operational dashboards", Category: CategoryDashboard},
	"dashboard.manage": {Key: "dashboard.manage", Name: "Manage Dashboards", Description: "Create and edit dashboards", Category: CategoryDashboard},

	"settings.view": {Key: "settings.view", Name: "View Settings", Description: "View console settings", Category: CategorySettings},
	"settings.edit": {Key: "settings.edit", Name: "Edit Settings", Description: "Change console settings", Category: CategorySettings},

	"system.audit": {Key: "system.audit", Name: "Run Audits", Description: "View audit logs and run consistency audits", Category: CategorySystem},
	"system.logs":  {Key: "system.logs", Name: "View Logs", Description: "View application logs", Category: CategorySystem},
}

// Builtins returns a copy of the built-in table so callers can merge over it
// without mutating the shared definitions.
func Builtins() map[string]common_models.Permission {
	out := make(map[string]common_models.Permission, len(builtins))
	for k, v := range builtins {
		out[k] = v
	}
	return out
}

// BuiltinKeys returns the sorted keys of the built-in table.
func BuiltinKeys() []string {
	keys := make([]string, 0, len(builtins))
	for k := range builtins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func IsBuiltin(key string) bool {
	_, ok := builtins[key]
	return ok
}

type CreatePermissionRequest struct {
	Key               string   `json:"key" validate:"required"`
	Name              string   `json:"name" validate:"required"`
	Description       string   `json:"description"`
	Category          string   `json:"category" validate:"required"`
	AutoAssignToRoles []string `json:"auto_assign_to_roles"`
}
