package sync

import (
	"context"

	common_models "go-opsdesk/internal/common/models"
)

// Action describes the mutation that already happened on the source entity
// before the synchronizer is invoked.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DefaultRoleID is the role users fall back to when their role is deleted
// or can no longer be resolved.
const DefaultRoleID = "user"

const (
	usersCollection = "users"
	rolesCollection = "roles"
)

// PermissionChange carries the optional data of a permission create/update.
type PermissionChange struct {
	AutoAssignToRoles []string
}

// Report is what a consistency audit returns: counts instead of a boolean,
// so operators can tell "ran clean" apart from "ran and fixed N records".
type Report struct {
	FixedUsers int `json:"fixed_users"`
	FixedRoles int `json:"fixed_roles"`
}

// RoleStore is the slice of the role repository the synchronizer needs.
type RoleStore interface {
	List(ctx context.Context) ([]common_models.Role, error)
	FindByID(ctx context.Context, id string) (*common_models.Role, error)
	SetPermissions(ctx context.Context, id string, permissions []string) error
}

// UserStore is the slice of the user repository the synchronizer needs.
type UserStore interface {
	List(ctx context.Context) ([]common_models.User, error)
	FindByRole(ctx context.Context, roleID string) ([]common_models.User, error)
}

// Catalog reports the set of permission keys that currently exist, built-in
// and custom merged.
type Catalog interface {
	Keys(ctx context.Context) (map[string]struct{}, error)
}
