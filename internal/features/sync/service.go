// Package sync is the propagation engine that keeps the materialized
// permission list on every user document consistent with the canonical set
// on that user's role. Every mutation on the permission catalog, the role
// store or the user directory is followed by exactly one call into this
// package; each call reads current state fresh, stages all dependent user
// writes and commits them as one batch. Across calls the policy is last
// batch committed wins; the consistency auditor repairs any drift that
// interleaved calls leave behind.
package sync

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go-opsdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type Service interface {
	// OnPermissionChanged propagates a permission catalog mutation. For a
	// delete it strips the key out of every role referencing it and fans out
	// to those roles' users; for create/update it appends the key to the
	// roles named in change.AutoAssignToRoles (best-effort per role) and
	// fans out identically. Returns the names of the roles that changed.
	OnPermissionChanged(ctx context.Context, key string, action Action, change *PermissionChange) ([]string, error)

	// OnRoleChanged propagates a role mutation to the role's users. A delete
	// reassigns them to the default role with that role's current canonical
	// permission set; an update rewrites their cached permissions.
	OnRoleChanged(ctx context.Context, roleID string, action Action, newPermissions []string) error

	// OnUserRoleChanged rewrites one user's cached permissions from the
	// canonical set of newRoleID, read at the moment of the call.
	OnUserRoleChanged(ctx context.Context, userID string, newRoleID string) error
}

type ServiceImpl struct {
	Roles RoleStore
	Users UserStore
	Batch database.BatchWriter
	Log   *zap.Logger
}

func NewSyncService(roles RoleStore, users UserStore, batch database.BatchWriter, log *zap.Logger) Service {
	return &ServiceImpl{
		Roles: roles,
		Users: users,
		Batch: batch,
		Log:   log,
	}
}

func (s *ServiceImpl) OnPermissionChanged(ctx context.Context, key string, action Action, change *PermissionChange) ([]string, error) {
	switch action {
	case ActionDelete:
		return s.removePermissionFromRoles(ctx, key)
	case ActionCreate, ActionUpdate:
		if change == nil || len(change.AutoAssignToRoles) == 0 {
			return nil, nil
		}
		return s.assignPermissionToRoles(ctx, key, change.AutoAssignToRoles)
	}
	return nil, fmt.Errorf("unknown sync action %q", action)
}

// removePermissionFromRoles strips key out of every role that references it.
// Role documents are persisted one by one; the dependent user rewrites are
// staged into a single batch committed at the end, so within this call the
// user fan-out is all-or-nothing.
func (s *ServiceImpl) removePermissionFromRoles(ctx context.Context, key string) ([]string, error) {
	roles, err := s.Roles.List(ctx)
	if err != nil {
		return nil, err
	}

	var updatedNames []string
	var ops []database.Op
	for _, role := range roles {
		if !slices.Contains(role.Permissions, key) {
			continue
		}
		newPermissions := removeKey(role.Permissions, key)
		if err := s.Roles.SetPermissions(ctx, role.ID, newPermissions); err != nil {
			return nil, err
		}
		userOps, err := s.applyToUsersOfRole(ctx, role.ID, newPermissions)
		if err != nil {
			return nil, err
		}
		ops = append(ops, userOps...)
		updatedNames = append(updatedNames, role.Name)
	}

	if err := s.Batch.Commit(ctx, ops); err != nil {
		return nil, err
	}
	return updatedNames, nil
}

// assignPermissionToRoles appends key to each named role. A failure on one
// role is logged and does not abort the remaining roles: a bad role
// reference must not block the permission mutation that already succeeded.
func (s *ServiceImpl) assignPermissionToRoles(ctx context.Context, key string, roleIDs []string) ([]string, error) {
	var updatedNames []string
	var ops []database.Op
	for _, roleID := range roleIDs {
		role, err := s.Roles.FindByID(ctx, roleID)
		if err != nil {
			s.Log.Warn("auto-assign: role lookup failed",
				zap.String("role_id", roleID), zap.String("permission", key), zap.Error(err))
			continue
		}
		if role == nil {
			s.Log.Warn("auto-assign: role not found",
				zap.String("role_id", roleID), zap.String("permission", key))
			continue
		}
		if slices.Contains(role.Permissions, key) {
			continue
		}
		newPermissions := append(removeKey(role.Permissions, key), key)
		if err := s.Roles.SetPermissions(ctx, role.ID, newPermissions); err != nil {
			s.Log.Warn("auto-assign: role update failed",
				zap.String("role_id", roleID), zap.String("permission", key), zap.Error(err))
			continue
		}
		userOps, err := s.applyToUsersOfRole(ctx, role.ID, newPermissions)
		if err != nil {
			return nil, err
		}
		ops = append(ops, userOps...)
		updatedNames = append(updatedNames, role.Name)
	}

	if err := s.Batch.Commit(ctx, ops); err != nil {
		return nil, err
	}
	return updatedNames, nil
}

func (s *ServiceImpl) OnRoleChanged(ctx context.Context, roleID string, action Action, newPermissions []string) error {
	switch action {
	case ActionDelete:
		return s.reassignUsersOfRole(ctx, roleID)
	case ActionUpdate, ActionCreate:
		ops, err := s.applyToUsersOfRole(ctx, roleID, newPermissions)
		if err != nil {
			return err
		}
		return s.Batch.Commit(ctx, ops)
	}
	return fmt.Errorf("unknown sync action %q", action)
}

// reassignUsersOfRole moves every user of a deleted role onto the default
// role. The default role's permission set is read fresh here, not taken
// from any earlier snapshot: two deletions racing must not apply a set
// that itself just changed.
func (s *ServiceImpl) reassignUsersOfRole(ctx context.Context, roleID string) error {
	users, err := s.Users.FindByRole(ctx, roleID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	fallback, err := s.Roles.FindByID(ctx, DefaultRoleID)
	if err != nil {
		return err
	}
	if fallback == nil {
		return fmt.Errorf("default role %q missing, cannot reassign users of %q", DefaultRoleID, roleID)
	}

	now := time.Now()
	ops := make([]database.Op, 0, len(users))
	for _, u := range users {
		ops = append(ops, database.Op{
			Collection: usersCollection,
			ID:         u.ID,
			Set: bson.M{
				"role":        fallback.ID,
				"permissions": fallback.Permissions,
				"updated_at":  now,
			},
		})
	}
	return s.Batch.Commit(ctx, ops)
}

func (s *ServiceImpl) OnUserRoleChanged(ctx context.Context, userID string, newRoleID string) error {
	role, err := s.Roles.FindByID(ctx, newRoleID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("role %q not found", newRoleID)
	}

	// Single user affected, still committed through the batch writer
	return s.Batch.Commit(ctx, []database.Op{{
		Collection: usersCollection,
		ID:         userID,
		Set: bson.M{
			"role":        role.ID,
			"permissions": role.Permissions,
			"updated_at":  time.Now(),
		},
	}})
}

// applyToUsersOfRole stages a permissions rewrite for every user currently
// on roleID. The caller commits all staged ops in one batch, so a role's
// permission change is visible to either all its users or none.
func (s *ServiceImpl) applyToUsersOfRole(ctx context.Context, roleID string, permissions []string) ([]database.Op, error) {
	users, err := s.Users.FindByRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ops := make([]database.Op, 0, len(users))
	for _, u := range users {
		ops = append(ops, database.Op{
			Collection: usersCollection,
			ID:         u.ID,
			Set: bson.M{
				"permissions": permissions,
				"updated_at":  now,
			},
		})
	}
	return ops, nil
}
