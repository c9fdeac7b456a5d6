package sync

import (
	"context"
	"testing"

	common_models "go-opsdesk/internal/common/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(roles *fakeRoleStore, users *fakeUserStore) (*ServiceImpl, *fakeBatch) {
	batch := &fakeBatch{roles: roles, users: users}
	svc := &ServiceImpl{
		Roles: roles,
		Users: users,
		Batch: batch,
		Log:   testLogger(),
	}
	return svc, batch
}

func TestPermissionDeleteCascades(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view", "blog.read"}},
		&common_models.Role{ID: "user", Name: "User", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "moderator", Permissions: []string{"crm.view", "blog.read"}},
		&common_models.User{ID: "u2", Role: "user", Permissions: []string{"crm.view"}},
	)
	svc, batch := newTestService(roles, users)

	names, err := svc.OnPermissionChanged(context.Background(), "blog.read", ActionDelete, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Moderator"}, names)

	assert.Equal(t, []string{"crm.view"}, roles.roles["moderator"].Permissions)
	assert.Equal(t, []string{"crm.view"}, users.users["u1"].Permissions)
	// Users on untouched roles are not rewritten
	assert.Equal(t, []string{"crm.view"}, users.users["u2"].Permissions)

	require.Len(t, batch.allOps(), 1)
	assert.Equal(t, "u1", batch.allOps()[0].ID)
}

func TestPermissionDeleteNoReferences(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "user", Name: "User", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore()
	svc, batch := newTestService(roles, users)

	names, err := svc.OnPermissionChanged(context.Background(), "absent.key", ActionDelete, nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, batch.allOps())
	assert.Empty(t, roles.setCalls)
}

func TestPermissionCreateAutoAssign(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view"}},
		&common_models.Role{ID: "user", Name: "User", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "moderator", Permissions: []string{"crm.view"}},
	)
	svc, _ := newTestService(roles, users)

	names, err := svc.OnPermissionChanged(context.Background(), "blog.read", ActionCreate,
		&PermissionChange{AutoAssignToRoles: []string{"moderator"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Moderator"}, names)

	assert.Equal(t, []string{"crm.view", "blog.read"}, roles.roles["moderator"].Permissions)
	assert.Equal(t, []string{"crm.view", "blog.read"}, users.users["u1"].Permissions)
	assert.Equal(t, []string{"crm.view"}, roles.roles["user"].Permissions)
}

func TestPermissionCreateAutoAssignSkipsBadRoles(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore()
	svc, _ := newTestService(roles, users)

	// One target missing, one valid: the valid one still gets the key.
	names, err := svc.OnPermissionChanged(context.Background(), "blog.read", ActionCreate,
		&PermissionChange{AutoAssignToRoles: []string{"ghost", "moderator"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Moderator"}, names)
	assert.Contains(t, roles.roles["moderator"].Permissions, "blog.read")
}

func TestPermissionCreateAutoAssignIdempotentPerRole(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"blog.read"}},
	)
	users := newFakeUserStore()
	svc, batch := newTestService(roles, users)

	names, err := svc.OnPermissionChanged(context.Background(), "blog.read", ActionCreate,
		&PermissionChange{AutoAssignToRoles: []string{"moderator"}})
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, batch.allOps())
	assert.Equal(t, []string{"blog.read"}, roles.roles["moderator"].Permissions)
}

func TestRoleUpdateRewritesUsers(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view", "crm.reply"}},
	)
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "moderator", Permissions: []string{"crm.view"}},
		&common_models.User{ID: "u2", Role: "moderator", Permissions: []string{"crm.view"}},
		&common_models.User{ID: "u3", Role: "user", Permissions: []string{"crm.view"}},
	)
	svc, batch := newTestService(roles, users)

	err := svc.OnRoleChanged(context.Background(), "moderator", ActionUpdate, []string{"crm.view", "crm.reply"})
	require.NoError(t, err)

	assert.Equal(t, []string{"crm.view", "crm.reply"}, users.users["u1"].Permissions)
	assert.Equal(t, []string{"crm.view", "crm.reply"}, users.users["u2"].Permissions)
	assert.Equal(t, []string{"crm.view"}, users.users["u3"].Permissions)
	assert.Len(t, batch.allOps(), 2)
}

func TestRoleDeleteReassignsToDefault(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view", "crm.reply"}},
		&common_models.Role{ID: DefaultRoleID, Name: "User", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "moderator", Permissions: []string{"crm.view", "crm.reply"}},
	)
	svc, _ := newTestService(roles, users)

	err := svc.OnRoleChanged(context.Background(), "moderator", ActionDelete, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultRoleID, users.users["u1"].Role)
	assert.Equal(t, []string{"crm.view"}, users.users["u1"].Permissions)
}

func TestRoleDeleteFailsWithoutDefaultRole(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "moderator", Permissions: []string{"crm.view"}},
	)
	svc, batch := newTestService(roles, users)

	err := svc.OnRoleChanged(context.Background(), "moderator", ActionDelete, nil)
	require.Error(t, err)
	assert.Empty(t, batch.allOps())
}

func TestRoleDeleteNoUsersIsNoop(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "moderator", Name: "Moderator", Permissions: []string{"crm.view"}},
	)
	users := newFakeUserStore()
	svc, batch := newTestService(roles, users)

	// Default role missing, but nothing to reassign either.
	err := svc.OnRoleChanged(context.Background(), "moderator", ActionDelete, nil)
	require.NoError(t, err)
	assert.Empty(t, batch.allOps())
}

func TestUserRoleChangeReadsRoleFresh(t *testing.T) {
	roles := newFakeRoleStore(
		&common_models.Role{ID: "admin", Name: "Admin", Permissions: []string{"users.view", "roles.view"}},
	)
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "user", Permissions: []string{"crm.view"}},
	)
	svc, _ := newTestService(roles, users)

	err := svc.OnUserRoleChanged(context.Background(), "u1", "admin")
	require.NoError(t, err)

	assert.Equal(t, "admin", users.users["u1"].Role)
	assert.Equal(t, []string{"users.view", "roles.view"}, users.users["u1"].Permissions)
}

func TestUserRoleChangeUnknownRole(t *testing.T) {
	roles := newFakeRoleStore()
	users := newFakeUserStore(
		&common_models.User{ID: "u1", Role: "user", Permissions: nil},
	)
	svc, batch := newTestService(roles, users)

	err := svc.OnUserRoleChanged(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.Empty(t, batch.allOps())
}

func TestUnknownActionIsRejected(t *testing.T) {
	svc, _ := newTestService(newFakeRoleStore(), newFakeUserStore())

	_, err := svc.OnPermissionChanged(context.Background(), "x.y", Action("rename"), nil)
	assert.Error(t, err)

	err = svc.OnRoleChanged(context.Background(), "user", Action("rename"), nil)
	assert.Error(t, err)
}
