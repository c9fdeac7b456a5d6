package role

import (
	"context"
	"testing"

	"go-opsdesk/internal/apperr"
	common_models "go-opsdesk/internal/common/models"
	syncer "go-opsdesk/internal/features/sync"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoleRepo struct {
	roles map[string]*common_models.Role
}

func newFakeRoleRepo(roles ...*common_models.Role) *fakeRoleRepo {
	r := &fakeRoleRepo{roles: make(map[string]*common_models.Role)}
	for _, role := range roles {
		r.roles[role.ID] = role
	}
	return r
}

func (r *fakeRoleRepo) Insert(ctx context.Context, role *common_models.Role) error {
	r.roles[role.ID] = role
	return nil
}

func (r *fakeRoleRepo) InsertMany(ctx context.Context, roles []common_models.Role) error {
	for i := range roles {
		role := roles[i]
		r.roles[role.ID] = &role
	}
	return nil
}

func (r *fakeRoleRepo) FindByID(ctx context.Context, id string) (*common_models.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, nil
	}
	copied := *role
	return &copied, nil
}

func (r *fakeRoleRepo) FindByName(ctx context.Context, name string) (*common_models.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			copied := *role
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRoleRepo) List(ctx context.Context) ([]common_models.Role, error) {
	out := make([]common_models.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *fakeRoleRepo) SetPermissions(ctx context.Context, id string, permissions []string) error {
	r.roles[id].Permissions = permissions
	return nil
}

func (r *fakeRoleRepo) Delete(ctx context.Context, id string) error {
	delete(r.roles, id)
	return nil
}

func (r *fakeRoleRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.roles)), nil
}

type fakeCounter struct {
	counts map[string]int64
}

func (c *fakeCounter) CountByRole(ctx context.Context, roleID string) (int64, error) {
	return c.counts[roleID], nil
}

type fakeSync struct {
	calls []string
	err   error
}

func (s *fakeSync) OnPermissionChanged(ctx context.Context, key string, action syncer.Action, change *syncer.PermissionChange) ([]string, error) {
	return nil, s.err
}

func (s *fakeSync) OnRoleChanged(ctx context.Context, roleID string, action syncer.Action, newPermissions []string) error {
	s.calls = append(s.calls, string(action)+":"+roleID)
	return s.err
}

func (s *fakeSync) OnUserRoleChanged(ctx context.Context, userID string, newRoleID string) error {
	return s.err
}

type fakeAudit struct{}

func (fakeAudit) LogChange(ctx context.Context, action common_models.AuditAction, entity string, entityID string, changes map[string]common_models.Change) error {
	return nil
}

func (fakeAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

func newTestService(repo *fakeRoleRepo, sync *fakeSync) *RoleServiceImpl {
	return &RoleServiceImpl{
		RoleRepo:     repo,
		Users:        &fakeCounter{counts: map[string]int64{}},
		Sync:         sync,
		AuditService: fakeAudit{},
		validate:     validator.New(),
	}
}

func seededRepo() *fakeRoleRepo {
	repo := newFakeRoleRepo()
	_ = repo.InsertMany(context.Background(), SystemRoleTemplates())
	return repo
}

func TestCreateRoleSlugsName(t *testing.T) {
	repo := seededRepo()
	svc := newTestService(repo, &fakeSync{})

	role, err := svc.CreateRole(context.Background(), CreateRoleRequest{
		Name:        "Support Agent",
		Permissions: []string{"crm.view", "crm.reply", "crm.view"},
	})
	require.NoError(t, err)
	assert.Equal(t, "support-agent", role.ID)
	assert.Equal(t, DefaultCustomLevel, role.Level)
	assert.False(t, role.IsSystem)
	assert.Equal(t, []string{"crm.view", "crm.reply"}, role.Permissions)
}

func TestCreateRoleConflicts(t *testing.T) {
	repo := seededRepo()
	svc := newTestService(repo, &fakeSync{})

	// Slug collides with the system role id.
	_, err := svc.CreateRole(context.Background(), CreateRoleRequest{Name: "Super Admin"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.CreateRole(context.Background(), CreateRoleRequest{Name: "Support Agent"})
	require.NoError(t, err)
	_, err = svc.CreateRole(context.Background(), CreateRoleRequest{Name: "Support Agent"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestCreateRoleValidation(t *testing.T) {
	svc := newTestService(seededRepo(), &fakeSync{})

	_, err := svc.CreateRole(context.Background(), CreateRoleRequest{Name: ""})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateRole(context.Background(), CreateRoleRequest{Name: "!!!"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSystemRolesSeededOnEmptyStore(t *testing.T) {
	repo := newFakeRoleRepo()
	svc := newTestService(repo, &fakeSync{})

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 4)
	assert.Contains(t, repo.roles, RoleSuperAdmin)
	assert.Contains(t, repo.roles, RoleUser)
}

func TestUpdatePermissionsEnforcesSystemFloor(t *testing.T) {
	repo := seededRepo()
	sync := &fakeSync{}
	svc := newTestService(repo, sync)

	// Submitting an empty set must leave the floor intact.
	err := svc.UpdateRolePermissions(context.Background(), RoleAdmin, nil)
	require.NoError(t, err)

	stored := repo.roles[RoleAdmin].Permissions
	for _, key := range MinimumFloor(RoleAdmin) {
		assert.Contains(t, stored, key)
	}
	assert.Equal(t, []string{"update:admin"}, sync.calls)
}

func TestUpdatePermissionsCustomRoleCanBeEmptied(t *testing.T) {
	repo := seededRepo()
	svc := newTestService(repo, &fakeSync{})

	role, err := svc.CreateRole(context.Background(), CreateRoleRequest{
		Name: "Support Agent", Permissions: []string{"crm.view"},
	})
	require.NoError(t, err)

	err = svc.UpdateRolePermissions(context.Background(), role.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, repo.roles[role.ID].Permissions)
}

func TestUpdatePermissionsUnknownRole(t *testing.T) {
	svc := newTestService(seededRepo(), &fakeSync{})

	err := svc.UpdateRolePermissions(context.Background(), "ghost", []string{"crm.view"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteRole(t *testing.T) {
	repo := seededRepo()
	sync := &fakeSync{}
	svc := newTestService(repo, sync)

	role, err := svc.CreateRole(context.Background(), CreateRoleRequest{Name: "Support Agent"})
	require.NoError(t, err)

	err = svc.DeleteRole(context.Background(), role.ID)
	require.NoError(t, err)
	assert.NotContains(t, repo.roles, role.ID)
	// Users were reassigned before the document was removed.
	assert.Equal(t, []string{"delete:support-agent"}, sync.calls)
}

func TestDeleteRoleGuards(t *testing.T) {
	svc := newTestService(seededRepo(), &fakeSync{})

	err := svc.DeleteRole(context.Background(), RoleAdmin)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = svc.DeleteRole(context.Background(), "ghost")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListRolesReportsUsage(t *testing.T) {
	repo := seededRepo()
	svc := newTestService(repo, &fakeSync{})
	svc.Users = &fakeCounter{counts: map[string]int64{RoleUser: 7}}

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)

	byID := make(map[string]RoleWithUsage)
	for _, r := range roles {
		byID[r.ID] = r
	}
	assert.Equal(t, int64(7), byID[RoleUser].UserCount)
	assert.Equal(t, int64(0), byID[RoleAdmin].UserCount)
}
