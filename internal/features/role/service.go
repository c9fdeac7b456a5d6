package role

import (
	"context"
	"slices"
	"time"

	"go-opsdesk/internal/apperr"
	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/features/audit"
	syncer "go-opsdesk/internal/features/sync"
	"go-opsdesk/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserCounter reports how many users currently reference a role; satisfied
// by the user repository through an adapter in main.
type UserCounter interface {
	CountByRole(ctx context.Context, roleID string) (int64, error)
}

type RoleService interface {
	CreateRole(ctx context.Context, req CreateRoleRequest) (*common_models.Role, error)
	GetRole(ctx context.Context, id string) (*common_models.Role, error)
	ListRoles(ctx context.Context) ([]RoleWithUsage, error)

	// UpdateRolePermissions replaces a role's permission set and propagates
	// the new set to every user on the role. For system roles the stored set
	// is the union of the submitted keys and the role's minimum floor.
	UpdateRolePermissions(ctx context.Context, id string, keys []string) error

	// DeleteRole removes a custom role; its users are reassigned to the
	// default role first, so no user is ever left referencing a missing role.
	DeleteRole(ctx context.Context, id string) error
}

type RoleServiceImpl struct {
	RoleRepo     RoleRepository
	Users        UserCounter
	Sync         syncer.Service
	AuditService audit.AuditService
	validate     *validator.Validate
}

func NewRoleService(roleRepo RoleRepository, users UserCounter, syncService syncer.Service, auditService audit.AuditService) RoleService {
	return &RoleServiceImpl{
		RoleRepo:     roleRepo,
		Users:        users,
		Sync:         syncService,
		AuditService: auditService,
		validate:     validator.New(),
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, req CreateRoleRequest) (*common_models.Role, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation("invalid role: %v", err)
	}
	if err := s.ensureSystemRoles(ctx); err != nil {
		return nil, err
	}

	id := utils.Slugify(req.Name)
	if id == "" {
		return nil, apperr.Validation("role name %q does not produce a usable id", req.Name)
	}

	if existing, err := s.RoleRepo.FindByID(ctx, id); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("role %q already exists", id)
	}
	if existing, err := s.RoleRepo.FindByName(ctx, req.Name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("role named %q already exists", req.Name)
	}

	now := time.Now()
	role := &common_models.Role{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		IsSystem:    false,
		Level:       DefaultCustomLevel,
		Permissions: dedupe(req.Permissions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.RoleRepo.Insert(ctx, role); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "role", role.ID, map[string]common_models.Change{
		"name":        {New: role.Name},
		"permissions": {New: role.Permissions},
	})

	return role, nil
}

func (s *RoleServiceImpl) GetRole(ctx context.Context, id string) (*common_models.Role, error) {
	if err := s.ensureSystemRoles(ctx); err != nil {
		return nil, err
	}
	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFound("role %q not found", id)
	}
	return role, nil
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]RoleWithUsage, error) {
	if err := s.ensureSystemRoles(ctx); err != nil {
		return nil, err
	}

	roles, err := s.RoleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RoleWithUsage, 0, len(roles))
	for _, r := range roles {
		count, err := s.Users.CountByRole(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RoleWithUsage{Role: r, UserCount: count})
	}
	return out, nil
}

func (s *RoleServiceImpl) UpdateRolePermissions(ctx context.Context, id string, keys []string) error {
	if err := s.ensureSystemRoles(ctx); err != nil {
		return err
	}

	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role %q not found", id)
	}

	final := dedupe(keys)
	if role.IsSystem {
		final = union(MinimumFloor(role.ID), final)
	}

	if err := s.RoleRepo.SetPermissions(ctx, role.ID, final); err != nil {
		return err
	}

	if err := s.Sync.OnRoleChanged(ctx, role.ID, syncer.ActionUpdate, final); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "role", role.ID, map[string]common_models.Change{
		"permissions": {Old: role.Permissions, New: final},
	})

	return nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string) error {
	if err := s.ensureSystemRoles(ctx); err != nil {
		return err
	}

	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return apperr.NotFound("role %q not found", id)
	}
	if role.IsSystem {
		return apperr.Forbidden("system role %q cannot be deleted", id)
	}

	// Reassign the role's users before the document disappears.
	if err := s.Sync.OnRoleChanged(ctx, role.ID, syncer.ActionDelete, nil); err != nil {
		return err
	}

	if err := s.RoleRepo.Delete(ctx, role.ID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "role", role.ID, map[string]common_models.Change{
		"name": {Old: role.Name},
	})

	return nil
}

// ensureSystemRoles seeds the four built-in roles into an empty store.
func (s *RoleServiceImpl) ensureSystemRoles(ctx context.Context) error {
	count, err := s.RoleRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.RoleRepo.InsertMany(ctx, SystemRoleTemplates())
}

func dedupe(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

func union(floor, keys []string) []string {
	out := slices.Clone(floor)
	for _, k := range keys {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}
