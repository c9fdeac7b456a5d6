package permission

import (
	"context"
	"strings"
	"time"

	"go-opsdesk/internal/apperr"
	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/features/audit"
	syncer "go-opsdesk/internal/features/sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type PermissionService interface {
	// CreatePermission defines a custom permission and, when
	// AutoAssignToRoles is set, appends it to each named role (best-effort
	// per role) with full propagation to those roles' users.
	CreatePermission(ctx context.Context, req CreatePermissionRequest) (*common_models.Permission, error)

	// DeletePermission removes a custom permission after stripping it out of
	// every role referencing it (and their users). Returns the names of the
	// roles that were modified.
	DeletePermission(ctx context.Context, key string) ([]string, error)

	// ListPermissions merges the built-in table with persisted custom
	// definitions; custom definitions win on key collision.
	ListPermissions(ctx context.Context) (map[string]common_models.Permission, error)
}

type PermissionServiceImpl struct {
	Repo         PermissionRepository
	Sync         syncer.Service
	AuditService audit.AuditService
	Log          *zap.Logger
	validate     *validator.Validate
}

func NewPermissionService(repo PermissionRepository, syncService syncer.Service, auditService audit.AuditService, log *zap.Logger) PermissionService {
	return &PermissionServiceImpl{
		Repo:         repo,
		Sync:         syncService,
		AuditService: auditService,
		Log:          log,
		validate:     validator.New(),
	}
}

func (s *PermissionServiceImpl) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*common_models.Permission, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation("invalid permission: %v", err)
	}
	if !ValidKey(req.Key) {
		return nil, apperr.Validation("permission key %q must have the form category.action", req.Key)
	}
	if !ValidCategory(req.Category) {
		return nil, apperr.Validation("unknown permission category %q", req.Category)
	}
	if prefix, _, _ := strings.Cut(req.Key, "."); prefix != req.Category {
		return nil, apperr.Validation("permission key %q does not belong to category %q", req.Key, req.Category)
	}

	if IsBuiltin(req.Key) {
		return nil, apperr.Conflict("permission %q is built-in", req.Key)
	}
	existing, err := s.Repo.FindByKey(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("permission %q already exists", req.Key)
	}

	now := time.Now()
	permission := &common_models.Permission{
		Key:               req.Key,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		IsCustom:          true,
		AutoAssignToRoles: req.AutoAssignToRoles,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.Repo.Insert(ctx, permission); err != nil {
		return nil, err
	}

	if len(req.AutoAssignToRoles) > 0 {
		assigned, err := s.Sync.OnPermissionChanged(ctx, permission.Key, syncer.ActionCreate, &syncer.PermissionChange{
			AutoAssignToRoles: req.AutoAssignToRoles,
		})
		if err != nil {
			// The permission itself is created; propagation failure is an
			// infrastructure error the consistency audit can repair.
			return nil, err
		}
		s.Log.Info("permission auto-assigned to roles",
			zap.String("permission", permission.Key), zap.Strings("roles", assigned))
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "permission", permission.Key, map[string]common_models.Change{
		"name":     {New: permission.Name},
		"category": {New: permission.Category},
	})

	return permission, nil
}

func (s *PermissionServiceImpl) DeletePermission(ctx context.Context, key string) ([]string, error) {
	if IsBuiltin(key) {
		return nil, apperr.Forbidden("permission %q is built-in and cannot be deleted", key)
	}

	existing, err := s.Repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("permission %q not found", key)
	}

	// Cascade first: no role may keep a dangling reference to the key.
	updatedRoles, err := s.Sync.OnPermissionChanged(ctx, key, syncer.ActionDelete, nil)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Delete(ctx, key); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "permission", key, map[string]common_models.Change{
		"updated_roles": {Old: updatedRoles},
	})

	return updatedRoles, nil
}

func (s *PermissionServiceImpl) ListPermissions(ctx context.Context) (map[string]common_models.Permission, error) {
	if err := s.seedIfEmpty(ctx); err != nil {
		return nil, err
	}

	merged := Builtins()

	stored, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range stored {
		merged[p.Key] = p
	}
	return merged, nil
}

// seedIfEmpty persists the built-in table on first use so an empty database
// self-heals into a working catalog.
func (s *PermissionServiceImpl) seedIfEmpty(ctx context.Context) error {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	seed := make([]common_models.Permission, 0, len(builtins))
	for _, key := range BuiltinKeys() {
		p := builtins[key]
		p.CreatedAt = now
		p.UpdatedAt = now
		seed = append(seed, p)
	}
	s.Log.Info("seeding built-in permissions", zap.Int("count", len(seed)))
	return s.Repo.InsertMany(ctx, seed)
}
