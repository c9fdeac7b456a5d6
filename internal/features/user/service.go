package user

import (
	"context"
	"time"

	"go-opsdesk/internal/apperr"
	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/features/audit"
	syncer "go-opsdesk/internal/features/sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RoleDirectory resolves roles for user operations without importing the
// role feature directly.
type RoleDirectory interface {
	FindByID(ctx context.Context, id string) (*common_models.Role, error)
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type UserService interface {
	ListUsers(ctx context.Context) ([]common_models.User, error)
	GetUser(ctx context.Context, id string) (*common_models.User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*common_models.User, error)
	ChangeUserRole(ctx context.Context, userID string, newRoleID string, requesterRoleID string) error
}

type UserServiceImpl struct {
	Repo     UserRepository
	Roles    RoleDirectory
	Sync     syncer.Service
	Audit    audit.AuditService
	Log      *zap.Logger
	validate *validator.Validate
}

func NewUserService(repo UserRepository, roles RoleDirectory, sync syncer.Service, auditSvc audit.AuditService, log *zap.Logger) UserService {
	return &UserServiceImpl{
		Repo:     repo,
		Roles:    roles,
		Sync:     sync,
		Audit:    auditSvc,
		Log:      log,
		validate: validator.New(),
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]common_models.User, error) {
	return s.Repo.List(ctx)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*common_models.User, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user %s not found", id)
	}
	return user, nil
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, req *CreateUserRequest) (*common_models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperr.Validation("invalid user: %v", err)
	}

	existing, err := s.Repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("user with email %s already exists", req.Email)
	}

	roleID := req.Role
	if roleID == "" {
		roleID = syncer.DefaultRoleID
	}
	role, err := s.Roles.FindByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperr.NotFound("role %s not found", roleID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &common_models.User{
		ID:          primitive.NewObjectID().Hex(),
		Email:       req.Email,
		Name:        req.Name,
		Password:    string(hash),
		Status:      "active",
		Role:        role.ID,
		Permissions: append([]string(nil), role.Permissions...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionCreate, "user", user.ID, map[string]common_models.Change{
		"email": {New: user.Email},
		"role":  {New: user.Role},
	})
	return user, nil
}

// ChangeUserRole moves a user to a new role. The requester's role level must
// strictly exceed both the user's current role level and the new role level.
func (s *UserServiceImpl) ChangeUserRole(ctx context.Context, userID string, newRoleID string, requesterRoleID string) error {
	user, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.NotFound("user %s not found", userID)
	}

	newRole, err := s.Roles.FindByID(ctx, newRoleID)
	if err != nil {
		return err
	}
	if newRole == nil {
		return apperr.NotFound("role %s not found", newRoleID)
	}

	requesterRole, err := s.Roles.FindByID(ctx, requesterRoleID)
	if err != nil {
		return err
	}
	if requesterRole == nil {
		return apperr.Forbidden("requester role %s not found", requesterRoleID)
	}

	currentRole, err := s.Roles.FindByID(ctx, user.Role)
	if err != nil {
		return err
	}
	currentLevel := 0
	if currentRole != nil {
		currentLevel = currentRole.Level
	}

	if requesterRole.Level <= newRole.Level || requesterRole.Level <= currentLevel {
		return apperr.Forbidden("role %s cannot assign role %s", requesterRole.ID, newRole.ID)
	}

	if err := s.Repo.SetRole(ctx, userID, newRole.ID); err != nil {
		return err
	}
	if err := s.Sync.OnUserRoleChanged(ctx, userID, newRole.ID); err != nil {
		return err
	}

	_ = s.Audit.LogChange(ctx, common_models.AuditActionUpdate, "user", userID, map[string]common_models.Change{
		"role": {Old: user.Role, New: newRole.ID},
	})
	return nil
}
