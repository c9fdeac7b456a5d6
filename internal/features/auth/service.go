package auth

import (
	"context"
	"time"

	"go-opsdesk/internal/apperr"
	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/features/audit"
	"go-opsdesk/internal/features/user"
	"go-opsdesk/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  *common_models.User `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
}

type AuthServiceImpl struct {
	Users user.UserRepository
	Audit audit.AuditService
	Log   *zap.Logger
}

func NewAuthService(users user.UserRepository, auditSvc audit.AuditService, log *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Users: users,
		Audit: auditSvc,
		Log:   log,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	u, err := s.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Forbidden("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Forbidden("invalid credentials")
	}

	token, err := utils.GenerateToken(u.ID, u.Role)
	if err != nil {
		return nil, err
	}

	if err := s.Users.SetLastLogin(ctx, u.ID, time.Now()); err != nil {
		s.Log.Warn("failed to record last login", zap.String("user", u.ID), zap.Error(err))
	}
	_ = s.Audit.LogChange(ctx, common_models.AuditActionLogin, "user", u.ID, nil)

	return &LoginResponse{Token: token, User: u}, nil
}
