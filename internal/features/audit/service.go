package audit

import (
	"context"
	"time"

	common_models "go-opsdesk/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, entity string, entityID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, int64, error)
}

type AuditServiceImpl struct {
	Repo AuditRepository
}

func NewAuditService(repo AuditRepository) AuditService {
	return &AuditServiceImpl{
		Repo: repo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, entity string, entityID string, changes map[string]common_models.Change) error {
	// Extract Actor from Context
	actorID := "system"
	if id, ok := ctx.Value(common_models.UserIDKey).(string); ok && id != "" {
		actorID = id
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID().Hex(),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	return s.Repo.List(ctx, filters, limit, offset)
}
