package audit

import (
	"context"
	"time"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/pkg/utils"

	"github.com/google/uuid"
)

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter ListFilter, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo AuditRepository
	Now  func() time.Time
}

func NewAuditService(repo AuditRepository) AuditService {
	return &AuditServiceImpl{
		Repo: repo,
		Now:  time.Now,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	// Extract Actor from Context
	actorID, actorRole := "system", ""
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		actorID = claims.UserID
		actorRole = claims.Role
	}

	log := common_models.AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		ActorRole: actorRole,
		Changes:   changes,
		Timestamp: s.Now().UTC(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter ListFilter, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filter, limit, offset)
}
