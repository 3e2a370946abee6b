package funnel

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditLogger records stage changes. audit.AuditService satisfies it.
type AuditLogger interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
}

type FunnelService interface {
	ListStages(ft FunnelType) ([]Stage, error)
	CreateRecord(ctx context.Context, ft FunnelType, req CreateRecordRequest) (*RecordView, error)
	GetRecord(ctx context.Context, ft FunnelType, id string) (*RecordView, error)
	ListRecords(ctx context.Context, ft FunnelType, criteria filter.Criteria) ([]RecordView, error)
	ChangeStage(ctx context.Context, ft FunnelType, id string, change StageChange) (*RecordView, error)
}

type FunnelServiceImpl struct {
	Engine *Engine
	Repo   FunnelRepository
	Audit  AuditLogger
	Logger *zap.Logger
	Now    func() time.Time
}

func NewFunnelService(engine *Engine, repo FunnelRepository, audit AuditLogger, zapLogger *zap.Logger) FunnelService {
	return &FunnelServiceImpl{
		Engine: engine,
		Repo:   repo,
		Audit:  audit,
		Logger: zapLogger,
		Now:    time.Now,
	}
}

func (s *FunnelServiceImpl) ListStages(ft FunnelType) ([]Stage, error) {
	return s.Engine.ListStages(ft)
}

func (s *FunnelServiceImpl) CreateRecord(ctx context.Context, ft FunnelType, req CreateRecordRequest) (*RecordView, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidRecord)
	}

	now := s.Now().UTC()
	rec, err := s.Engine.NewRecord(FunnelRecord{
		ID:                uuid.NewString(),
		FunnelType:        ft,
		Name:              name,
		Company:           strings.TrimSpace(req.Company),
		Email:             strings.TrimSpace(req.Email),
		OwnerID:           req.OwnerID,
		ExpectedCloseDate: req.ExpectedCloseDate,
		Amount:            req.Amount,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, &rec); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionCreate, rec, map[string]common_models.Change{
		"stage_id": {Old: nil, New: rec.StageID},
	})

	view := s.Engine.Describe(rec, now)
	return &view, nil
}

// findVisible loads a record and hides it when the caller's record scope
// excludes it.
func (s *FunnelServiceImpl) findVisible(ctx context.Context, ft FunnelType, id string) (*FunnelRecord, error) {
	rec, err := s.Repo.FindByID(ctx, ft, id)
	if err != nil {
		return nil, err
	}
	if !visibility.ScopeFromContext(ctx)(*rec) {
		return nil, common_models.ErrNotFound
	}
	return rec, nil
}

func (s *FunnelServiceImpl) GetRecord(ctx context.Context, ft FunnelType, id string) (*RecordView, error) {
	rec, err := s.findVisible(ctx, ft, id)
	if err != nil {
		return nil, err
	}
	view := s.Engine.Describe(*rec, s.Now())
	return &view, nil
}

func (s *FunnelServiceImpl) ListRecords(ctx context.Context, ft FunnelType, criteria filter.Criteria) ([]RecordView, error) {
	if _, err := s.Engine.ListStages(ft); err != nil {
		return nil, err
	}
	records, err := s.Repo.FindAll(ctx, ft)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	matched := filter.Apply(records, criteria, RecordSchema)
	views := make([]RecordView, 0, len(matched))
	for _, rec := range matched {
		views = append(views, s.Engine.Describe(rec, now))
	}
	return views, nil
}

// ChangeStage moves a record and persists it with an optimistic version
// check. Moving to the current stage with an unchanged probability is a
// no-op and writes nothing.
func (s *FunnelServiceImpl) ChangeStage(ctx context.Context, ft FunnelType, id string, change StageChange) (*RecordView, error) {
	current, err := s.findVisible(ctx, ft, id)
	if err != nil {
		return nil, err
	}
	if change.ExpectedVersion != nil && *change.ExpectedVersion != current.Version {
		return nil, common_models.ErrVersionConflict
	}

	regression := s.Engine.IsRegression(*current, change.StageID)

	var next FunnelRecord
	if change.Probability != nil {
		next, err = s.Engine.TransitionWithProbability(*current, change.StageID, *change.Probability)
	} else {
		next, err = s.Engine.Transition(*current, change.StageID)
	}
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	if next.StageID == current.StageID && next.Probability == current.Probability {
		view := s.Engine.Describe(*current, now)
		return &view, nil
	}

	next.UpdatedAt = now
	if err := s.Repo.Update(ctx, &next, current.Version); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if next.StageID != current.StageID {
		changes["stage_id"] = common_models.Change{Old: current.StageID, New: next.StageID}
	}
	if next.Probability != current.Probability {
		changes["probability"] = common_models.Change{Old: current.Probability, New: next.Probability}
	}
	if regression {
		changes["regression"] = common_models.Change{Old: false, New: true}
	}
	s.audit(ctx, common_models.AuditActionStageChange, next, changes)

	s.Logger.Info("Stage changed", append(logger.ContextFields(ctx),
		zap.String("funnel_type", string(ft)),
		zap.String("record_id", id),
		zap.String("from", current.StageID),
		zap.String("to", next.StageID),
		zap.Bool("regression", regression),
	)...)

	view := s.Engine.Describe(next, now)
	return &view, nil
}

// audit failures are logged and never fail the write that triggered them
func (s *FunnelServiceImpl) audit(ctx context.Context, action common_models.AuditAction, rec FunnelRecord, changes map[string]common_models.Change) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.LogChange(ctx, action, rec.FunnelType.Module(), rec.ID, changes); err != nil {
		s.Logger.Warn("Failed to write audit log", append(logger.ContextFields(ctx), zap.String("record_id", rec.ID), zap.Error(err))...)
	}
}
