package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/sla"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/logger"
	"go-crm-funnel/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditLogger records ticket changes. audit.AuditService satisfies it.
type AuditLogger interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
}

// TicketService defines the interface for ticket business logic
type TicketService interface {
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketView, error)
	GetTicket(ctx context.Context, id string) (*TicketView, error)
	ListTickets(ctx context.Context, criteria filter.Criteria) ([]TicketView, error)
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*TicketView, error)
	GetSLAStatus(ctx context.Context, id string) (*SLAStatus, error)
	// GetOverdueTickets lists unfinished tickets past their deadline.
	GetOverdueTickets(ctx context.Context) ([]TicketView, error)
}

// TicketServiceImpl implements TicketService
type TicketServiceImpl struct {
	TicketRepo TicketRepository
	Policies   sla.PolicyTable
	Audit      AuditLogger
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(ticketRepo TicketRepository, policies sla.PolicyTable, audit AuditLogger, zapLogger *zap.Logger) TicketService {
	return &TicketServiceImpl{
		TicketRepo: ticketRepo,
		Policies:   policies,
		Audit:      audit,
		Logger:     zapLogger,
		Now:        time.Now,
	}
}

func actorID(ctx context.Context) string {
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return "system"
}

// CreateTicket opens a ticket with a deadline from the priority's policy.
func (s *TicketServiceImpl) CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketView, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidTicket)
	}
	if req.Priority == "" {
		req.Priority = TicketPriorityMedium
	}

	now := s.Now().UTC()
	deadline, err := s.Policies.DeadlineFor(string(req.Priority), now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPriority, err)
	}

	number, err := s.TicketRepo.GetNextTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	t := Ticket{
		ID:            uuid.NewString(),
		TicketNumber:  number,
		Subject:       subject,
		Description:   req.Description,
		Priority:      req.Priority,
		SLADeadline:   deadline,
		Status:        TicketStatusNew,
		AssignedTo:    req.AssignedTo,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Category:      req.Category,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		StatusHistory: []StatusHistoryEntry{
			{
				Status:    TicketStatusNew,
				ChangedBy: actorID(ctx),
				ChangedAt: now,
				Comment:   "Ticket created",
			},
		},
	}

	if err := s.TicketRepo.Create(ctx, &t); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionCreate, t.ID, map[string]common_models.Change{
		"ticket_number": {Old: nil, New: t.TicketNumber},
		"priority":      {Old: nil, New: t.Priority},
		"status":        {Old: nil, New: t.Status},
	})

	return s.view(t, now)
}

func (s *TicketServiceImpl) view(t Ticket, now time.Time) (*TicketView, error) {
	status, err := ComputeSLA(t, now)
	if err != nil {
		return nil, err
	}
	return &TicketView{Ticket: t, SLA: status}, nil
}

// findVisible loads a ticket and hides it when the caller's record scope
// excludes it.
func (s *TicketServiceImpl) findVisible(ctx context.Context, id string) (*Ticket, error) {
	t, err := s.TicketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.ScopeFromContext(ctx)(*t) {
		return nil, common_models.ErrNotFound
	}
	return t, nil
}

// GetTicket retrieves a ticket by ID
func (s *TicketServiceImpl) GetTicket(ctx context.Context, id string) (*TicketView, error) {
	t, err := s.findVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(*t, s.Now())
}

// ListTickets returns matching tickets in creation order. A ticket with a
// broken deadline is logged and skipped rather than failing the page.
func (s *TicketServiceImpl) ListTickets(ctx context.Context, criteria filter.Criteria) ([]TicketView, error) {
	tickets, err := s.TicketRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	matched := filter.Apply(tickets, criteria, TicketSchema)
	views := make([]TicketView, 0, len(matched))
	for _, t := range matched {
		v, err := s.view(t, now)
		if err != nil {
			s.Logger.Error("Skipping ticket with invalid SLA window", zap.String("ticket_id", t.ID), zap.Error(err))
			continue
		}
		views = append(views, *v)
	}
	return views, nil
}

// UpdateStatus moves a ticket to another status. Finishing stamps the
// resolution or close time; reopening clears both.
func (s *TicketServiceImpl) UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*TicketView, error) {
	if !validStatuses[update.Status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, update.Status)
	}

	current, err := s.findVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion != current.Version {
		return nil, common_models.ErrVersionConflict
	}

	now := s.Now().UTC()
	if current.Status == update.Status {
		return s.view(*current, now)
	}

	next := *current
	next.Status = update.Status
	next.UpdatedAt = now
	next.StatusHistory = append(append([]StatusHistoryEntry{}, current.StatusHistory...), StatusHistoryEntry{
		Status:    update.Status,
		ChangedBy: actorID(ctx),
		ChangedAt: now,
		Comment:   update.Comment,
	})

	switch update.Status {
	case TicketStatusResolved:
		if next.ResolvedAt == nil {
			next.ResolvedAt = &now
		}
	case TicketStatusClosed:
		if next.ClosedAt == nil {
			next.ClosedAt = &now
		}
	default:
		next.ResolvedAt = nil
		next.ClosedAt = nil
	}

	if err := s.TicketRepo.Update(ctx, &next, current.Version); err != nil {
		return nil, err
	}

	s.audit(ctx, common_models.AuditActionStatusChange, id, map[string]common_models.Change{
		"status": {Old: current.Status, New: next.Status},
	})
	s.Logger.Info("Ticket status changed", append(logger.ContextFields(ctx),
		zap.String("ticket_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next.Status)),
	)...)

	return s.view(next, now)
}

func (s *TicketServiceImpl) GetSLAStatus(ctx context.Context, id string) (*SLAStatus, error) {
	v, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v.SLA, nil
}

func (s *TicketServiceImpl) GetOverdueTickets(ctx context.Context) ([]TicketView, error) {
	all, err := s.ListTickets(ctx, filter.Criteria{})
	if err != nil {
		return nil, err
	}
	overdue := make([]TicketView, 0)
	for _, v := range all {
		if v.SLA.Overdue && !v.Status.IsFinished() {
			overdue = append(overdue, v)
		}
	}
	return overdue, nil
}

func (s *TicketServiceImpl) audit(ctx context.Context, action common_models.AuditAction, id string, changes map[string]common_models.Change) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.LogChange(ctx, action, "tickets", id, changes); err != nil {
		s.Logger.Warn("Failed to write audit log", append(logger.ContextFields(ctx), zap.String("ticket_id", id), zap.Error(err))...)
	}
}
