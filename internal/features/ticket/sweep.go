package ticket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-crm-funnel/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SLASweeper periodically logs tickets that have breached their deadline.
type SLASweeper struct {
	service  TicketService
	logger   *zap.Logger
	schedule string

	mu        sync.Mutex
	scheduler *cron.Cron
}

func NewSLASweeper(service TicketService, cfg *config.Config, logger *zap.Logger) *SLASweeper {
	return &SLASweeper{
		service:  service,
		logger:   logger,
		schedule: cfg.SLASweepSchedule,
	}
}

// Sweep runs one pass and returns the number of overdue tickets found.
func (s *SLASweeper) Sweep(ctx context.Context) (int, error) {
	overdue, err := s.service.GetOverdueTickets(ctx)
	if err != nil {
		return 0, err
	}
	for _, v := range overdue {
		s.logger.Warn("Ticket SLA breached",
			zap.String("ticket_id", v.ID),
			zap.String("ticket_number", v.TicketNumber),
			zap.String("priority", string(v.Priority)),
			zap.Time("deadline", v.SLADeadline),
			zap.Int("overdue_days", v.SLA.Breakdown.Days),
			zap.Int("overdue_hours", v.SLA.Breakdown.Hours),
		)
	}
	return len(overdue), nil
}

// Start schedules the sweep. An empty schedule disables it.
func (s *SLASweeper) Start() error {
	if s.schedule == "" {
		s.logger.Info("SLA sweep disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scheduler := cron.New()
	_, err := scheduler.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		count, err := s.Sweep(ctx)
		if err != nil {
			s.logger.Error("SLA sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("SLA sweep finished", zap.Int("overdue", count))
	})
	if err != nil {
		return fmt.Errorf("invalid sla sweep schedule %q: %w", s.schedule, err)
	}

	s.scheduler = scheduler
	s.scheduler.Start()
	s.logger.Info("SLA sweep scheduled", zap.String("schedule", s.schedule))
	return nil
}

func (s *SLASweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
		s.scheduler = nil
	}
}
