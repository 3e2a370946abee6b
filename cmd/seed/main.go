package main

import (
	"context"
	"time"

	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/database"
	"go-crm-funnel/internal/features/audit"
	"go-crm-funnel/internal/features/funnel"
	"go-crm-funnel/internal/features/sla"
	"go-crm-funnel/internal/features/ticket"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/logger"
	"go-crm-funnel/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type demoRecord struct {
	ft      funnel.FunnelType
	req     funnel.CreateRecordRequest
	stageID string
}

func demoRecords(now time.Time) []demoRecord {
	in := func(days int) *time.Time {
		t := now.AddDate(0, 0, days)
		return &t
	}
	return []demoRecord{
		{funnel.FunnelLead, funnel.CreateRecordRequest{Name: "Jane Cooper", Company: "Globex", Email: "jane@globex.test", OwnerID: "sales-1"}, funnel.StageNew},
		{funnel.FunnelLead, funnel.CreateRecordRequest{Name: "Wade Warren", Company: "Initech", Email: "wade@initech.test", OwnerID: "sales-2", ExpectedCloseDate: in(10)}, funnel.StageContacted},
		{funnel.FunnelLead, funnel.CreateRecordRequest{Name: "Esther Howard", Company: "Umbrella", Email: "esther@umbrella.test", OwnerID: "sales-1", ExpectedCloseDate: in(-3)}, funnel.StageQualified},
		{funnel.FunnelDeal, funnel.CreateRecordRequest{Name: "Acme renewal", Company: "Acme", OwnerID: "sales-1", Amount: 24000, ExpectedCloseDate: in(30)}, funnel.StageProposal},
		{funnel.FunnelDeal, funnel.CreateRecordRequest{Name: "Globex expansion", Company: "Globex", OwnerID: "sales-2", Amount: 56000, ExpectedCloseDate: in(-5)}, funnel.StageNegotiation},
		{funnel.FunnelDeal, funnel.CreateRecordRequest{Name: "Initech pilot", Company: "Initech", OwnerID: "sales-2", Amount: 8000}, funnel.StageWon},
		{funnel.FunnelDeal, funnel.CreateRecordRequest{Name: "Hooli migration", Company: "Hooli", OwnerID: "sales-1", Amount: 120000}, funnel.StageLost},
	}
}

func demoTickets() []ticket.CreateTicketRequest {
	return []ticket.CreateTicketRequest{
		{Subject: "Cannot export invoices", Priority: ticket.TicketPriorityHigh, CustomerName: "Acme", CustomerEmail: "ops@acme.test", AssignedTo: "support-1"},
		{Subject: "Password reset loop", Priority: ticket.TicketPriorityUrgent, CustomerName: "Globex", CustomerEmail: "it@globex.test", AssignedTo: "support-2"},
		{Subject: "Feature request: dark mode", Priority: ticket.TicketPriorityLow, CustomerName: "Initech"},
		{Subject: "Billing address update", Priority: ticket.TicketPriorityMedium, CustomerName: "Umbrella"},
	}
}

// Seed runs the database seeding
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	funnelService funnel.FunnelService,
	ticketService ticket.TicketService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				if !cfg.UsesMongo() {
					logger.Warn("Seeding the in-memory store; data is discarded on exit", zap.String("driver", cfg.StoreDriver))
				}

				ctx := utils.ContextWithClaims(context.Background(), &utils.UserClaims{UserID: "seed", Role: string(visibility.RoleAdmin)})
				now := time.Now()

				for _, d := range demoRecords(now) {
					view, err := funnelService.CreateRecord(ctx, d.ft, d.req)
					if err != nil {
						logger.Error("Failed to seed record", zap.String("name", d.req.Name), zap.Error(err))
						continue
					}
					if d.stageID != view.StageID {
						if _, err := funnelService.ChangeStage(ctx, d.ft, view.ID, funnel.StageChange{StageID: d.stageID}); err != nil {
							logger.Error("Failed to move seeded record", zap.String("name", d.req.Name), zap.Error(err))
						}
					}
				}

				for i, req := range demoTickets() {
					view, err := ticketService.CreateTicket(ctx, req)
					if err != nil {
						logger.Error("Failed to seed ticket", zap.String("subject", req.Subject), zap.Error(err))
						continue
					}
					// Resolve every other ticket so both clock states are present
					if i%2 == 1 {
						if _, err := ticketService.UpdateStatus(ctx, view.ID, ticket.StatusUpdate{Status: ticket.TicketStatusResolved, Comment: "seeded"}); err != nil {
							logger.Error("Failed to resolve seeded ticket", zap.String("ticket_id", view.ID), zap.Error(err))
						}
					}
				}

				// Development tokens for trying the API
				utils.SetSecret(cfg.JWTSecret)
				for _, role := range visibility.KnownRoles {
					token, err := utils.GenerateToken("demo-"+string(role), string(role), 24*time.Hour)
					if err != nil {
						logger.Error("Failed to sign demo token", zap.Error(err))
						continue
					}
					logger.Info("Demo token", zap.String("role", string(role)), zap.String("token", token))
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			funnel.NewEngineFromConfig,
			sla.DefaultPolicies,
			audit.NewAuditRepository,
			audit.NewAuditService,
			funnel.NewFunnelRepository,
			ticket.NewTicketRepository,
			func(s audit.AuditService) funnel.AuditLogger { return s },
			func(s audit.AuditService) ticket.AuditLogger { return s },
			funnel.NewFunnelService,
			ticket.NewTicketService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	).Run()
}
