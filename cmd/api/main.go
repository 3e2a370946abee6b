package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-crm-funnel/internal/common/api"
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/database"
	"go-crm-funnel/internal/features/audit"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/funnel"
	"go-crm-funnel/internal/features/saved_filter"
	"go-crm-funnel/internal/features/sla"
	"go-crm-funnel/internal/features/system"
	"go-crm-funnel/internal/features/ticket"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/logger"
	"go-crm-funnel/internal/middleware"
	"go-crm-funnel/pkg/utils"

	_ "go-crm-funnel/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	// Tag every request so service logs and the DB sink can correlate them
	app.Use(requestid.New())
	app.Use(middleware.RequestContext())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for i, route := range routes {
		log.Printf("Setting up route %d: %T\n", i+1, route)
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, funnelRepo funnel.FunnelRepository, ticketRepo ticket.TicketRepository, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				// Use a background context with timeout for index creation
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for _, repo := range []any{funnelRepo, ticketRepo} {
					idx, ok := repo.(indexer)
					if !ok {
						continue
					}
					if err := idx.EnsureIndexes(ctx); err != nil {
						logger.Error("Failed to ensure indexes", zap.String("repository", fmt.Sprintf("%T", repo)), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

// StartSLASweep runs the overdue ticket sweep for the lifetime of the app.
func StartSLASweep(lc fx.Lifecycle, sweeper *ticket.SLASweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sweeper.Start()
		},
		OnStop: func(ctx context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}

// @title           CRM Funnel API
// @version         1.0
// @description     Sales funnel, ticket SLA, list filtering and role visibility endpoints.

// @contact.name    API Support

// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Static tables
			funnel.NewEngineFromConfig,
			visibility.NewGateFromConfig,
			sla.DefaultPolicies,

			// Initialize Repository
			audit.NewAuditRepository,
			funnel.NewFunnelRepository,
			ticket.NewTicketRepository,
			saved_filter.NewSavedFilterRepository,

			// Initialize Service
			audit.NewAuditService,
			funnel.NewFunnelService,
			ticket.NewTicketService,
			ticket.NewSLASweeper,
			saved_filter.NewSavedFilterService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(g *visibility.Gate) middleware.SectionGate { return g },
			func(s audit.AuditService) funnel.AuditLogger { return s },
			func(s audit.AuditService) ticket.AuditLogger { return s },
			func(s saved_filter.SavedFilterService) filter.SavedLookup { return s },

			// Initialize Controller
			audit.NewAuditController,
			funnel.NewFunnelController,
			ticket.NewTicketController,
			saved_filter.NewSavedFilterController,
			visibility.NewNavigationController,
			system.NewDebugController,

			// Initialize API Routes
			AsRoute(audit.NewAuditApi),
			AsRoute(funnel.NewFunnelApi),
			AsRoute(ticket.NewTicketApi),
			AsRoute(saved_filter.NewSavedFilterApi),
			AsRoute(visibility.NewNavigationApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartSLASweep,
			InitializeIndexes,
		),
	)

	app.Run()
}
