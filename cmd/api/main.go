package main

import (
	"context"
	"fmt"
	"log"

	common_api "github.com/adevbeo/hr-management-platform/internal/common/api"
	"github.com/adevbeo/hr-management-platform/internal/config"
	"github.com/adevbeo/hr-management-platform/internal/database"
	"github.com/adevbeo/hr-management-platform/internal/features/audit"
	"github.com/adevbeo/hr-management-platform/internal/features/contract"
	"github.com/adevbeo/hr-management-platform/internal/features/insights"
	"github.com/adevbeo/hr-management-platform/internal/features/mail"
	"github.com/adevbeo/hr-management-platform/internal/features/report"
	"github.com/adevbeo/hr-management-platform/internal/features/scheduler"
	"github.com/adevbeo/hr-management-platform/internal/features/system"
	"github.com/adevbeo/hr-management-platform/internal/features/workforce"
	"github.com/adevbeo/hr-management-platform/internal/logger"
	"github.com/adevbeo/hr-management-platform/internal/middleware"
	"github.com/adevbeo/hr-management-platform/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
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

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute tags an Api constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("Setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("All routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// StartScheduler arms the active schedules once the server is up. A failed
// load is logged and left for the next boot; manual runs keep working.
func StartScheduler(lc fx.Lifecycle, schedulerService scheduler.SchedulerService, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := schedulerService.Start(ctx); err != nil {
				log.Error("Scheduler failed to start", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return schedulerService.Shutdown(ctx)
		},
	})
}

// @title           HR Platform API
// @version         1.0
// @description     Report templates, scheduled report delivery, contracts and AI insights.
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,

			database.NewDatabase,
			database.NewWorkforceSQL,

			logger.NewLogger,

			NewFiberServer,

			// Repositories
			audit.NewAuditRepository,
			workforce.NewReader,
			report.NewReportRepository,
			mail.NewEmailRepository,
			contract.NewContractRepository,
			scheduler.NewScheduleRepository,

			// Services
			audit.NewAuditService,
			report.NewReportService,
			mail.NewSMTPMailer,
			insights.NewGeminiClient,
			insights.NewInsightsService,
			contract.NewContractService,
			system.NewEventHub,
			scheduler.NewExecutor,
			scheduler.NewRegistry,
			scheduler.NewSchedulerService,

			// Interface adapters between features
			func(r scheduler.ScheduleRepository) scheduler.ActiveLoader { return r },
			func(e *scheduler.Executor) scheduler.Runner { return e },
			func(h *system.EventHub) scheduler.Publisher { return h },

			// Controllers
			audit.NewAuditController,
			report.NewReportController,
			insights.NewInsightsController,
			contract.NewContractController,
			scheduler.NewSchedulerController,
			system.NewHealthController,
			system.NewWebSocketController,

			// API Routes
			AsRoute(audit.NewAuditApi),
			AsRoute(report.NewReportApi),
			AsRoute(insights.NewInsightsApi),
			AsRoute(contract.NewContractApi),
			AsRoute(scheduler.NewSchedulerApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartScheduler,
		),
	)

	app.Run()
}
