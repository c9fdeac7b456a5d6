package main

import (
	"context"
	"fmt"
	common_api "go-opsdesk/internal/common/api"
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/database"
	"go-opsdesk/internal/features/audit"
	"go-opsdesk/internal/features/auth"
	"go-opsdesk/internal/features/permission"
	"go-opsdesk/internal/features/role"
	syncer "go-opsdesk/internal/features/sync"
	"go-opsdesk/internal/features/system"
	"go-opsdesk/internal/features/user"
	"go-opsdesk/internal/logger"
	"go-opsdesk/internal/middleware"
	"go-opsdesk/pkg/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
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

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
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

// ScheduleAudits runs the consistency auditor on the configured cron
// schedule. An empty schedule disables the job.
func ScheduleAudits(lc fx.Lifecycle, cfg *config.Config, auditor syncer.Auditor, zl *zap.Logger) {
	if cfg.AuditSchedule == "" {
		return
	}

	c := cron.New()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := c.AddFunc(cfg.AuditSchedule, func() {
				report, err := auditor.ValidateAndFixConsistency(context.Background())
				if err != nil {
					zl.Error("scheduled consistency audit failed", zap.Error(err))
					return
				}
				zl.Info("scheduled consistency audit finished",
					zap.Int("fixed_users", report.FixedUsers),
					zap.Int("fixed_roles", report.FixedRoles))
			})
			if err != nil {
				return fmt.Errorf("invalid audit schedule %q: %w", cfg.AuditSchedule, err)
			}
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			c.Stop()
			return nil
		},
	})
}

// catalogAdapter exposes the permission service as a flat key set for the
// consistency auditor.
type catalogAdapter struct {
	svc permission.PermissionService
}

func (a *catalogAdapter) Keys(ctx context.Context) (map[string]struct{}, error) {
	perms, err := a.svc.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(perms))
	for key := range perms {
		keys[key] = struct{}{}
	}
	return keys, nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,
			database.NewBatchWriter,

			// Repositories
			audit.NewAuditRepository,
			permission.NewPermissionRepository,
			role.NewRoleRepository,
			user.NewUserRepository,

			// Services
			audit.NewAuditService,
			syncer.NewSyncService,
			syncer.NewAuditor,
			permission.NewPermissionService,
			role.NewRoleService,
			user.NewUserService,
			auth.NewAuthService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r role.RoleRepository) syncer.RoleStore { return r },
			func(r user.UserRepository) syncer.UserStore { return r },
			func(r user.UserRepository) role.UserCounter { return r },
			func(r user.UserRepository) middleware.PermissionReader { return r },
			func(r role.RoleRepository) user.RoleDirectory { return r },
			func(s permission.PermissionService) syncer.Catalog { return &catalogAdapter{svc: s} },

			// Controllers
			audit.NewAuditController,
			syncer.NewSyncController,
			permission.NewPermissionController,
			role.NewRoleController,
			user.NewUserController,
			auth.NewAuthController,

			// API Routes
			AsRoute(audit.NewAuditApi),
			AsRoute(syncer.NewSyncApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(role.NewRoleApi),
			AsRoute(user.NewUserApi),
			AsRoute(auth.NewAuthApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			ScheduleAudits,
		),
	)

	app.Run()
}
