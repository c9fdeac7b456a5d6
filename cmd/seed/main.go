package main

import (
	"context"
	"os"
	"time"

	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/config"
	"go-opsdesk/internal/database"
	"go-opsdesk/internal/features/permission"
	"go-opsdesk/internal/features/role"
	"go-opsdesk/internal/features/user"
	"go-opsdesk/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seed fills an empty database with the built-in permission table, the
// system roles, and a bootstrap super-admin account.
func Seed(
	lc fx.Lifecycle,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	permissionRepo permission.PermissionRepository,
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

				logger.Info("Starting database seeding...")

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				// 1. Built-in permission catalog
				count, err := permissionRepo.Count(ctx)
				if err != nil {
					logger.Error("Failed to count permissions", zap.Error(err))
					return
				}
				if count == 0 {
					builtins := permission.Builtins()
					docs := make([]common_models.Permission, 0, len(builtins))
					now := time.Now()
					for _, key := range permission.BuiltinKeys() {
						p := builtins[key]
						p.CreatedAt = now
						p.UpdatedAt = now
						docs = append(docs, p)
					}
					if err := permissionRepo.InsertMany(ctx, docs); err != nil {
						logger.Error("Failed to seed permissions", zap.Error(err))
						return
					}
					logger.Info("Seeded built-in permissions", zap.Int("count", len(docs)))
				} else {
					logger.Info("Permissions exist, skipping")
				}

				// 2. System roles
				roleCount, err := roleRepo.Count(ctx)
				if err != nil {
					logger.Error("Failed to count roles", zap.Error(err))
					return
				}
				if roleCount == 0 {
					templates := role.SystemRoleTemplates()
					if err := roleRepo.InsertMany(ctx, templates); err != nil {
						logger.Error("Failed to seed roles", zap.Error(err))
						return
					}
					logger.Info("Seeded system roles", zap.Int("count", len(templates)))
				} else {
					logger.Info("Roles exist, skipping")
				}

				// 3. Bootstrap super-admin
				adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
				if adminEmail == "" {
					adminEmail = "admin@opsdesk.local"
				}
				adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
				if adminPassword == "" {
					adminPassword = "changeme123"
				}

				existing, err := userRepo.FindByEmail(ctx, adminEmail)
				if err != nil {
					logger.Error("Failed to look up admin user", zap.Error(err))
					return
				}
				if existing != nil {
					logger.Info("Admin user exists, skipping", zap.String("email", adminEmail))
					return
				}

				superAdmin, err := roleRepo.FindByID(ctx, role.RoleSuperAdmin)
				if err != nil || superAdmin == nil {
					logger.Error("Super admin role missing, cannot create bootstrap user", zap.Error(err))
					return
				}

				hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
				if err != nil {
					logger.Error("Failed to hash admin password", zap.Error(err))
					return
				}

				now := time.Now()
				admin := &common_models.User{
					ID:          primitive.NewObjectID().Hex(),
					Email:       adminEmail,
					Name:        "Bootstrap Admin",
					Password:    string(hash),
					Status:      "active",
					Role:        superAdmin.ID,
					Permissions: append([]string(nil), superAdmin.Permissions...),
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := userRepo.Insert(ctx, admin); err != nil {
					logger.Error("Failed to create admin user", zap.Error(err))
					return
				}
				logger.Info("Created bootstrap admin", zap.String("email", adminEmail))
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			role.NewRoleRepository,
			user.NewUserRepository,
			permission.NewPermissionRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
