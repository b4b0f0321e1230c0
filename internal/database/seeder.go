// internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"time"

	"facility-ops-api-server/config"
	"facility-ops-api-server/internal/auth"
	"facility-ops-api-server/internal/models"

	"go.uber.org/zap"
)

type userSeeder interface {
	CountByEmail(ctx context.Context, email string) (int64, error)
	Insert(ctx context.Context, u *models.User) error
}

// SeedSuperAdmin creates the bootstrap SUPER_ADMIN account when it does not exist yet.
func SeedSuperAdmin(ctx context.Context, users userSeeder, cfg config.SeedConfig, logger *zap.Logger) error {
	count, err := users.CountByEmail(ctx, cfg.SuperAdminEmail)
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Info("super admin already exists, seeding skipped", zap.String("email", cfg.SuperAdminEmail))
		return nil
	}

	if cfg.SuperAdminPassword == "" {
		return errors.New("seed.superAdminPassword (SUPERADMIN_PASSWORD) is required to seed the super admin")
	}

	logger.Info("super admin not found, seeding", zap.String("email", cfg.SuperAdminEmail))
	hashedPassword, err := auth.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	superAdmin := &models.User{
		FirstName:  "Super",
		LastName:   "Admin",
		Email:      cfg.SuperAdminEmail,
		Password:   hashedPassword,
		Role:       models.RoleSuperAdmin,
		Status:     models.UserStatusActive,
		IsVerified: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := users.Insert(ctx, superAdmin); err != nil {
		return err
	}

	logger.Info("super admin seeded", zap.String("id", superAdmin.ID.Hex()))
	return nil
}
