package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	"irigasi/internal/services"
	"irigasi/pkg/config"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seedData provisions the permission catalog, the built-in roles and the
// first super admin. Safe to run on every start.
func seedData(ctx context.Context, db *gorm.DB, store services.IdentityStore, cfg *config.Config) error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	if err := seedPermissions(ctx, store); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}
	if err := seedRoles(ctx, db, store); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if err := seedSuperAdmin(db, cfg); err != nil {
		return fmt.Errorf("seed super admin: %w", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

func seedPermissions(ctx context.Context, store services.IdentityStore) error {
	for _, entry := range authz.Catalog() {
		if _, err := store.EnsurePermission(ctx, entry.Name, entry.Description, entry.Category); err != nil {
			return err
		}
	}
	logger.GetLogger().Infof("Permission catalog ensured (%d entries)", len(authz.Catalog()))
	return nil
}

// seedRoles creates missing built-in roles. Existing roles keep whatever
// permissions operators gave them, except SUPER_ADMIN which is always reset
// to the full catalog.
func seedRoles(ctx context.Context, db *gorm.DB, store services.IdentityStore) error {
	for _, seed := range authz.DefaultRoles() {
		role, err := store.FindRoleByName(ctx, seed.Name)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			role = &models.Role{Name: seed.Name, Description: seed.Description, IsDefault: seed.IsDefault}
			if err := db.Create(role).Error; err != nil {
				return err
			}
			if err := store.SetRolePermissions(ctx, role.ID, seed.Permissions); err != nil {
				return err
			}
			logger.GetLogger().Infof("Role %s created with %d permissions", seed.Name, len(seed.Permissions))
		case err != nil:
			return err
		case seed.Name == authz.RoleSuperAdmin:
			if err := store.SetRolePermissions(ctx, role.ID, seed.Permissions); err != nil {
				return err
			}
		default:
			logger.GetLogger().Infof("Role %s exists, skipping", seed.Name)
		}
	}
	return nil
}

func seedSuperAdmin(db *gorm.DB, cfg *config.Config) error {
	email := cfg.Auth.SeedAdminEmail
	if email == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("check super admin: %w", err)
	}
	if count > 0 {
		logger.GetLogger().Info("Super admin exists, skipping")
		return nil
	}

	password := cfg.Auth.SeedAdminPassword
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}

	if _, err := services.NewUserService(db).Create(email, "Super Administrator", password, authz.RoleSuperAdmin); err != nil {
		return err
	}

	if generated {
		reportGeneratedPassword(os.Stderr, email, password)
	} else {
		logger.GetLogger().Infof("Super admin %s created", email)
	}
	return nil
}

// reportGeneratedPassword shows a generated password on w only; the log
// carries the fact, never the secret
func reportGeneratedPassword(w io.Writer, email, password string) {
	logger.GetLogger().Warnf("Super admin %s created with a generated password (printed to stderr once), change it after the first login", email)
	fmt.Fprintf(w, "\n  super admin: %s\n  one-time password: %s\n\n", email, password)
}
