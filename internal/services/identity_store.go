package services

import (
	"context"
	"errors"
	"fmt"

	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityStore read access to users, roles and permissions used by the
// authentication path, plus the administrative writes the seed needs.
type IdentityStore interface {
	// FindUserByEmail exact match, role and role permissions preloaded
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	EnsurePermission(ctx context.Context, name, description, category string) (*models.Permission, error)
	SetRolePermissions(ctx context.Context, roleID uint, names []string) error
}

// UserRecord a verified user with its role name and flattened permissions
type UserRecord struct {
	User        *models.User
	RoleName    string
	Permissions []string
}

// NewUserRecord flattens the preloaded role; never returns nil permissions
func NewUserRecord(u *models.User) *UserRecord {
	rec := &UserRecord{User: u, Permissions: []string{}}
	if u.Role != nil {
		rec.RoleName = u.Role.Name
		rec.Permissions = u.Role.PermissionNames()
	}
	return rec
}

// GormIdentityStore IdentityStore on postgres
type GormIdentityStore struct {
	db *gorm.DB
}

func NewGormIdentityStore(db *gorm.DB) *GormIdentityStore {
	return &GormIdentityStore{db: db}
}

func (s *GormIdentityStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Role.Permissions").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &user, nil
}

func (s *GormIdentityStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Role.Permissions").First(&user, id).Error
	if err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &user, nil
}

func (s *GormIdentityStore) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, wrapNotFound(err, "role")
	}
	return &role, nil
}

func (s *GormIdentityStore) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.WithContext(ctx).Order("category, name").Find(&perms).Error
	return perms, err
}

// EnsurePermission creates the permission or refreshes its description and category
func (s *GormIdentityStore) EnsurePermission(ctx context.Context, name, description, category string) (*models.Permission, error) {
	perm := models.Permission{Name: name, Description: description, Category: category}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "category", "updated_at"}),
	}).Create(&perm).Error
	if err != nil {
		return nil, err
	}
	if perm.ID == 0 {
		if err := s.db.WithContext(ctx).Where("name = ?", name).First(&perm).Error; err != nil {
			return nil, err
		}
	}
	return &perm, nil
}

// SetRolePermissions replaces the role's permission set in one transaction
func (s *GormIdentityStore) SetRolePermissions(ctx context.Context, roleID uint, names []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, roleID).Error; err != nil {
			return wrapNotFound(err, "role")
		}

		var perms []models.Permission
		if len(names) > 0 {
			if err := tx.Where("name IN ?", names).Find(&perms).Error; err != nil {
				return err
			}
		}
		if len(perms) != len(uniqueStrings(names)) {
			return fmt.Errorf("%w: unknown permission in %v", apperrors.ErrValidation, names)
		}

		return tx.Model(&role).Association("Permissions").Replace(perms)
	})
}

func wrapNotFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return err
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
