package services

import (
	"context"
	"fmt"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/pagination"

	"gorm.io/gorm"
)

type RoleService struct {
	db    *gorm.DB
	store IdentityStore
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{
		db:    db,
		store: NewGormIdentityStore(db),
	}
}

// ========== CRUD ==========

func (s *RoleService) List(page *pagination.PageParams) ([]models.Role, int64, error) {
	var roles []models.Role
	var total int64

	if err := s.db.Model(&models.Role{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Preload("Permissions").Order("id").Scopes(page.Scope()).Find(&roles).Error
	return roles, total, err
}

func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, wrapNotFound(err, "role")
	}
	return &role, nil
}

func (s *RoleService) Create(name, description string, isDefault bool) (*models.Role, error) {
	var count int64
	if err := s.db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check role name: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("role %s: %w", name, apperrors.ErrConflict)
	}

	role := &models.Role{Name: name, Description: description, IsDefault: isDefault}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if isDefault {
			if err := clearDefault(tx); err != nil {
				return err
			}
		}
		return tx.Create(role).Error
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Update changes description and default flag; built-in role names are fixed
func (s *RoleService) Update(id uint, name, description string, isDefault bool) (*models.Role, error) {
	role, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if name != "" && name != role.Name {
		if isBuiltinRole(role.Name) {
			return nil, fmt.Errorf("%w: built-in role %s cannot be renamed", apperrors.ErrValidation, role.Name)
		}
		var count int64
		if err := s.db.Model(&models.Role{}).Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check role name: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("role %s: %w", name, apperrors.ErrConflict)
		}
		role.Name = name
	}
	role.Description = description

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if isDefault && !role.IsDefault {
			if err := clearDefault(tx); err != nil {
				return err
			}
		}
		role.IsDefault = isDefault
		return tx.Omit("Permissions").Save(role).Error
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Delete refuses built-in roles and roles still assigned to users
func (s *RoleService) Delete(id uint) error {
	role, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if isBuiltinRole(role.Name) {
		return fmt.Errorf("%w: built-in role %s cannot be deleted", apperrors.ErrValidation, role.Name)
	}

	var users int64
	if err := s.db.Model(&models.User{}).Where("role_id = ?", id).Count(&users).Error; err != nil {
		return fmt.Errorf("count role holders: %w", err)
	}
	if users > 0 {
		return fmt.Errorf("role %s has %d users: %w", role.Name, users, apperrors.ErrConflict)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
}

// ========== Permissions ==========

func (s *RoleService) GetPermissions(id uint) ([]models.Permission, error) {
	role, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

// SetPermissions replaces the role's permissions. SUPER_ADMIN always keeps
// the full catalog.
func (s *RoleService) SetPermissions(ctx context.Context, id uint, names []string) (*models.Role, error) {
	role, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role.Name == authz.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: %s permissions are fixed", apperrors.ErrValidation, authz.RoleSuperAdmin)
	}
	for _, n := range names {
		if !authz.IsCatalogPermission(n) {
			return nil, fmt.Errorf("%w: unknown permission %q", apperrors.ErrValidation, n)
		}
	}

	if err := s.store.SetRolePermissions(ctx, id, uniqueStrings(names)); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func clearDefault(tx *gorm.DB) error {
	return tx.Model(&models.Role{}).Where("is_default = ?", true).Update("is_default", false).Error
}

func isBuiltinRole(name string) bool {
	switch name {
	case authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleEditor:
		return true
	}
	return false
}
