package services

import (
	"context"

	"irigasi/internal/models"

	"gorm.io/gorm"
)

type PermissionService struct {
	db    *gorm.DB
	store IdentityStore
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{
		db:    db,
		store: NewGormIdentityStore(db),
	}
}

// PermissionGroup permissions of one category
type PermissionGroup struct {
	Category    string              `json:"category"`
	Permissions []models.Permission `json:"permissions"`
}

// List every permission, optionally of one category
func (s *PermissionService) List(ctx context.Context, category string) ([]models.Permission, error) {
	if category == "" {
		return s.store.ListPermissions(ctx)
	}
	var perms []models.Permission
	err := s.db.WithContext(ctx).Where("category = ?", category).Order("name").Find(&perms).Error
	return perms, err
}

// Grouped the catalog grouped by category, in first-seen order
func (s *PermissionService) Grouped(ctx context.Context) ([]PermissionGroup, error) {
	perms, err := s.store.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	return GroupPermissions(perms), nil
}

func (s *PermissionService) GetByID(id uint) (*models.Permission, error) {
	var perm models.Permission
	if err := s.db.First(&perm, id).Error; err != nil {
		return nil, wrapNotFound(err, "permission")
	}
	return &perm, nil
}

// GroupPermissions buckets permissions by category keeping input order
func GroupPermissions(perms []models.Permission) []PermissionGroup {
	index := map[string]int{}
	groups := []PermissionGroup{}
	for _, p := range perms {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, PermissionGroup{Category: p.Category})
		}
		groups[i].Permissions = append(groups[i].Permissions, p)
	}
	return groups
}
