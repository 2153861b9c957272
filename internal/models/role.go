package models

import "time"

// Role a named bundle of permissions; every user holds at most one
type Role struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IsDefault   bool   `gorm:"default:false" json:"is_default"` // assigned to new accounts

	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionNames flattens the loaded permissions, dropping duplicates
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	seen := make(map[string]struct{}, len(r.Permissions))
	for _, p := range r.Permissions {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}

// RolePermission join row; (role_id, permission_id) is unique
type RolePermission struct {
	RoleID       uint      `gorm:"primaryKey;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint      `gorm:"primaryKey;uniqueIndex:idx_role_permission" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
