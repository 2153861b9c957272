package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/pagination"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ========== CRUD ==========

// List users with their role, filtered by email/name search and role
func (s *UserService) List(search string, roleID uint, page *pagination.PageParams) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	if roleID != 0 {
		query = query.Where("role_id = ?", roleID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Role").Order("id").Scopes(page.Scope()).Find(&users).Error
	return users, total, err
}

func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Role").First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &user, nil
}

// Create adds an account; an empty roleName falls back to the default role
func (s *UserService) Create(email, name, password, roleName string) (*models.User, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
	}

	role, err := s.resolveRole(roleName)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Name: name}
	if role != nil {
		user.RoleID = &role.ID
	}
	if password != "" {
		if err := user.SetPassword(password); err != nil {
			return nil, err
		}
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (s *UserService) Update(id uint, email, name string) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if email != "" && email != user.Email {
		var count int64
		if err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
		}
		user.Email = email
	}
	if name != "" {
		user.Name = name
	}

	if err := s.db.Omit("Role").Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user; accounts cannot delete themselves
func (s *UserService) Delete(actorID, id uint) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot delete your own account", apperrors.ErrValidation)
	}
	result := s.db.Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return nil
}

// ========== Role and password ==========

// AssignRole sets the single role of a user. Only a super admin may hand out
// an administrative role.
func (s *UserService) AssignRole(actorRole string, id, roleID uint) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return nil, wrapNotFound(err, "role")
	}
	if authz.IsAdministrativeRole(role.Name) && actorRole != authz.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: role %s can only be assigned by a super admin", apperrors.ErrForbidden, role.Name)
	}

	if err := s.db.Model(user).Update("role_id", role.ID).Error; err != nil {
		return nil, err
	}
	user.RoleID = &role.ID
	user.Role = &role
	return user, nil
}

func (s *UserService) ResetPassword(id uint, password string) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", user.PasswordHash).Error
}

// TouchLastLogin records a successful login
func (s *UserService) TouchLastLogin(id uint) error {
	return s.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error
}

// UserIDsWithRole ids of every user holding the role
func (s *UserService) UserIDsWithRole(roleID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.User{}).Where("role_id = ?", roleID).Pluck("id", &ids).Error
	return ids, err
}

func (s *UserService) resolveRole(name string) (*models.Role, error) {
	var role models.Role
	query := s.db.Model(&models.Role{})
	if name != "" {
		query = query.Where("name = ?", name)
	} else {
		query = query.Where("is_default = ?", true)
	}

	err := query.First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if name == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("role %s: %w", name, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}
