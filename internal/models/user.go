package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User an account of the admin backend
type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:100"`
	Name         string     `json:"name" gorm:"size:100"`
	PasswordHash *string    `json:"-" gorm:"size:255"` // nil for externally provisioned accounts
	RoleID       *uint      `json:"role_id" gorm:"index"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (u *User) TableName() string {
	return "users"
}

// SetPassword stores a bcrypt hash of password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hash := string(hashedPassword)
	u.PasswordHash = &hash
	return nil
}

// CheckPassword false when no hash is set
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password))
	return err == nil
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// RoleName empty when no role is assigned
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}
