package models

import "time"

// LoginAudit one login attempt; never holds the password
type LoginAudit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:100;index" json:"email"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Success   bool      `gorm:"index" json:"success"`
	Reason    string    `gorm:"size:100" json:"reason"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (LoginAudit) TableName() string {
	return "login_audits"
}

// Login audit reasons
const (
	LoginReasonOK                 = "ok"
	LoginReasonInvalidCredentials = "invalid_credentials"
	LoginReasonValidation         = "validation"
)
