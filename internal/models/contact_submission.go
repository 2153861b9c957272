package models

// ContactSubmission message sent through the public contact form
type ContactSubmission struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:100;not null" json:"email"`
	Phone   string `gorm:"size:30" json:"phone"`
	Subject string `gorm:"size:200" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	Status  string `gorm:"size:20;default:'new';index" json:"status"`
	Note    string `gorm:"type:text" json:"note"` // internal follow-up note
}

func (ContactSubmission) TableName() string {
	return "contact_submissions"
}

const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)
