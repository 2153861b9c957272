package models

// Permission a named capability, "<resource>:<action>"
type Permission struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Category    string `gorm:"size:50;not null;index" json:"category"`
}

func (Permission) TableName() string {
	return "permissions"
}
