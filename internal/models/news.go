package models

import "time"

// News article shown on the public site once published
type News struct {
	BaseModel
	Title       string     `gorm:"size:200;not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Summary     string     `gorm:"size:500" json:"summary"`
	Content     string     `gorm:"type:text" json:"content"`
	CoverImage  string     `gorm:"size:500" json:"cover_image"`
	Status      string     `gorm:"size:20;default:'draft';index" json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    *uint      `gorm:"index" json:"author_id"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (News) TableName() string {
	return "news"
}

const (
	NewsStatusDraft     = "draft"
	NewsStatusPublished = "published"
)
