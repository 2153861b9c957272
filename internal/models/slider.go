package models

// Slider homepage banner
type Slider struct {
	BaseModel
	Title     string `gorm:"size:200;not null" json:"title"`
	Subtitle  string `gorm:"size:300" json:"subtitle"`
	ImageURL  string `gorm:"size:500;not null" json:"image_url"`
	LinkURL   string `gorm:"size:500" json:"link_url"`
	SortOrder int    `gorm:"default:0;index" json:"sort_order"`
	Active    bool   `gorm:"not null" json:"active"`
}

func (Slider) TableName() string {
	return "sliders"
}
