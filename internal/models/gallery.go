package models

import "gorm.io/datatypes"

// Gallery an album; Images is a JSON array of {url, caption}
type Gallery struct {
	BaseModel
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Images      datatypes.JSON `gorm:"type:jsonb" json:"images"`
	Published   bool           `gorm:"default:false;index" json:"published"`
}

func (Gallery) TableName() string {
	return "galleries"
}

// GalleryImage element of Gallery.Images
type GalleryImage struct {
	URL     string `json:"url" binding:"required,url"`
	Caption string `json:"caption"`
}
