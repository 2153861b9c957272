package models

import (
	"time"

	"gorm.io/datatypes"
)

// WaterLevel a reading at a gauge station
type WaterLevel struct {
	BaseModel
	Station    string    `gorm:"size:100;not null;index:idx_water_station_time" json:"station"`
	MeasuredAt time.Time `gorm:"not null;index:idx_water_station_time" json:"measured_at"`
	LevelCM    float64   `gorm:"not null" json:"level_cm"`
	Status     string    `gorm:"size:20;default:'normal'" json:"status"`
	Note       string    `gorm:"size:255" json:"note"`
	RecordedBy *uint     `json:"recorded_by"`
}

func (WaterLevel) TableName() string {
	return "water_levels"
}

const (
	WaterStatusNormal  = "normal"
	WaterStatusAlert   = "alert"
	WaterStatusWarning = "warning"
	WaterStatusDanger  = "danger"
)

// Rainfall a rain gauge reading
type Rainfall struct {
	BaseModel
	Station    string    `gorm:"size:100;not null;index:idx_rain_station_time" json:"station"`
	MeasuredAt time.Time `gorm:"not null;index:idx_rain_station_time" json:"measured_at"`
	AmountMM   float64   `gorm:"not null" json:"amount_mm"`
	Note       string    `gorm:"size:255" json:"note"`
	RecordedBy *uint     `json:"recorded_by"`
}

func (Rainfall) TableName() string {
	return "rainfall"
}

// CropData planting/harvest figures per region and season
type CropData struct {
	BaseModel
	Region        string         `gorm:"size:100;not null;index" json:"region"`
	Commodity     string         `gorm:"size:100;not null" json:"commodity"`
	Season        string         `gorm:"size:50" json:"season"`
	Year          int            `gorm:"index" json:"year"`
	PlantedArea   float64        `json:"planted_area"`
	HarvestedArea float64        `json:"harvested_area"`
	YieldTons     float64        `json:"yield_tons"`
	Attributes    datatypes.JSON `gorm:"type:jsonb" json:"attributes"`
	RecordedBy    *uint          `json:"recorded_by"`
}

func (CropData) TableName() string {
	return "crop_data"
}
