package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"irigasi/internal/models"
	"irigasi/internal/services"
	apperrors "irigasi/pkg/errors"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type scopeList = []func(*gorm.DB) *gorm.DB

// ========== Galleries ==========

type GalleryRequest struct {
	Title       string                `json:"title" binding:"required,max=200"`
	Description string                `json:"description"`
	Images      []models.GalleryImage `json:"images" binding:"omitempty,max=200,dive"`
	Published   *bool                 `json:"published"`
}

func NewGalleryHandler(db *gorm.DB) *ResourceHandler[models.Gallery, GalleryRequest] {
	return &ResourceHandler[models.Gallery, GalleryRequest]{
		service: services.NewCRUDService[models.Gallery](db, "gallery", "created_at DESC"),
		what:    "gallery",
		apply: func(req *GalleryRequest, g *models.Gallery) error {
			images := req.Images
			if images == nil {
				images = []models.GalleryImage{}
			}
			raw, err := json.Marshal(images)
			if err != nil {
				return err
			}
			g.Title = req.Title
			g.Description = req.Description
			g.Images = datatypes.JSON(raw)
			if req.Published != nil {
				g.Published = *req.Published
			}
			return nil
		},
		filters: func(c *gin.Context) (scopeList, error) {
			scope, err := boolScope(c, "published", "published")
			if err != nil {
				return nil, err
			}
			return scopeList{scope}, nil
		},
	}
}

// ========== Sliders ==========

type SliderRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	Subtitle  string `json:"subtitle" binding:"max=300"`
	ImageURL  string `json:"image_url" binding:"required,url,max=500"`
	LinkURL   string `json:"link_url" binding:"omitempty,url,max=500"`
	SortOrder int    `json:"sort_order" binding:"gte=0"`
	Active    *bool  `json:"active"`
}

func NewSliderHandler(db *gorm.DB) *ResourceHandler[models.Slider, SliderRequest] {
	return &ResourceHandler[models.Slider, SliderRequest]{
		service: services.NewCRUDService[models.Slider](db, "slider", "sort_order, id"),
		what:    "slider",
		apply: func(req *SliderRequest, s *models.Slider) error {
			s.Title = req.Title
			s.Subtitle = req.Subtitle
			s.ImageURL = req.ImageURL
			s.LinkURL = req.LinkURL
			s.SortOrder = req.SortOrder
			if req.Active != nil {
				s.Active = *req.Active
			} else if s.ID == 0 {
				s.Active = true
			}
			return nil
		},
		filters: func(c *gin.Context) (scopeList, error) {
			scope, err := boolScope(c, "active", "active")
			if err != nil {
				return nil, err
			}
			return scopeList{scope}, nil
		},
	}
}

// ========== Farmer groups ==========

type FarmerGroupRequest struct {
	Name         string  `json:"name" binding:"required,max=150"`
	Leader       string  `json:"leader" binding:"max=100"`
	Village      string  `json:"village" binding:"max=100"`
	District     string  `json:"district" binding:"max=100"`
	MemberCount  int     `json:"member_count" binding:"gte=0"`
	AreaHectares float64 `json:"area_hectares" binding:"gte=0"`
	Phone        string  `json:"phone" binding:"max=30"`
}

func NewFarmerGroupHandler(db *gorm.DB) *ResourceHandler[models.FarmerGroup, FarmerGroupRequest] {
	return &ResourceHandler[models.FarmerGroup, FarmerGroupRequest]{
		service: services.NewCRUDService[models.FarmerGroup](db, "farmer group", "name"),
		what:    "farmer group",
		apply: func(req *FarmerGroupRequest, g *models.FarmerGroup) error {
			g.Name = req.Name
			g.Leader = req.Leader
			g.Village = req.Village
			g.District = req.District
			g.MemberCount = req.MemberCount
			g.AreaHectares = req.AreaHectares
			g.Phone = req.Phone
			return nil
		},
		filters: func(c *gin.Context) (scopeList, error) {
			return scopeList{
				services.EqualScope("district", c.Query("district")),
				services.EqualScope("village", c.Query("village")),
			}, nil
		},
	}
}

// ========== Measurements ==========

type WaterLevelRequest struct {
	Station    string    `json:"station" binding:"required,max=100"`
	MeasuredAt time.Time `json:"measured_at" binding:"required"`
	LevelCM    float64   `json:"level_cm" binding:"gte=0"`
	Status     string    `json:"status" binding:"omitempty,oneof=normal alert warning danger"`
	Note       string    `json:"note" binding:"max=255"`
}

func NewWaterLevelHandler(db *gorm.DB) *ResourceHandler[models.WaterLevel, WaterLevelRequest] {
	return &ResourceHandler[models.WaterLevel, WaterLevelRequest]{
		service: services.NewCRUDService[models.WaterLevel](db, "water level", "measured_at DESC"),
		what:    "water level",
		apply: func(req *WaterLevelRequest, w *models.WaterLevel) error {
			w.Station = req.Station
			w.MeasuredAt = req.MeasuredAt
			w.LevelCM = req.LevelCM
			w.Status = req.Status
			if w.Status == "" {
				w.Status = models.WaterStatusNormal
			}
			w.Note = req.Note
			return nil
		},
		filters: stationFilters,
		stamp: func(actorID uint, w *models.WaterLevel) {
			w.RecordedBy = &actorID
		},
	}
}

type RainfallRequest struct {
	Station    string    `json:"station" binding:"required,max=100"`
	MeasuredAt time.Time `json:"measured_at" binding:"required"`
	AmountMM   float64   `json:"amount_mm" binding:"gte=0"`
	Note       string    `json:"note" binding:"max=255"`
}

func NewRainfallHandler(db *gorm.DB) *ResourceHandler[models.Rainfall, RainfallRequest] {
	return &ResourceHandler[models.Rainfall, RainfallRequest]{
		service: services.NewCRUDService[models.Rainfall](db, "rainfall", "measured_at DESC"),
		what:    "rainfall",
		apply: func(req *RainfallRequest, r *models.Rainfall) error {
			r.Station = req.Station
			r.MeasuredAt = req.MeasuredAt
			r.AmountMM = req.AmountMM
			r.Note = req.Note
			return nil
		},
		filters: stationFilters,
		stamp: func(actorID uint, r *models.Rainfall) {
			r.RecordedBy = &actorID
		},
	}
}

type CropDataRequest struct {
	Region        string                 `json:"region" binding:"required,max=100"`
	Commodity     string                 `json:"commodity" binding:"required,max=100"`
	Season        string                 `json:"season" binding:"max=50"`
	Year          int                    `json:"year" binding:"required,gte=1900,lte=2200"`
	PlantedArea   float64                `json:"planted_area" binding:"gte=0"`
	HarvestedArea float64                `json:"harvested_area" binding:"gte=0"`
	YieldTons     float64                `json:"yield_tons" binding:"gte=0"`
	Attributes    map[string]interface{} `json:"attributes"`
}

func NewCropDataHandler(db *gorm.DB) *ResourceHandler[models.CropData, CropDataRequest] {
	return &ResourceHandler[models.CropData, CropDataRequest]{
		service: services.NewCRUDService[models.CropData](db, "crop data", "year DESC, region"),
		what:    "crop data",
		apply: func(req *CropDataRequest, d *models.CropData) error {
			if req.HarvestedArea > req.PlantedArea && req.PlantedArea > 0 {
				return fmt.Errorf("%w: harvested_area exceeds planted_area", apperrors.ErrValidation)
			}
			d.Region = req.Region
			d.Commodity = req.Commodity
			d.Season = req.Season
			d.Year = req.Year
			d.PlantedArea = req.PlantedArea
			d.HarvestedArea = req.HarvestedArea
			d.YieldTons = req.YieldTons
			if req.Attributes != nil {
				raw, err := json.Marshal(req.Attributes)
				if err != nil {
					return err
				}
				d.Attributes = datatypes.JSON(raw)
			}
			return nil
		},
		filters: func(c *gin.Context) (scopeList, error) {
			scopes := scopeList{
				services.EqualScope("region", c.Query("region")),
				services.EqualScope("commodity", c.Query("commodity")),
			}
			if raw := c.Query("year"); raw != "" {
				year, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: invalid year", apperrors.ErrValidation)
				}
				scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
					return db.Where("year = ?", year)
				})
			}
			return scopes, nil
		},
		stamp: func(actorID uint, d *models.CropData) {
			d.RecordedBy = &actorID
		},
	}
}

// stationFilters ?station=&from=&to=
func stationFilters(c *gin.Context) (scopeList, error) {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: to is before from", apperrors.ErrValidation)
	}
	return scopeList{
		services.EqualScope("station", c.Query("station")),
		services.BetweenScope("measured_at", from, to),
	}, nil
}

func boolScope(c *gin.Context, key, column string) (func(*gorm.DB) *gorm.DB, error) {
	raw := c.Query(key)
	if raw == "" {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", apperrors.ErrValidation, key)
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", v)
	}, nil
}
