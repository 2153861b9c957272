package models

// FarmerGroup water-user / farmer association served by the irrigation network
type FarmerGroup struct {
	BaseModel
	Name         string  `gorm:"size:150;not null" json:"name"`
	Leader       string  `gorm:"size:100" json:"leader"`
	Village      string  `gorm:"size:100;index" json:"village"`
	District     string  `gorm:"size:100;index" json:"district"`
	MemberCount  int     `gorm:"default:0" json:"member_count"`
	AreaHectares float64 `gorm:"default:0" json:"area_hectares"`
	Phone        string  `gorm:"size:30" json:"phone"`
}

func (FarmerGroup) TableName() string {
	return "farmer_groups"
}
