package services

import (
	"time"

	"gorm.io/gorm"
)

// EqualScope filters column = value, skipped when value is empty
func EqualScope(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

// BetweenScope filters column within [from, to]; nil bounds are open
func BetweenScope(column string, from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where(column+" >= ?", *from)
		}
		if to != nil {
			db = db.Where(column+" <= ?", *to)
		}
		return db
	}
}
