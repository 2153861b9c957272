package services

import (
	"fmt"

	"irigasi/pkg/pagination"

	"gorm.io/gorm"
)

// CRUDService plain persistence for resources without extra rules
type CRUDService[T any] struct {
	db    *gorm.DB
	order string
	what  string
}

func NewCRUDService[T any](db *gorm.DB, what, order string) *CRUDService[T] {
	return &CRUDService[T]{db: db, what: what, order: order}
}

// List one page, optionally narrowed by scopes
func (s *CRUDService[T]) List(page *pagination.PageParams, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var items []T
	var total int64

	query := s.db.Model(new(T)).Scopes(scopes...)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if s.order != "" {
		query = query.Order(s.order)
	}
	if err := query.Scopes(page.Scope()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *CRUDService[T]) GetByID(id uint) (*T, error) {
	item := new(T)
	if err := s.db.First(item, id).Error; err != nil {
		return nil, wrapNotFound(err, s.what)
	}
	return item, nil
}

func (s *CRUDService[T]) Create(item *T) error {
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("create %s: %w", s.what, err)
	}
	return nil
}

// Update loads the row, applies fn and saves it
func (s *CRUDService[T]) Update(id uint, fn func(item *T) error) (*T, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	if err := s.db.Save(item).Error; err != nil {
		return nil, fmt.Errorf("update %s: %w", s.what, err)
	}
	return item, nil
}

func (s *CRUDService[T]) Delete(id uint) error {
	result := s.db.Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return wrapNotFound(gorm.ErrRecordNotFound, s.what)
	}
	return nil
}
