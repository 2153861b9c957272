package services

import (
	"fmt"

	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/pagination"

	"gorm.io/gorm"
)

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

// Submit stores a public contact form message
func (s *ContactService) Submit(name, email, phone, subject, message string) (*models.ContactSubmission, error) {
	item := &models.ContactSubmission{
		Name:    name,
		Email:   email,
		Phone:   phone,
		Subject: subject,
		Message: message,
		Status:  models.ContactStatusNew,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ContactService) List(status string, page *pagination.PageParams) ([]models.ContactSubmission, int64, error) {
	var items []models.ContactSubmission
	var total int64

	query := s.db.Model(&models.ContactSubmission{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(page.Scope()).Find(&items).Error
	return items, total, err
}

func (s *ContactService) GetByID(id uint) (*models.ContactSubmission, error) {
	var item models.ContactSubmission
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, wrapNotFound(err, "contact submission")
	}
	return &item, nil
}

// UpdateStatus moves a submission through new/read/replied/archived
func (s *ContactService) UpdateStatus(id uint, status, note string) (*models.ContactSubmission, error) {
	if !IsContactStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	item.Status = status
	if note != "" {
		item.Note = note
	}
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ContactService) Delete(id uint) error {
	result := s.db.Delete(&models.ContactSubmission{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("contact submission: %w", apperrors.ErrNotFound)
	}
	return nil
}

func IsContactStatus(status string) bool {
	switch status {
	case models.ContactStatusNew, models.ContactStatusRead, models.ContactStatusReplied, models.ContactStatusArchived:
		return true
	}
	return false
}
