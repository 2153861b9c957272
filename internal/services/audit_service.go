package services

import (
	"context"
	"time"

	"irigasi/internal/models"
	"irigasi/pkg/logger"
	"irigasi/pkg/pagination"

	"gorm.io/gorm"
)

// AuditService login audit trail
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// RecordLogin writes one audit row; failures are logged, never returned
func (s *AuditService) RecordLogin(ctx context.Context, entry models.LoginAudit) {
	if len(entry.UserAgent) > 255 {
		entry.UserAgent = entry.UserAgent[:255]
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.GetLogger().WithError(err).WithField("email", entry.Email).Warn("failed to record login audit")
	}
}

// List audit rows, newest first
func (s *AuditService) List(email string, success *bool, page *pagination.PageParams) ([]models.LoginAudit, int64, error) {
	var rows []models.LoginAudit
	var total int64

	query := s.db.Model(&models.LoginAudit{})
	if email != "" {
		query = query.Where("email = ?", email)
	}
	if success != nil {
		query = query.Where("success = ?", *success)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").Scopes(page.Scope()).Find(&rows).Error
	return rows, total, err
}

// Cleanup deletes rows older than the retention window
func (s *AuditService) Cleanup(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.LoginAudit{})
	return result.RowsAffected, result.Error
}
