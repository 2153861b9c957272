package services

import (
	"fmt"
	"sync"

	"irigasi/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AuditCleanupScheduler prunes the login audit trail on a cron schedule
type AuditCleanupScheduler struct {
	audit         *AuditService
	cron          *cron.Cron
	spec          string
	retentionDays int
	mu            sync.Mutex
	running       bool
}

func NewAuditCleanupScheduler(audit *AuditService, spec string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		audit:         audit,
		cron:          cron.New(),
		spec:          spec,
		retentionDays: retentionDays,
	}
}

func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("audit cleanup scheduler already running")
	}
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.running = true
	logger.GetLogger().Infof("Audit cleanup scheduler started (%s, retention %d days)", s.spec, s.retentionDays)
	return nil
}

func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	logger.GetLogger().Info("Audit cleanup scheduler stopped")
}

// RunOnce one cleanup pass
func (s *AuditCleanupScheduler) RunOnce() {
	deleted, err := s.audit.Cleanup(s.retentionDays)
	if err != nil {
		logger.GetLogger().Errorf("Audit cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		logger.GetLogger().Infof("Audit cleanup removed %d rows", deleted)
	}
}
