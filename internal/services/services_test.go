package services

import (
	"testing"

	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// unreachableDB a gorm handle whose every query fails to connect
func unreachableDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               gormlogger.Discard,
	})
	require.NoError(t, err)
	return db
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Banjir di Desa Sukamaju!": "banjir-di-desa-sukamaju",
		"  Rapat   P3A 2024  ":     "rapat-p3a-2024",
		"Debit air -- naik":        "debit-air-naik",
		"!!!":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestIsContactStatus(t *testing.T) {
	assert.True(t, IsContactStatus(models.ContactStatusReplied))
	assert.False(t, IsContactStatus("deleted"))
	assert.False(t, IsContactStatus(""))
}

func TestGroupPermissionsKeepsOrder(t *testing.T) {
	groups := GroupPermissions([]models.Permission{
		{Name: "news:read", Category: "Content"},
		{Name: "users:read", Category: "User Management"},
		{Name: "news:edit", Category: "Content"},
	})

	require.Len(t, groups, 2)
	assert.Equal(t, "Content", groups[0].Category)
	assert.Len(t, groups[0].Permissions, 2)
	assert.Equal(t, "User Management", groups[1].Category)
}

func TestAuditCleanupSchedulerLifecycle(t *testing.T) {
	bad := NewAuditCleanupScheduler(NewAuditService(nil), "not a cron", 30)
	assert.Error(t, bad.Start())

	s := NewAuditCleanupScheduler(NewAuditService(nil), "0 3 * * *", 30)
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())
	s.Stop()
	s.Stop()
}

func TestAuditCleanupDisabledRetention(t *testing.T) {
	n, err := NewAuditService(nil).Cleanup(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUniquenessCheckReportsStoreFailure(t *testing.T) {
	db := unreachableDB(t)

	_, err := NewUserService(db).Create("ed@irigasi.test", "Ed", "rahasia-123", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check email")
	assert.NotErrorIs(t, err, apperrors.ErrConflict)

	_, err = NewRoleService(db).Create("OPERATOR", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check role name")
	assert.NotErrorIs(t, err, apperrors.ErrConflict)
}
