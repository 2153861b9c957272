package services

import (
	"context"
	"errors"
	"testing"

	"irigasi/internal/authz"
	apperrors "irigasi/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySuccess(t *testing.T) {
	store := newStubStore()
	store.addUser(3, "editor@example.com", "s3cret-pass", roleWith(2, authz.RoleEditor, authz.PermDashboardView, authz.PermNewsRead, authz.PermNewsRead))

	rec, err := NewAuthService(store).Verify(context.Background(), "editor@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, uint(3), rec.User.ID)
	assert.Equal(t, authz.RoleEditor, rec.RoleName)
	assert.Equal(t, []string{authz.PermDashboardView, authz.PermNewsRead}, rec.Permissions)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	store := newStubStore()
	store.addUser(1, "a@example.com", "right-password", roleWith(1, authz.RoleAdmin))
	store.addUser(2, "external@example.com", "", roleWith(1, authz.RoleAdmin))
	svc := NewAuthService(store)

	tests := []struct {
		name, email, password string
	}{
		{"unknown user", "nobody@example.com", "right-password"},
		{"wrong password", "a@example.com", "wrong-password"},
		{"no password hash", "external@example.com", "anything"},
		{"email is exact", "A@example.com", "right-password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := svc.Verify(context.Background(), tt.email, tt.password)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
			assert.Equal(t, "invalid email or password", err.Error())
		})
	}
}

func TestVerifyStoreErrorReportedAsInvalidCredentials(t *testing.T) {
	store := newStubStore()
	store.err = errors.New("connection refused")

	_, err := NewAuthService(store).Verify(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestVerifyUserWithoutRole(t *testing.T) {
	store := newStubStore()
	store.addUser(4, "norole@example.com", "password-1", nil)

	rec, err := NewAuthService(store).Verify(context.Background(), "norole@example.com", "password-1")
	require.NoError(t, err)
	assert.Empty(t, rec.RoleName)
	assert.NotNil(t, rec.Permissions)
	assert.Empty(t, rec.Permissions)
}
