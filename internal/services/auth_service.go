package services

import (
	"context"
	"errors"

	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/logger"

	"github.com/sirupsen/logrus"
)

// AuthService verifies login credentials
type AuthService struct {
	store IdentityStore
}

func NewAuthService(store IdentityStore) *AuthService {
	return &AuthService{store: store}
}

// Verify checks email and password. Every failure, including store errors,
// is reported as ErrInvalidCredentials; the password is never logged.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*UserRecord, error) {
	log := logger.GetLogger().WithFields(logrus.Fields{"email": email})

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.WithError(err).Error("credential lookup failed")
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.HasPassword() {
		log.Debug("login rejected: account has no password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return NewUserRecord(user), nil
}
