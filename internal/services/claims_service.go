package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"irigasi/internal/authz"
	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
	"irigasi/pkg/logger"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const defaultRefreshTimeout = 3 * time.Second

// ClaimsIssuer builds session claims at login and re-derives them for
// tokens that were issued without a permission list.
type ClaimsIssuer struct {
	store   IdentityStore
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*models.User]
}

func NewClaimsIssuer(store IdentityStore, timeout time.Duration) *ClaimsIssuer {
	if timeout <= 0 {
		timeout = defaultRefreshTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[*models.User](gobreaker.Settings{
		Name:        "identity-store",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a missing user is an answer, not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.GetLogger().WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})

	return &ClaimsIssuer{
		store:   store,
		timeout: timeout,
		breaker: breaker,
	}
}

// Issue builds the claims for a verified user. Permissions is never nil.
func (i *ClaimsIssuer) Issue(rec *UserRecord) authz.Claims {
	perms := make([]string, len(rec.Permissions))
	copy(perms, rec.Permissions)
	return authz.Claims{
		UserID:      rec.User.ID,
		Email:       rec.User.Email,
		Role:        rec.RoleName,
		Permissions: perms,
	}
}

// Refresh returns the claims unchanged when they carry a permission list.
// Otherwise the role and permissions are re-read by email; any failure to
// resolve them yields an empty permission list and no role.
func (i *ClaimsIssuer) Refresh(ctx context.Context, c authz.Claims) authz.Claims {
	if c.HasPermissions() {
		return c
	}

	log := logger.GetLogger().WithFields(logrus.Fields{
		"user_id": c.UserID,
		"email":   c.Email,
	})

	user, err := i.lookup(ctx, func(ctx context.Context) (*models.User, error) {
		return i.store.FindUserByEmail(ctx, c.Email)
	})
	if err != nil {
		authz.RecordClaimsRefresh(refreshOutcome(err))
		log.WithError(err).Warn(apperrors.ErrClaimsResolution.Error())
		return failClosed(c)
	}
	if c.UserID != 0 && user.ID != c.UserID {
		authz.RecordClaimsRefresh("not_found")
		log.WithField("store_user_id", user.ID).Warn(apperrors.ErrClaimsResolution.Error() + ": email now belongs to another account")
		return failClosed(c)
	}

	rec := NewUserRecord(user)
	if rec.RoleName == "" {
		authz.RecordClaimsRefresh("not_found")
		log.Warn(apperrors.ErrClaimsResolution.Error() + ": user has no role")
		return failClosed(c)
	}

	authz.RecordClaimsRefresh("resolved")
	log.WithField("role", rec.RoleName).Info("claims re-derived from identity store")
	return c.WithPermissions(rec.RoleName, rec.Permissions)
}

// Reissue reads the user by id and builds fresh claims, used to pick up
// role changes without a new login.
func (i *ClaimsIssuer) Reissue(ctx context.Context, c authz.Claims) (authz.Claims, error) {
	user, err := i.lookup(ctx, func(ctx context.Context) (*models.User, error) {
		return i.store.FindUserByID(ctx, c.UserID)
	})
	if err != nil {
		return authz.Claims{}, fmt.Errorf("%w: %w", apperrors.ErrClaimsResolution, err)
	}
	return i.Issue(NewUserRecord(user)), nil
}

func (i *ClaimsIssuer) lookup(ctx context.Context, fn func(context.Context) (*models.User, error)) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	return i.breaker.Execute(func() (*models.User, error) {
		return fn(ctx)
	})
}

// failClosed drops the role as well so neither gate style passes
func failClosed(c authz.Claims) authz.Claims {
	return c.WithPermissions("", []string{})
}

func refreshOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	default:
		return "error"
	}
}
