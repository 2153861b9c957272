package services

import (
	"context"
	"fmt"
	"sync"

	"irigasi/internal/models"
	apperrors "irigasi/pkg/errors"
)

// stubStore in-memory IdentityStore keyed by email
type stubStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	roles map[string]*models.Role
	err   error
	block bool
	calls int
}

func newStubStore() *stubStore {
	return &stubStore{users: map[string]*models.User{}, roles: map[string]*models.Role{}}
}

func roleWith(id uint, name string, perms ...string) *models.Role {
	r := &models.Role{Name: name}
	r.ID = id
	for i, p := range perms {
		perm := models.Permission{Name: p}
		perm.ID = uint(i + 1)
		r.Permissions = append(r.Permissions, perm)
	}
	return r
}

func (s *stubStore) addUser(id uint, email, password string, role *models.Role) *models.User {
	u := &models.User{Email: email, Role: role}
	u.ID = id
	if role != nil {
		u.RoleID = &role.ID
		s.roles[role.Name] = role
	}
	if password != "" {
		if err := u.SetPassword(password); err != nil {
			panic(err)
		}
	}
	s.users[email] = u
	return u
}

func (s *stubStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	s.calls++
	err, block := s.err, s.block
	u, ok := s.users[email]
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return u, nil
}

func (s *stubStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	var found *models.User
	for _, u := range s.users {
		if u.ID == id {
			found = u
		}
	}
	s.calls++
	s.mu.Unlock()

	if found == nil {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	return found, nil
}

func (s *stubStore) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	if r, ok := s.roles[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("role: %w", apperrors.ErrNotFound)
}

func (s *stubStore) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return nil, nil
}

func (s *stubStore) EnsurePermission(ctx context.Context, name, description, category string) (*models.Permission, error) {
	return &models.Permission{Name: name, Description: description, Category: category}, nil
}

func (s *stubStore) SetRolePermissions(ctx context.Context, roleID uint, names []string) error {
	for _, r := range s.roles {
		if r.ID == roleID {
			updated := roleWith(r.ID, r.Name, names...)
			r.Permissions = updated.Permissions
			return nil
		}
	}
	return fmt.Errorf("role: %w", apperrors.ErrNotFound)
}
