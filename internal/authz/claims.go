// Package authz holds the authorization decision engine: the permission
// catalog, the claims value carried by every request, gate rules and the
// static route table used by the route guard and the admin navigation.
//
// Everything here is a pure function of the presented claims and static
// tables. Nothing in the package touches the database or the session store.
package authz

import "strings"

// Distinguished role names.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleEditor     = "EDITOR"
)

// Claims is the authenticated caller as carried in the session token.
//
// A nil Permissions slice means the token did not carry the field at all
// (legacy token shape) and must be re-derived; an empty non-nil slice means
// the caller holds no permissions.
type Claims struct {
	UserID      uint     `json:"sub"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// HasPermissions reports whether the permission field was present in the token.
func (c Claims) HasPermissions() bool {
	return c.Permissions != nil
}

// WithPermissions returns a copy of c carrying perms. The input is not modified.
func (c Claims) WithPermissions(role string, perms []string) Claims {
	out := c
	out.Role = role
	out.Permissions = make([]string, len(perms))
	copy(out.Permissions, perms)
	return out
}

// Clone deep-copies the permission slice, preserving nil.
func (c Claims) Clone() Claims {
	out := c
	if c.Permissions != nil {
		out.Permissions = make([]string, len(c.Permissions))
		copy(out.Permissions, c.Permissions)
	}
	return out
}

// HasRole reports whether the role is one of roles (exact match).
func (c Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// hasKnownRole treats empty or blank roles as unknown.
func (c Claims) hasKnownRole() bool {
	return strings.TrimSpace(c.Role) != ""
}

// IsAdministrativeRole is the legacy role-identity gate: ADMIN or SUPER_ADMIN.
func IsAdministrativeRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// AdministrativeRoles lists the roles accepted by the legacy role gate.
func AdministrativeRoles() []string {
	return []string{RoleAdmin, RoleSuperAdmin}
}
