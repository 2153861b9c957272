package authz

import (
	"fmt"
	"sort"
	"strings"
)

// IsAllowed reports whether every required permission is held by the claims.
// An empty requirement list only needs authentication and is always satisfied.
func IsAllowed(c Claims, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(c.Permissions) == 0 {
		return false
	}

	held := make(map[string]struct{}, len(c.Permissions))
	for _, p := range c.Permissions {
		held[p] = struct{}{}
	}
	for _, r := range required {
		if _, ok := held[r]; !ok {
			return false
		}
	}
	return true
}

// GateRule is either RoleIn or RequiresAll. The set of variants is closed.
type GateRule interface {
	fmt.Stringer
	gateRule()
}

// RoleIn passes when the caller's role is one of Roles.
type RoleIn struct {
	Roles []string
}

// RequiresAll passes when the caller holds every one of Permissions.
type RequiresAll struct {
	Permissions []string
}

func (RoleIn) gateRule()      {}
func (RequiresAll) gateRule() {}

func (r RoleIn) String() string {
	return "role_in(" + strings.Join(r.Roles, ",") + ")"
}

func (r RequiresAll) String() string {
	return "requires_all(" + strings.Join(r.Permissions, ",") + ")"
}

// Permission is shorthand for a RequiresAll rule.
func Permission(perms ...string) GateRule {
	return RequiresAll{Permissions: perms}
}

// Roles is shorthand for a RoleIn rule.
func Roles(roles ...string) GateRule {
	return RoleIn{Roles: roles}
}

// AdministrativeRoleGate is the legacy ADMIN / SUPER_ADMIN role-identity gate.
func AdministrativeRoleGate() GateRule {
	return RoleIn{Roles: AdministrativeRoles()}
}

// Evaluate interprets a gate rule against the claims. A nil rule denies.
func Evaluate(rule GateRule, c Claims) bool {
	switch r := rule.(type) {
	case RoleIn:
		if !c.hasKnownRole() {
			return false
		}
		return c.HasRole(r.Roles...)
	case RequiresAll:
		return IsAllowed(c, r.Permissions)
	default:
		return false
	}
}

// ========== Route decisions ==========

// Decision reasons.
const (
	ReasonNotAdministrative = "not_administrative"
	ReasonUnknownRole       = "unknown_role"
	ReasonCoarseGate        = "coarse_gate"
	ReasonRule              = "rule"
	ReasonAllowed           = "allowed"
)

// Decision is the outcome of a route check together with the rule that decided it.
type Decision struct {
	Allowed bool
	Reason  string
	Rule    *RouteRule
}

// Engine evaluates administrative route access against a static route table.
// It is safe for concurrent use; the table is never modified after construction.
type Engine struct {
	adminRoots [][]string
	coarse     []string
	rules      []compiledRule
	navigation []NavEntry
}

type compiledRule struct {
	rule     RouteRule
	segments []string
	literals int
}

// NewEngine compiles the route table. The most specific rule is tried first:
// longer patterns before shorter ones, then patterns with more literal segments.
func NewEngine(routes []RouteRule, navigation []NavEntry) *Engine {
	e := &Engine{
		adminRoots: [][]string{{"admin"}, {"api", "admin"}},
		coarse:     []string{PermDashboardView},
		navigation: append([]NavEntry(nil), navigation...),
	}

	for _, r := range routes {
		segs := splitPath(r.Pattern)
		lit := 0
		for _, s := range segs {
			if s != "*" {
				lit++
			}
		}
		r.Methods = normalizeMethods(r.Methods)
		e.rules = append(e.rules, compiledRule{rule: r, segments: segs, literals: lit})
	}

	sort.SliceStable(e.rules, func(i, j int) bool {
		a, b := e.rules[i], e.rules[j]
		if len(a.segments) != len(b.segments) {
			return len(a.segments) > len(b.segments)
		}
		return a.literals > b.literals
	})
	return e
}

// NewDefaultEngine builds the engine over the built-in route table and navigation.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRoutes(), DefaultNavigation())
}

// IsAdministrativePath reports whether the path is under an administrative tree.
func (e *Engine) IsAdministrativePath(path string) bool {
	segs := splitPath(path)
	for _, root := range e.adminRoots {
		if hasSegmentPrefix(segs, root) {
			return true
		}
	}
	return false
}

// IsAllowedRoute reports whether the claims may access path with method.
// Paths outside the administrative trees are always allowed.
func (e *Engine) IsAllowedRoute(c Claims, path, method string) bool {
	return e.Decide(c, path, method).Allowed
}

// Decide is IsAllowedRoute with the deciding reason attached.
func (e *Engine) Decide(c Claims, path, method string) Decision {
	if !e.IsAdministrativePath(path) {
		return Decision{Allowed: true, Reason: ReasonNotAdministrative}
	}
	if !c.hasKnownRole() {
		return Decision{Allowed: false, Reason: ReasonUnknownRole}
	}
	if !IsAllowed(c, e.coarse) {
		return Decision{Allowed: false, Reason: ReasonCoarseGate}
	}

	rule := e.match(path, method)
	if rule == nil {
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}
	if !Evaluate(rule.Gate, c) {
		return Decision{Allowed: false, Reason: ReasonRule, Rule: rule}
	}
	return Decision{Allowed: true, Reason: ReasonAllowed, Rule: rule}
}

// RuleFor returns the most specific rule covering path and method, if any.
func (e *Engine) RuleFor(path, method string) (RouteRule, bool) {
	r := e.match(path, method)
	if r == nil {
		return RouteRule{}, false
	}
	return *r, true
}

func (e *Engine) match(path, method string) *RouteRule {
	segs := splitPath(path)
	method = normalizeMethod(method)

	for i := range e.rules {
		cr := &e.rules[i]
		if !matchSegments(segs, cr.segments) {
			continue
		}
		if !cr.rule.appliesTo(method) {
			continue
		}
		return &cr.rule
	}
	return nil
}

// HasPathPrefix reports whether path starts with prefix on segment boundaries,
// so "/admin" covers "/admin/news" but not "/administrator".
func HasPathPrefix(path, prefix string) bool {
	return hasSegmentPrefix(splitPath(path), splitPath(prefix))
}

// ========== helpers ==========

func splitPath(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func hasSegmentPrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if segs[i] != p {
			return false
		}
	}
	return true
}

// matchSegments treats pattern as a segment prefix where "*" matches exactly one segment.
func matchSegments(segs, pattern []string) bool {
	if len(segs) < len(pattern) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && segs[i] != p {
			return false
		}
	}
	return true
}

func normalizeMethod(m string) string {
	m = strings.ToUpper(strings.TrimSpace(m))
	switch m {
	case "", "HEAD":
		return "GET"
	}
	return m
}

func normalizeMethods(ms []string) []string {
	if len(ms) == 0 {
		return nil
	}
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, normalizeMethod(m))
	}
	return out
}
