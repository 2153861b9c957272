package authz

import "net/http"

// NavEntry is one admin navigation link.
type NavEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Route string `json:"route"`
	Group string `json:"group"`
}

// DefaultNavigation lists the admin navigation in display order.
func DefaultNavigation() []NavEntry {
	return []NavEntry{
		{ID: "dashboard", Label: "Dashboard", Route: "/admin/dashboard", Group: CategoryDashboard},
		{ID: "news", Label: "News", Route: "/admin/news", Group: CategoryContent},
		{ID: "galleries", Label: "Galleries", Route: "/admin/galleries", Group: CategoryContent},
		{ID: "sliders", Label: "Sliders", Route: "/admin/sliders", Group: CategoryContent},
		{ID: "contact-submissions", Label: "Contact Submissions", Route: "/admin/contact-submissions", Group: CategoryContact},
		{ID: "farmer-groups", Label: "Farmer Groups", Route: "/admin/farmer-groups", Group: CategoryFarmerGroups},
		{ID: "water-levels", Label: "Water Levels", Route: "/admin/water-levels", Group: CategoryMeasurements},
		{ID: "rainfall", Label: "Rainfall", Route: "/admin/rainfall", Group: CategoryMeasurements},
		{ID: "crop-data", Label: "Crop Data", Route: "/admin/crop-data", Group: CategoryMeasurements},
		{ID: "users", Label: "Users", Route: "/admin/users", Group: CategoryUsers},
		{ID: "roles", Label: "Roles", Route: "/admin/roles", Group: CategoryRoles},
		{ID: "permissions", Label: "Permissions", Route: "/admin/permissions", Group: CategoryRoles},
	}
}

// NavigationVisibility returns the ids of navigation entries the claims may open.
// Each entry is checked with IsAllowedRoute, so a visible link never lands on a denial.
func (e *Engine) NavigationVisibility(c Claims) []string {
	ids := make([]string, 0, len(e.navigation))
	for _, n := range e.navigation {
		if e.IsAllowedRoute(c, n.Route, http.MethodGet) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// VisibleNavigation is NavigationVisibility returning full entries.
func (e *Engine) VisibleNavigation(c Claims) []NavEntry {
	out := make([]NavEntry, 0, len(e.navigation))
	for _, n := range e.navigation {
		if e.IsAllowedRoute(c, n.Route, http.MethodGet) {
			out = append(out, n)
		}
	}
	return out
}
