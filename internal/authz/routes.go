package authz

import "net/http"

// RouteRule gates one path pattern. Pattern segments match literally except
// "*", which matches a single segment; a pattern also covers every path below
// it. An empty Methods list applies to every verb.
type RouteRule struct {
	Pattern string
	Methods []string
	Gate    GateRule
}

func (r RouteRule) appliesTo(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if m == method {
			return true
		}
	}
	return false
}

var (
	readMethods   = []string{http.MethodGet}
	createMethods = []string{http.MethodPost}
	editMethods   = []string{http.MethodPut, http.MethodPatch}
	deleteMethods = []string{http.MethodDelete}
	writeMethods  = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
)

// crud maps the four verbs of a resource onto its read/create/edit/delete permissions.
func crud(pattern, read, create, edit, del string) []RouteRule {
	return []RouteRule{
		{Pattern: pattern, Methods: readMethods, Gate: Permission(read)},
		{Pattern: pattern, Methods: createMethods, Gate: Permission(create)},
		{Pattern: pattern, Methods: editMethods, Gate: Permission(edit)},
		{Pattern: pattern, Methods: deleteMethods, Gate: Permission(del)},
	}
}

func uiRoute(pattern, perm string) RouteRule {
	return RouteRule{Pattern: pattern, Methods: readMethods, Gate: Permission(perm)}
}

// DefaultRoutes is the built-in route table for the admin UI and admin API.
func DefaultRoutes() []RouteRule {
	routes := []RouteRule{
		// admin UI shell
		{Pattern: "/admin/dashboard", Gate: Permission()},
		uiRoute("/admin/news", PermNewsRead),
		uiRoute("/admin/galleries", PermGalleriesRead),
		uiRoute("/admin/sliders", PermSlidersRead),
		uiRoute("/admin/contact-submissions", PermContactRead),
		uiRoute("/admin/farmer-groups", PermFarmerGroupsRead),
		uiRoute("/admin/water-levels", PermWaterLevelsRead),
		uiRoute("/admin/rainfall", PermRainfallRead),
		uiRoute("/admin/crop-data", PermCropDataRead),
		uiRoute("/admin/users", PermUsersRead),
		uiRoute("/admin/roles", PermRolesRead),
		uiRoute("/admin/permissions", PermPermissionsRead),

		{Pattern: "/api/admin/navigation", Methods: readMethods, Gate: Permission()},

		{Pattern: "/api/admin/users/*/role", Methods: editMethods, Gate: Permission(PermUsersRoles)},
		{Pattern: "/api/admin/users/*/sessions", Gate: Permission(PermUsersRoles)},
		{Pattern: "/api/admin/users/*/password", Methods: editMethods, Gate: Permission(PermUsersEdit)},
		{Pattern: "/api/admin/roles/*/permissions", Methods: readMethods, Gate: Permission(PermPermissionsRead)},
		{Pattern: "/api/admin/roles/*/permissions", Methods: editMethods, Gate: Permission(PermPermissionsEdit)},
		{Pattern: "/api/admin/permissions", Methods: readMethods, Gate: Permission(PermPermissionsRead)},
		{Pattern: "/api/admin/login-audits", Gate: Roles(RoleSuperAdmin)},
		{Pattern: "/api/admin/news/*/publish", Methods: createMethods, Gate: Permission(PermNewsPublish)},
		{Pattern: "/api/admin/contact-submissions", Methods: readMethods, Gate: Permission(PermContactRead)},
		{Pattern: "/api/admin/contact-submissions", Methods: editMethods, Gate: Permission(PermContactEdit)},
		{Pattern: "/api/admin/contact-submissions", Methods: deleteMethods, Gate: Permission(PermContactDelete)},

		// measurement mutations keep the legacy role-identity gate
		{Pattern: "/api/admin/water-levels", Methods: readMethods, Gate: Permission(PermWaterLevelsRead)},
		{Pattern: "/api/admin/water-levels", Methods: writeMethods, Gate: AdministrativeRoleGate()},
		{Pattern: "/api/admin/rainfall", Methods: readMethods, Gate: Permission(PermRainfallRead)},
		{Pattern: "/api/admin/rainfall", Methods: writeMethods, Gate: AdministrativeRoleGate()},
		{Pattern: "/api/admin/crop-data", Methods: readMethods, Gate: Permission(PermCropDataRead)},
		{Pattern: "/api/admin/crop-data", Methods: writeMethods, Gate: Permission(PermCropDataManage)},
	}

	routes = append(routes, crud("/api/admin/users", PermUsersRead, PermUsersCreate, PermUsersEdit, PermUsersDelete)...)
	routes = append(routes, crud("/api/admin/roles", PermRolesRead, PermRolesCreate, PermRolesEdit, PermRolesDelete)...)
	routes = append(routes, crud("/api/admin/news", PermNewsRead, PermNewsCreate, PermNewsEdit, PermNewsDelete)...)
	routes = append(routes, crud("/api/admin/galleries", PermGalleriesRead, PermGalleriesCreate, PermGalleriesEdit, PermGalleriesDelete)...)
	routes = append(routes, crud("/api/admin/sliders", PermSlidersRead, PermSlidersCreate, PermSlidersEdit, PermSlidersDelete)...)
	routes = append(routes, crud("/api/admin/farmer-groups", PermFarmerGroupsRead, PermFarmerGroupsCreate, PermFarmerGroupsEdit, PermFarmerGroupsDelete)...)
	return routes
}
