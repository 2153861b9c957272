package authz

// Permission names form a stable "<resource>:<action>" string contract.
// Case and punctuation are part of the interface.
const (
	PermDashboardView = "dashboard:view"

	PermUsersRead   = "users:read"
	PermUsersCreate = "users:create"
	PermUsersEdit   = "users:edit"
	PermUsersDelete = "users:delete"
	PermUsersRoles  = "users:roles"

	PermRolesRead   = "roles:read"
	PermRolesCreate = "roles:create"
	PermRolesEdit   = "roles:edit"
	PermRolesDelete = "roles:delete"

	PermPermissionsRead = "permissions:read"
	PermPermissionsEdit = "permissions:edit"

	PermNewsRead    = "news:read"
	PermNewsCreate  = "news:create"
	PermNewsEdit    = "news:edit"
	PermNewsDelete  = "news:delete"
	PermNewsPublish = "news:publish"

	PermGalleriesRead   = "galleries:read"
	PermGalleriesCreate = "galleries:create"
	PermGalleriesEdit   = "galleries:edit"
	PermGalleriesDelete = "galleries:delete"

	PermSlidersRead   = "sliders:read"
	PermSlidersCreate = "sliders:create"
	PermSlidersEdit   = "sliders:edit"
	PermSlidersDelete = "sliders:delete"

	PermContactRead   = "contact_submissions:read"
	PermContactEdit   = "contact_submissions:edit"
	PermContactDelete = "contact_submissions:delete"

	PermFarmerGroupsRead   = "farmer_groups:read"
	PermFarmerGroupsCreate = "farmer_groups:create"
	PermFarmerGroupsEdit   = "farmer_groups:edit"
	PermFarmerGroupsDelete = "farmer_groups:delete"

	PermWaterLevelsRead   = "water_levels:read"
	PermWaterLevelsManage = "water_levels:manage"

	PermRainfallRead   = "rainfall:read"
	PermRainfallManage = "rainfall:manage"

	PermCropDataRead   = "crop_data:read"
	PermCropDataManage = "crop_data:manage"
)

// Permission categories used to group the catalog.
const (
	CategoryDashboard    = "Dashboard"
	CategoryUsers        = "User Management"
	CategoryRoles        = "Role Management"
	CategoryContent      = "Content"
	CategoryContact      = "Contact"
	CategoryFarmerGroups = "Farmer Groups"
	CategoryMeasurements = "Measurements"
)

// CatalogEntry describes one permission of the catalog.
type CatalogEntry struct {
	Name        string
	Description string
	Category    string
}

var catalog = []CatalogEntry{
	{PermDashboardView, "Open the admin dashboard", CategoryDashboard},

	{PermUsersRead, "View users", CategoryUsers},
	{PermUsersCreate, "Create users", CategoryUsers},
	{PermUsersEdit, "Edit users and reset passwords", CategoryUsers},
	{PermUsersDelete, "Delete users", CategoryUsers},
	{PermUsersRoles, "Assign roles and revoke sessions", CategoryUsers},

	{PermRolesRead, "View roles", CategoryRoles},
	{PermRolesCreate, "Create roles", CategoryRoles},
	{PermRolesEdit, "Edit roles", CategoryRoles},
	{PermRolesDelete, "Delete roles", CategoryRoles},
	{PermPermissionsRead, "View the permission catalog", CategoryRoles},
	{PermPermissionsEdit, "Change role permissions", CategoryRoles},

	{PermNewsRead, "View news", CategoryContent},
	{PermNewsCreate, "Create news", CategoryContent},
	{PermNewsEdit, "Edit news", CategoryContent},
	{PermNewsDelete, "Delete news", CategoryContent},
	{PermNewsPublish, "Publish or unpublish news", CategoryContent},
	{PermGalleriesRead, "View galleries", CategoryContent},
	{PermGalleriesCreate, "Create galleries", CategoryContent},
	{PermGalleriesEdit, "Edit galleries", CategoryContent},
	{PermGalleriesDelete, "Delete galleries", CategoryContent},
	{PermSlidersRead, "View sliders", CategoryContent},
	{PermSlidersCreate, "Create sliders", CategoryContent},
	{PermSlidersEdit, "Edit sliders", CategoryContent},
	{PermSlidersDelete, "Delete sliders", CategoryContent},

	{PermContactRead, "View contact submissions", CategoryContact},
	{PermContactEdit, "Update contact submission status", CategoryContact},
	{PermContactDelete, "Delete contact submissions", CategoryContact},

	{PermFarmerGroupsRead, "View farmer groups", CategoryFarmerGroups},
	{PermFarmerGroupsCreate, "Create farmer groups", CategoryFarmerGroups},
	{PermFarmerGroupsEdit, "Edit farmer groups", CategoryFarmerGroups},
	{PermFarmerGroupsDelete, "Delete farmer groups", CategoryFarmerGroups},

	{PermWaterLevelsRead, "View water level readings", CategoryMeasurements},
	{PermWaterLevelsManage, "Record and correct water level readings", CategoryMeasurements},
	{PermRainfallRead, "View rainfall readings", CategoryMeasurements},
	{PermRainfallManage, "Record and correct rainfall readings", CategoryMeasurements},
	{PermCropDataRead, "View crop data", CategoryMeasurements},
	{PermCropDataManage, "Record and correct crop data", CategoryMeasurements},
}

// Catalog returns a copy of the full permission catalog in display order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// AllPermissionNames lists every catalog permission name.
func AllPermissionNames() []string {
	names := make([]string, 0, len(catalog))
	for _, e := range catalog {
		names = append(names, e.Name)
	}
	return names
}

// IsCatalogPermission reports whether name is part of the catalog.
func IsCatalogPermission(name string) bool {
	for _, e := range catalog {
		if e.Name == name {
			return true
		}
	}
	return false
}

// RoleSeed is the provisioning convention for one built-in role.
type RoleSeed struct {
	Name        string
	Description string
	IsDefault   bool
	Permissions []string
}

// DefaultRoles is the seed convention: SUPER_ADMIN holds the full catalog,
// ADMIN everything except user/role provisioning, EDITOR is the default role
// for new accounts and manages content only.
func DefaultRoles() []RoleSeed {
	adminExcluded := map[string]struct{}{
		PermUsersCreate:     {},
		PermUsersDelete:     {},
		PermUsersRoles:      {},
		PermRolesCreate:     {},
		PermRolesEdit:       {},
		PermRolesDelete:     {},
		PermPermissionsEdit: {},
	}
	admin := make([]string, 0, len(catalog))
	for _, name := range AllPermissionNames() {
		if _, skip := adminExcluded[name]; !skip {
			admin = append(admin, name)
		}
	}

	return []RoleSeed{
		{
			Name:        RoleSuperAdmin,
			Description: "Full access to every resource",
			Permissions: AllPermissionNames(),
		},
		{
			Name:        RoleAdmin,
			Description: "Manages content, measurements and contact submissions",
			Permissions: admin,
		},
		{
			Name:        RoleEditor,
			Description: "Writes website content",
			IsDefault:   true,
			Permissions: []string{
				PermDashboardView,
				PermNewsRead, PermNewsCreate, PermNewsEdit,
				PermGalleriesRead, PermGalleriesCreate, PermGalleriesEdit,
				PermSlidersRead, PermSlidersCreate, PermSlidersEdit,
				PermContactRead,
				PermFarmerGroupsRead,
				PermWaterLevelsRead, PermRainfallRead, PermCropDataRead,
			},
		},
	}
}
