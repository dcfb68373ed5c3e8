package rbac

// Role constants
const (
	RoleStaff     = "staff"
	RoleOrganizer = "organizer"
	RoleMember    = "member"
)

// Permission constants
const (
	PermManagePages     = "manage_pages"
	PermManagePetitions = "manage_petitions"
	PermManageElections = "manage_elections"
	PermManageFacets    = "manage_facets"
	PermManageDonations = "manage_donations"
	PermViewAllProfiles = "view_all_profiles"
	PermViewReports     = "view_reports"
	PermViewCustomFacet = "view_custom_facet"
	PermViewRCODetail   = "view_rco_detail"
	PermEditOwnProfile  = "edit_own_profile"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleStaff: {
		PermManagePages, PermManagePetitions, PermManageElections, PermManageFacets,
		PermManageDonations, PermViewAllProfiles, PermViewReports, PermViewCustomFacet,
		PermViewRCODetail, PermEditOwnProfile,
	},
	RoleOrganizer: {
		PermViewCustomFacet, PermViewRCODetail, PermEditOwnProfile,
	},
	RoleMember: {
		PermEditOwnProfile,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsAdminOperation reports whether the permission belongs to the admin surface (staff-only).
func IsAdminOperation(permission string) bool {
	switch permission {
	case PermManagePages, PermManagePetitions, PermManageElections, PermManageFacets, PermManageDonations:
		return true
	}
	return false
}
