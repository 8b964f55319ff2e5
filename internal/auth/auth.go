package auth

// Role is the staff role tag assigned at account creation. It never
// changes for the lifetime of an account.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleManager
}

// Capability is a named action a role may perform.
type Capability string

const (
	CapViewMenu         Capability = "VIEW_MENU"
	CapCreateOrder      Capability = "CREATE_ORDER"
	CapViewOwnOrders    Capability = "VIEW_OWN_ORDERS"
	CapManageProducts   Capability = "MANAGE_PRODUCTS"
	CapManageCategories Capability = "MANAGE_CATEGORIES"
	CapManageUsers      Capability = "MANAGE_USERS"
	CapViewAllOrders    Capability = "VIEW_ALL_ORDERS"
	CapViewReports      Capability = "VIEW_REPORTS"
)

// Actor is an authenticated staff member. The permission set is a pure
// function of Role; there are no per-user overrides.
type Actor struct {
	ID       int64
	Username string
	FullName string
	Role     Role
}

// IsManager reports whether the actor holds the manager role.
func (a *Actor) IsManager() bool {
	return a != nil && a.Role == RoleManager
}

// rolePermissions is the full permission matrix. The manager set is a
// strict superset of the employee set.
var rolePermissions = map[Role][]Capability{
	RoleEmployee: {
		CapViewMenu,
		CapCreateOrder,
		CapViewOwnOrders,
	},
	RoleManager: {
		CapViewMenu,
		CapCreateOrder,
		CapViewOwnOrders,
		CapManageProducts,
		CapManageCategories,
		CapManageUsers,
		CapViewAllOrders,
		CapViewReports,
	},
}

// PermissionsFor returns the capability set for a role. Unknown roles
// have no capabilities.
func PermissionsFor(role Role) []Capability {
	perms := rolePermissions[role]
	out := make([]Capability, len(perms))
	copy(out, perms)
	return out
}

// HasCapability reports whether the actor may perform the given action.
// A nil actor (no one logged in) never has any capability.
func HasCapability(a *Actor, cap Capability) bool {
	if a == nil {
		return false
	}
	for _, c := range rolePermissions[a.Role] {
		if c == cap {
			return true
		}
	}
	return false
}
