// Package roles maps user roles to permission sets. The mapping is a
// pure static table; the role itself is refreshed through the session
// layer, so there is no caching here.
package roles

import "fmt"

// Role is a closed enumeration. Adding a role requires updating the
// seniority table and the permission table below.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Permission gates a single capability in the UI and CLI.
type Permission string

const (
	PermManageUsers       Permission = "manage_users"
	PermManageCompany     Permission = "manage_company"
	PermManageInvitations Permission = "manage_invitations"
	PermViewStatistics    Permission = "view_statistics"
	PermManageInvoices    Permission = "manage_invoices"
	PermManageRevenue     Permission = "manage_revenue"
	PermManageExpenses    Permission = "manage_expenses"
	PermExportData        Permission = "export_data"
	PermManageBackup      Permission = "manage_backup"
)

// seniority orders roles: owner outranks manager outranks staff.
var seniority = map[Role]int{
	RoleOwner:   3,
	RoleManager: 2,
	RoleStaff:   1,
}

var permissions = map[Role][]Permission{
	RoleOwner: {
		PermManageUsers,
		PermManageCompany,
		PermManageInvitations,
		PermViewStatistics,
		PermManageInvoices,
		PermManageRevenue,
		PermManageExpenses,
		PermExportData,
		PermManageBackup,
	},
	RoleManager: {
		PermManageInvitations,
		PermViewStatistics,
		PermManageInvoices,
		PermManageRevenue,
		PermManageExpenses,
		PermExportData,
	},
	RoleStaff: {
		PermManageInvoices,
		PermManageRevenue,
		PermManageExpenses,
	},
}

// ParseRole validates a role string from the backend.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := seniority[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := seniority[r]
	return ok
}

// AtLeast reports whether r is at least as senior as other. A screen
// gated on manager must also admit owner.
func (r Role) AtLeast(other Role) bool {
	return seniority[r] >= seniority[other]
}

// Permissions returns the declared set for r; nil for unknown roles.
func (r Role) Permissions() []Permission {
	return permissions[r]
}

// Has reports whether r's declared set contains p.
func (r Role) Has(p Permission) bool {
	for _, granted := range permissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// UserSource supplies the current user's role, or "" when logged out.
// Satisfied by *session.Manager.
type UserSource interface {
	CurrentRole() string
}

// Checker answers permission questions about the current user. All
// methods are pure over the source's current state.
type Checker struct {
	source UserSource
}

// NewChecker binds a checker to a user source.
func NewChecker(source UserSource) *Checker {
	return &Checker{source: source}
}

// HasPermission reports whether a user is present and their role grants p.
func (c *Checker) HasPermission(p Permission) bool {
	role, err := ParseRole(c.source.CurrentRole())
	if err != nil {
		return false
	}
	return role.Has(p)
}

// HasRole reports whether the current user's role is at least as senior
// as r.
func (c *Checker) HasRole(r Role) bool {
	role, err := ParseRole(c.source.CurrentRole())
	if err != nil {
		return false
	}
	return role.AtLeast(r)
}
