package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	role string
}

func (s stubSource) CurrentRole() string { return s.role }

func TestRoleSeniority(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleOwner, RoleOwner, true},
		{RoleOwner, RoleManager, true},
		{RoleOwner, RoleStaff, true},
		{RoleManager, RoleOwner, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleStaff, true},
		{RoleStaff, RoleOwner, false},
		{RoleStaff, RoleManager, false},
		{RoleStaff, RoleStaff, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.AtLeast(tt.required),
			"%s.AtLeast(%s)", tt.role, tt.required)
	}
}

func TestOnlyOwnerManagesUsers(t *testing.T) {
	assert.True(t, RoleOwner.Has(PermManageUsers))
	assert.False(t, RoleManager.Has(PermManageUsers))
	assert.False(t, RoleStaff.Has(PermManageUsers))
}

func TestPermissionSetsAreNested(t *testing.T) {
	// Every permission of a junior role is held by its senior.
	for _, p := range RoleStaff.Permissions() {
		assert.True(t, RoleManager.Has(p), "manager should have staff permission %s", p)
	}
	for _, p := range RoleManager.Permissions() {
		assert.True(t, RoleOwner.Has(p), "owner should have manager permission %s", p)
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"owner", "manager", "staff"} {
		role, err := ParseRole(valid)
		assert.NoError(t, err)
		assert.True(t, role.Valid())
	}

	for _, invalid := range []string{"", "admin", "Owner", "superuser"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q must be rejected", invalid)
	}
}

func TestCheckerWithUnknownRole(t *testing.T) {
	tests := []struct {
		name string
		role string
	}{
		{"logged out", ""},
		{"unknown role from newer backend", "superadmin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(stubSource{role: tt.role})
			assert.False(t, checker.HasPermission(PermManageInvoices))
			assert.False(t, checker.HasRole(RoleStaff))
		})
	}
}

func TestCheckerGrantsByRole(t *testing.T) {
	owner := NewChecker(stubSource{role: "owner"})
	assert.True(t, owner.HasPermission(PermManageUsers))
	assert.True(t, owner.HasRole(RoleManager))

	staff := NewChecker(stubSource{role: "staff"})
	assert.True(t, staff.HasPermission(PermManageInvoices))
	assert.False(t, staff.HasPermission(PermViewStatistics))
	assert.False(t, staff.HasRole(RoleManager))
}
