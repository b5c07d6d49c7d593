package rbac_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwater/rediwater/internal/rbac"
)

func TestRole_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role     rbac.Role
		expected string
	}{
		{rbac.RoleAdmin, "admin"},
		{rbac.RoleEditor, "editor"},
		{rbac.RoleViewer, "viewer"},
		{rbac.RoleNone, ""},
		{rbac.Role(99), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.role.String())
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, rbac.RoleAdmin, rbac.ParseRole("admin"))
	assert.Equal(t, rbac.RoleEditor, rbac.ParseRole(" Editor "))
	assert.Equal(t, rbac.RoleViewer, rbac.ParseRole("VIEWER"))
	assert.Equal(t, rbac.RoleNone, rbac.ParseRole("owner"))
	assert.Equal(t, rbac.RoleNone, rbac.ParseRole(""))
}

func TestRole_UnmarshalRejectsUnknown(t *testing.T) {
	t.Parallel()

	var payload struct {
		Role rbac.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"editor"}`), &payload))
	assert.Equal(t, rbac.RoleEditor, payload.Role)

	err := json.Unmarshal([]byte(`{"role":"root"}`), &payload)
	assert.Error(t, err)
}

func TestCapability_RoundTrip(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, c := range rbac.AllCapabilities() {
		require.True(t, c.Valid())
		name := c.String()
		require.NotEmpty(t, name)
		require.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
		assert.Equal(t, c, rbac.ParseCapability(name))
	}
	assert.Len(t, seen, 13)
	assert.Equal(t, rbac.CapabilityUnknown, rbac.ParseCapability("canFly"))
}

func TestCapabilitiesFor_MatchesHasPermission(t *testing.T) {
	t.Parallel()

	for _, role := range rbac.Roles() {
		record := rbac.CapabilitiesFor(role)
		for _, c := range rbac.AllCapabilities() {
			assert.Equal(t, rbac.HasPermission(role, c), record.Has(c), "%s %s", role, c)
		}
	}
}

func TestCapabilitiesFor_InvalidRolePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { rbac.CapabilitiesFor(rbac.RoleNone) })
	assert.Panics(t, func() { rbac.CapabilitiesFor(rbac.Role(7)) })
}

func TestCapabilitiesFor_ReturnsCopy(t *testing.T) {
	t.Parallel()

	record := rbac.CapabilitiesFor(rbac.RoleViewer)
	record.CanManageUsers = true

	assert.False(t, rbac.CapabilitiesFor(rbac.RoleViewer).CanManageUsers)
	assert.False(t, rbac.HasPermission(rbac.RoleViewer, rbac.CanManageUsers))

	m := rbac.Matrix()
	m["viewer"] = rbac.CapabilitiesFor(rbac.RoleAdmin)
	assert.False(t, rbac.HasPermission(rbac.RoleViewer, rbac.CanDeleteSites))
}

func TestCapabilities_JSONNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(rbac.CapabilitiesFor(rbac.RoleEditor))
	require.NoError(t, err)

	var decoded map[string]bool
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, len(rbac.AllCapabilities()))
	for _, c := range rbac.AllCapabilities() {
		value, ok := decoded[c.String()]
		require.True(t, ok, c.String())
		assert.Equal(t, rbac.HasPermission(rbac.RoleEditor, c), value, c.String())
	}
}

func TestCapabilities_Granted(t *testing.T) {
	t.Parallel()

	assert.Len(t, rbac.CapabilitiesFor(rbac.RoleAdmin).Granted(), 13)
	assert.Equal(t, []rbac.Capability{
		rbac.CanViewDashboard,
		rbac.CanViewBoreholes,
		rbac.CanViewSites,
		rbac.CanExportData,
	}, rbac.CapabilitiesFor(rbac.RoleViewer).Granted())
}
