package rbac

import "fmt"

// Capabilities is the full capability record of one role.
type Capabilities struct {
	CanViewDashboard   bool `json:"canViewDashboard"`
	CanViewBoreholes   bool `json:"canViewBoreholes"`
	CanCreateBoreholes bool `json:"canCreateBoreholes"`
	CanEditBoreholes   bool `json:"canEditBoreholes"`
	CanDeleteBoreholes bool `json:"canDeleteBoreholes"`
	CanViewSites       bool `json:"canViewSites"`
	CanCreateSites     bool `json:"canCreateSites"`
	CanEditSites       bool `json:"canEditSites"`
	CanDeleteSites     bool `json:"canDeleteSites"`
	CanImportData      bool `json:"canImportData"`
	CanExportData      bool `json:"canExportData"`
	CanManageUsers     bool `json:"canManageUsers"`
	CanViewSettings    bool `json:"canViewSettings"`
}

// Has returns the value of a single capability. Unknown capabilities are false.
func (c Capabilities) Has(capability Capability) bool {
	switch capability {
	case CanViewDashboard:
		return c.CanViewDashboard
	case CanViewBoreholes:
		return c.CanViewBoreholes
	case CanCreateBoreholes:
		return c.CanCreateBoreholes
	case CanEditBoreholes:
		return c.CanEditBoreholes
	case CanDeleteBoreholes:
		return c.CanDeleteBoreholes
	case CanViewSites:
		return c.CanViewSites
	case CanCreateSites:
		return c.CanCreateSites
	case CanEditSites:
		return c.CanEditSites
	case CanDeleteSites:
		return c.CanDeleteSites
	case CanImportData:
		return c.CanImportData
	case CanExportData:
		return c.CanExportData
	case CanManageUsers:
		return c.CanManageUsers
	case CanViewSettings:
		return c.CanViewSettings
	default:
		return false
	}
}

// Granted lists the capabilities set to true, in declaration order.
func (c Capabilities) Granted() []Capability {
	var out []Capability
	for _, capability := range AllCapabilities() {
		if c.Has(capability) {
			out = append(out, capability)
		}
	}
	return out
}

// matrix is indexed by Role. Every entry spells out every field; RoleNone
// stays at the zero record. The array is unexported and CapabilitiesFor hands
// out copies, so there is no way to change it after init.
var matrix = [roleCount]Capabilities{
	RoleAdmin: {
		CanViewDashboard:   true,
		CanViewBoreholes:   true,
		CanCreateBoreholes: true,
		CanEditBoreholes:   true,
		CanDeleteBoreholes: true,
		CanViewSites:       true,
		CanCreateSites:     true,
		CanEditSites:       true,
		CanDeleteSites:     true,
		CanImportData:      true,
		CanExportData:      true,
		CanManageUsers:     true,
		CanViewSettings:    true,
	},
	RoleEditor: {
		CanViewDashboard:   true,
		CanViewBoreholes:   true,
		CanCreateBoreholes: true,
		CanEditBoreholes:   true,
		CanDeleteBoreholes: true,
		CanViewSites:       true,
		CanCreateSites:     false,
		CanEditSites:       false,
		CanDeleteSites:     false,
		CanImportData:      true,
		CanExportData:      true,
		CanManageUsers:     false,
		CanViewSettings:    false,
	},
	RoleViewer: {
		CanViewDashboard:   true,
		CanViewBoreholes:   true,
		CanCreateBoreholes: false,
		CanEditBoreholes:   false,
		CanDeleteBoreholes: false,
		CanViewSites:       true,
		CanCreateSites:     false,
		CanEditSites:       false,
		CanDeleteSites:     false,
		CanImportData:      false,
		CanExportData:      true,
		CanManageUsers:     false,
		CanViewSettings:    false,
	},
}

// CapabilitiesFor returns the capability record of a role. Passing anything
// other than admin, editor or viewer is a programming error and panics; code
// handling untrusted input should go through HasPermission instead.
func CapabilitiesFor(role Role) Capabilities {
	if !role.Valid() {
		panic(fmt.Sprintf("rbac: CapabilitiesFor called with invalid role %d", role))
	}
	return matrix[role]
}

// Matrix returns a copy of the whole role to capability mapping keyed by role
// name.
func Matrix() map[string]Capabilities {
	out := make(map[string]Capabilities, len(Roles()))
	for _, role := range Roles() {
		out[role.String()] = matrix[role]
	}
	return out
}
