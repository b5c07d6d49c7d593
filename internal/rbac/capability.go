package rbac

// Capability is a single named boolean permission flag.
type Capability uint8

// Capability names mirror the flags the UI asks about.
const (
	CapabilityUnknown Capability = iota
	CanViewDashboard
	CanViewBoreholes
	CanCreateBoreholes
	CanEditBoreholes
	CanDeleteBoreholes
	CanViewSites
	CanCreateSites
	CanEditSites
	CanDeleteSites
	CanImportData
	CanExportData
	CanManageUsers
	CanViewSettings

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapabilityUnknown:  "",
	CanViewDashboard:   "canViewDashboard",
	CanViewBoreholes:   "canViewBoreholes",
	CanCreateBoreholes: "canCreateBoreholes",
	CanEditBoreholes:   "canEditBoreholes",
	CanDeleteBoreholes: "canDeleteBoreholes",
	CanViewSites:       "canViewSites",
	CanCreateSites:     "canCreateSites",
	CanEditSites:       "canEditSites",
	CanDeleteSites:     "canDeleteSites",
	CanImportData:      "canImportData",
	CanExportData:      "canExportData",
	CanManageUsers:     "canManageUsers",
	CanViewSettings:    "canViewSettings",
}

// AllCapabilities lists every capability in declaration order.
func AllCapabilities() []Capability {
	out := make([]Capability, 0, capabilityCount-1)
	for c := CanViewDashboard; c < capabilityCount; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	return c > CapabilityUnknown && c < capabilityCount
}

func (c Capability) String() string {
	if c >= capabilityCount {
		return ""
	}
	return capabilityNames[c]
}

// ParseCapability resolves a capability name. Matching is exact; unknown
// names yield CapabilityUnknown.
func ParseCapability(s string) Capability {
	for c := CanViewDashboard; c < capabilityCount; c++ {
		if capabilityNames[c] == s {
			return c
		}
	}
	return CapabilityUnknown
}
