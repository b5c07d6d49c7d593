package rbac

import (
	"fmt"
	"strings"
)

// Role is the closed identity classification of a session.
type Role uint8

const (
	// RoleNone is the zero value: an absent or unrecognised role. It holds no
	// capabilities.
	RoleNone Role = iota
	// RoleAdmin has every capability.
	RoleAdmin
	// RoleEditor manages boreholes and data but not sites, users or settings.
	RoleEditor
	// RoleViewer can look and export, nothing else.
	RoleViewer

	roleCount
)

var roleNames = [roleCount]string{
	RoleNone:   "",
	RoleAdmin:  "admin",
	RoleEditor: "editor",
	RoleViewer: "viewer",
}

// Roles lists the assignable roles in privilege order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleViewer}
}

// Valid reports whether r is one of admin, editor or viewer.
func (r Role) Valid() bool {
	return r > RoleNone && r < roleCount
}

// String returns the wire name of the role, or "" for RoleNone.
func (r Role) String() string {
	if r >= roleCount {
		return ""
	}
	return roleNames[r]
}

// ParseRole converts an external role name (session payload, profile row,
// token claim) into a Role. Unknown input yields RoleNone.
func ParseRole(s string) Role {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, r := range Roles() {
		if roleNames[r] == s {
			return r
		}
	}
	return RoleNone
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unlike ParseRole it
// rejects unknown names so request payloads fail validation loudly.
func (r *Role) UnmarshalText(text []byte) error {
	parsed := ParseRole(string(text))
	if !parsed.Valid() {
		return fmt.Errorf("rbac: unknown role %q", string(text))
	}
	*r = parsed
	return nil
}
