package rbac

import (
	"errors"
	"fmt"
	"strings"
)

// HasPermission reports whether role holds capability. It never panics: an
// absent or unrecognised role, or an unknown capability, is simply false.
func HasPermission(role Role, capability Capability) bool {
	if !role.Valid() || !capability.Valid() {
		return false
	}
	return matrix[role].Has(capability)
}

// Action is a CRUD verb a caller wants to perform.
type Action uint8

const (
	ActionUnknown Action = iota
	ActionCreate
	ActionRead
	ActionUpdate
	ActionDelete
)

var actionNames = map[Action]string{
	ActionCreate: "create",
	ActionRead:   "read",
	ActionUpdate: "update",
	ActionDelete: "delete",
}

// Actions lists every known action.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAction resolves an action name; unknown names yield ActionUnknown.
func ParseAction(s string) Action {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, a := range Actions() {
		if actionNames[a] == s {
			return a
		}
	}
	return ActionUnknown
}

// Entity is the kind of record an action targets.
type Entity uint8

const (
	EntityUnknown Entity = iota
	EntityBoreholes
	EntitySites
	EntityUsers
)

var entityNames = map[Entity]string{
	EntityBoreholes: "boreholes",
	EntitySites:     "sites",
	EntityUsers:     "users",
}

// Entities lists every known entity.
func Entities() []Entity {
	return []Entity{EntityBoreholes, EntitySites, EntityUsers}
}

func (e Entity) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}
	return "unknown"
}

// ParseEntity resolves an entity name; unknown names yield EntityUnknown.
func ParseEntity(s string) Entity {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, e := range Entities() {
		if entityNames[e] == s {
			return e
		}
	}
	return EntityUnknown
}

type actionKey struct {
	action Action
	entity Entity
}

// actionTable translates (action, entity) into the one capability that
// governs it. Users have no finer-grained flags, so every user action maps to
// CanManageUsers.
var actionTable = map[actionKey]Capability{
	{ActionCreate, EntityBoreholes}: CanCreateBoreholes,
	{ActionRead, EntityBoreholes}:   CanViewBoreholes,
	{ActionUpdate, EntityBoreholes}: CanEditBoreholes,
	{ActionDelete, EntityBoreholes}: CanDeleteBoreholes,

	{ActionCreate, EntitySites}: CanCreateSites,
	{ActionRead, EntitySites}:   CanViewSites,
	{ActionUpdate, EntitySites}: CanEditSites,
	{ActionDelete, EntitySites}: CanDeleteSites,

	{ActionCreate, EntityUsers}: CanManageUsers,
	{ActionRead, EntityUsers}:   CanManageUsers,
	{ActionUpdate, EntityUsers}: CanManageUsers,
	{ActionDelete, EntityUsers}: CanManageUsers,
}

// CapabilityFor returns the capability governing (action, entity) and whether
// a mapping exists.
func CapabilityFor(action Action, entity Entity) (Capability, bool) {
	capability, ok := actionTable[actionKey{action: action, entity: entity}]
	return capability, ok
}

// CanPerformAction reports whether role may perform action on entity. Pairs
// without a mapping are denied.
func CanPerformAction(role Role, action Action, entity Entity) bool {
	capability, ok := CapabilityFor(action, entity)
	if !ok {
		return false
	}
	return HasPermission(role, capability)
}

// VerifyActionTable checks that every known (action, entity) pair maps to a
// valid capability. A gap would otherwise surface only as a silent denial.
func VerifyActionTable() error {
	var errs []error
	for _, entity := range Entities() {
		for _, action := range Actions() {
			capability, ok := CapabilityFor(action, entity)
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("rbac: no capability mapped for %s %s", action, entity))
			case !capability.Valid():
				errs = append(errs, fmt.Errorf("rbac: %s %s maps to invalid capability %d", action, entity, capability))
			}
		}
	}
	return errors.Join(errs...)
}
