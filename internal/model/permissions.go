package model

import "strings"

type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceOrders   Resource = "orders"
	ResourceContacts Resource = "contacts"
	ResourceAdmins   Resource = "admins"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var allResources = []Resource{ResourceProducts, ResourceOrders, ResourceContacts, ResourceAdmins}
var allActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

// PermissionSet is a capability set over resource/action pairs. The zero
// value allows nothing.
type PermissionSet map[Resource]map[Action]bool

func (ps PermissionSet) Allows(r Resource, a Action) bool {
	return ps[r][a]
}

func (ps PermissionSet) Grant(r Resource, a Action) {
	if ps[r] == nil {
		ps[r] = make(map[Action]bool)
	}
	ps[r][a] = true
}

// Strings flattens the set into "resource:action" pairs, the form carried
// in JWT claims and persisted as JSONB.
func (ps PermissionSet) Strings() []string {
	var out []string
	for _, r := range allResources {
		for _, a := range allActions {
			if ps[r][a] {
				out = append(out, string(r)+":"+string(a))
			}
		}
	}
	return out
}

// ParsePermissions rebuilds a set from "resource:action" pairs. Malformed
// entries are ignored.
func ParsePermissions(pairs []string) PermissionSet {
	ps := make(PermissionSet)
	for _, p := range pairs {
		r, a, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		ps.Grant(Resource(r), Action(a))
	}
	return ps
}

// FullPermissions grants every action on every resource. Used for the
// bootstrap super-admin.
func FullPermissions() PermissionSet {
	ps := make(PermissionSet)
	for _, r := range allResources {
		for _, a := range allActions {
			ps.Grant(r, a)
		}
	}
	return ps
}
