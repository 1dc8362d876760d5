package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionSet_ZeroValueAllowsNothing(t *testing.T) {
	var ps PermissionSet
	assert.False(t, ps.Allows(ResourceOrders, ActionRead))
}

func TestPermissionSet_GrantAndAllows(t *testing.T) {
	ps := make(PermissionSet)
	ps.Grant(ResourceOrders, ActionRead)

	assert.True(t, ps.Allows(ResourceOrders, ActionRead))
	assert.False(t, ps.Allows(ResourceOrders, ActionDelete))
	assert.False(t, ps.Allows(ResourceProducts, ActionRead))
}

func TestPermissionSet_StringsRoundTrip(t *testing.T) {
	ps := make(PermissionSet)
	ps.Grant(ResourceProducts, ActionCreate)
	ps.Grant(ResourceContacts, ActionDelete)

	pairs := ps.Strings()
	assert.ElementsMatch(t, []string{"products:create", "contacts:delete"}, pairs)

	parsed := ParsePermissions(pairs)
	assert.True(t, parsed.Allows(ResourceProducts, ActionCreate))
	assert.True(t, parsed.Allows(ResourceContacts, ActionDelete))
	assert.False(t, parsed.Allows(ResourceOrders, ActionRead))
}

func TestParsePermissions_SkipsMalformed(t *testing.T) {
	ps := ParsePermissions([]string{"orders:read", "garbage", ""})
	assert.True(t, ps.Allows(ResourceOrders, ActionRead))
	assert.Len(t, ps.Strings(), 1)
}

func TestFullPermissions(t *testing.T) {
	ps := FullPermissions()
	for _, r := range allResources {
		for _, a := range allActions {
			assert.True(t, ps.Allows(r, a), "%s:%s", r, a)
		}
	}
	assert.Len(t, ps.Strings(), len(allResources)*len(allActions))
}

func TestOrderStatus_CanTransition(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusConfirmed))
	assert.True(t, StatusPending.CanTransition(StatusCancelled))
	assert.False(t, StatusPending.CanTransition(StatusDelivered))
	assert.False(t, StatusDelivered.CanTransition(StatusPending))
	assert.False(t, StatusCancelled.CanTransition(StatusConfirmed))
}
