package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleManager, PermManage86Events))
	assert.True(t, HasPermission(RoleKitchen, PermManage86Events))
	assert.False(t, HasPermission(RoleHost, PermManage86Events))
	assert.False(t, HasPermission(RoleGuest, PermViewTables))
	assert.True(t, HasPermission(RoleAdmin, PermViewAuditLog))
}

func TestHasPermissionUnknownRoleDenied(t *testing.T) {
	assert.False(t, HasPermission(Role("JANITOR"), PermViewMenu))
	assert.False(t, HasPermission(Role(""), PermViewMenu))
}

func TestAdminHasEveryPermission(t *testing.T) {
	for _, p := range allPermissions {
		assert.True(t, HasPermission(RoleAdmin, p), "admin missing %s", p)
	}
}

func TestAllowedTableStates(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"AVAILABLE", "RESERVED", "SEATED"},
		AllowedTableStates(RoleHost))
	assert.ElementsMatch(t,
		[]string{"ORDERED", "FOOD_IN_PROGRESS", "FOOD_SERVED"},
		AllowedTableStates(RoleKitchen))
	assert.Empty(t, AllowedTableStates(RoleGuest))
	assert.Empty(t, AllowedTableStates(Role("JANITOR")))
}

func TestCanSetTableState(t *testing.T) {
	assert.True(t, CanSetTableState(RoleHost, "SEATED"))
	assert.False(t, CanSetTableState(RoleHost, "FOOD_IN_PROGRESS"))
	assert.True(t, CanSetTableState(RoleManager, "OUT_OF_SERVICE"))
	assert.False(t, CanSetTableState(RoleServer, "OUT_OF_SERVICE"))
}

func TestCanAccessField(t *testing.T) {
	// Ingredients are staff-tier.
	assert.True(t, CanAccessField(RoleServer, "menu", "ingredients"))
	assert.True(t, CanAccessField(RoleKitchen, "menu", "ingredients"))
	assert.False(t, CanAccessField(RoleGuest, "menu", "ingredients"))
	assert.False(t, CanAccessField(RoleHost, "menu", "ingredients"))

	// Allergies require the allergy-view permission.
	assert.True(t, CanAccessField(RoleKitchen, "guest", "allergies"))
	assert.False(t, CanAccessField(RoleHost, "guest", "allergies"))

	// Staff analytics require the all-analytics permission.
	assert.True(t, CanAccessField(RoleManager, "analytics", "staff_performance"))
	assert.False(t, CanAccessField(RoleServer, "analytics", "staff_performance"))

	// Everything not listed is visible by default.
	assert.True(t, CanAccessField(RoleGuest, "menu", "price"))
	assert.True(t, CanAccessField(RoleGuest, "table", "zone"))
}

func TestFilterFields(t *testing.T) {
	data := map[string]interface{}{
		"id":          1,
		"name":        "Risotto",
		"ingredients": []string{"arborio", "stock"},
	}

	filtered := FilterFields(RoleGuest, "menu", data)
	assert.Contains(t, filtered, "id")
	assert.Contains(t, filtered, "name")
	assert.NotContains(t, filtered, "ingredients")

	full := FilterFields(RoleKitchen, "menu", data)
	assert.Contains(t, full, "ingredients")
}
