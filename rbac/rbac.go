// Package rbac holds the static role/permission matrix, the role-state
// ceiling for table transitions, and the per-entity field sensitivity table.
// Everything here is read-only after process start and safe for concurrent
// use without synchronization.
package rbac

// Role is the closed set of actor roles.
type Role string

const (
	RoleGuest   Role = "GUEST"
	RoleHost    Role = "HOST"
	RoleServer  Role = "SERVER"
	RoleKitchen Role = "KITCHEN"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Permission is the closed set of capability tokens.
type Permission string

const (
	PermViewGuestProfile     Permission = "VIEW_GUEST_PROFILE"
	PermCreateGuestProfile   Permission = "CREATE_GUEST_PROFILE"
	PermUpdateGuestProfile   Permission = "UPDATE_GUEST_PROFILE"
	PermDeleteGuestProfile   Permission = "DELETE_GUEST_PROFILE"
	PermViewGuestAllergies   Permission = "VIEW_GUEST_ALLERGIES"
	PermManageGuestAllergies Permission = "MANAGE_GUEST_ALLERGIES"

	PermViewReservations  Permission = "VIEW_RESERVATIONS"
	PermCreateReservation Permission = "CREATE_RESERVATION"
	PermUpdateReservation Permission = "UPDATE_RESERVATION"
	PermCancelReservation Permission = "CANCEL_RESERVATION"

	PermViewWaitlist   Permission = "VIEW_WAITLIST"
	PermManageWaitlist Permission = "MANAGE_WAITLIST"

	PermViewTables         Permission = "VIEW_TABLES"
	PermUpdateTableState   Permission = "UPDATE_TABLE_STATE"
	PermOverrideTableState Permission = "OVERRIDE_TABLE_STATE"

	PermViewMenu            Permission = "VIEW_MENU"
	PermViewMenuIngredients Permission = "VIEW_MENU_INGREDIENTS"
	PermManageMenu          Permission = "MANAGE_MENU"
	PermManageInventory     Permission = "MANAGE_INVENTORY"
	PermManage86Events      Permission = "MANAGE_86_EVENTS"

	PermViewOwnAnalytics Permission = "VIEW_OWN_ANALYTICS"
	PermViewAllAnalytics Permission = "VIEW_ALL_ANALYTICS"

	PermViewAuditLog Permission = "VIEW_AUDIT_LOG"
)

var allPermissions = []Permission{
	PermViewGuestProfile, PermCreateGuestProfile, PermUpdateGuestProfile,
	PermDeleteGuestProfile, PermViewGuestAllergies, PermManageGuestAllergies,
	PermViewReservations, PermCreateReservation, PermUpdateReservation,
	PermCancelReservation, PermViewWaitlist, PermManageWaitlist,
	PermViewTables, PermUpdateTableState, PermOverrideTableState,
	PermViewMenu, PermViewMenuIngredients, PermManageMenu,
	PermManageInventory, PermManage86Events,
	PermViewOwnAnalytics, PermViewAllAnalytics, PermViewAuditLog,
}

// permissionMatrix maps each role to its permission set. Loaded once,
// never mutated at runtime.
var permissionMatrix = map[Role]map[Permission]bool{
	RoleGuest: permSet(
		PermViewGuestProfile, PermUpdateGuestProfile, PermViewMenu,
		PermCreateReservation, PermUpdateReservation, PermCancelReservation,
	),
	RoleHost: permSet(
		PermViewGuestProfile, PermCreateGuestProfile, PermUpdateGuestProfile,
		PermViewMenu, PermViewReservations, PermCreateReservation,
		PermUpdateReservation, PermViewWaitlist, PermManageWaitlist,
		PermViewTables, PermUpdateTableState, PermViewOwnAnalytics,
	),
	RoleServer: permSet(
		PermViewGuestProfile, PermCreateGuestProfile, PermUpdateGuestProfile,
		PermViewGuestAllergies, PermManageGuestAllergies,
		PermViewMenu, PermViewMenuIngredients,
		PermViewReservations, PermViewWaitlist,
		PermViewTables, PermUpdateTableState, PermViewOwnAnalytics,
	),
	RoleKitchen: permSet(
		PermViewGuestAllergies, PermViewMenu, PermViewMenuIngredients,
		PermViewTables, PermUpdateTableState,
		PermManage86Events, PermManageInventory, PermViewOwnAnalytics,
	),
	RoleManager: permSet(
		PermViewGuestProfile, PermCreateGuestProfile, PermUpdateGuestProfile,
		PermDeleteGuestProfile, PermViewGuestAllergies, PermManageGuestAllergies,
		PermViewMenu, PermViewMenuIngredients, PermManageMenu,
		PermViewReservations, PermCreateReservation, PermUpdateReservation,
		PermCancelReservation, PermViewWaitlist, PermManageWaitlist,
		PermViewTables, PermUpdateTableState, PermOverrideTableState,
		PermManage86Events, PermManageInventory,
		PermViewOwnAnalytics, PermViewAllAnalytics, PermViewAuditLog,
	),
	RoleAdmin: permSet(allPermissions...),
}

func permSet(perms ...Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// HasPermission reports whether role holds permission. Unknown roles are
// denied.
func HasPermission(role Role, permission Permission) bool {
	perms, ok := permissionMatrix[role]
	if !ok {
		return false
	}
	return perms[permission]
}

// allowedTableStates is the role-state ceiling: the target states a role may
// set, independent of graph validity.
var allowedTableStates = map[Role][]string{
	RoleHost:    {"AVAILABLE", "RESERVED", "SEATED"},
	RoleServer:  {"SEATED", "ORDERED", "FOOD_SERVED", "PAYING", "CLEANING"},
	RoleKitchen: {"ORDERED", "FOOD_IN_PROGRESS", "FOOD_SERVED"},
	RoleManager: {"AVAILABLE", "RESERVED", "SEATED", "ORDERED", "FOOD_IN_PROGRESS",
		"FOOD_SERVED", "PAYING", "CLEANING", "OUT_OF_SERVICE"},
	RoleAdmin: {"AVAILABLE", "RESERVED", "SEATED", "ORDERED", "FOOD_IN_PROGRESS",
		"FOOD_SERVED", "PAYING", "CLEANING", "OUT_OF_SERVICE"},
}

// AllowedTableStates returns the set of table states role may set a table
// to. Unknown roles get an empty set.
func AllowedTableStates(role Role) []string {
	return allowedTableStates[role]
}

// CanSetTableState reports whether role's ceiling includes state.
func CanSetTableState(role Role, state string) bool {
	for _, s := range allowedTableStates[role] {
		if s == state {
			return true
		}
	}
	return false
}
