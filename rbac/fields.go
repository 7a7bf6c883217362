package rbac

// fieldPolicies enumerates the sensitive fields per entity and the
// permission each requires. Fields not listed are visible to everyone
// (deny-by-exception, not default-deny).
var fieldPolicies = map[string]map[string]Permission{
	"menu": {
		"ingredients":      PermViewMenuIngredients,
		"ingredient_notes": PermViewMenuIngredients,
	},
	"guest": {
		"allergies":       PermViewGuestAllergies,
		"allergy_notes":   PermViewGuestAllergies,
		"allergy_history": PermViewGuestAllergies,
	},
	"analytics": {
		"staff_performance": PermViewAllAnalytics,
		"staff_breakdown":   PermViewAllAnalytics,
	},
}

// CanAccessField reports whether role may read the named field of entity.
func CanAccessField(role Role, entity, field string) bool {
	policy, ok := fieldPolicies[entity]
	if !ok {
		return true
	}
	required, ok := policy[field]
	if !ok {
		return true
	}
	return HasPermission(role, required)
}

// FilterFields strips fields the role may not see from a response map.
// The id field is always kept.
func FilterFields(role Role, entity string, data map[string]interface{}) map[string]interface{} {
	filtered := make(map[string]interface{}, len(data))
	for key, value := range data {
		if key == "id" || CanAccessField(role, entity, key) {
			filtered[key] = value
		}
	}
	return filtered
}
