package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opskitchen/resto-ops/models"
)

func TestInventoryAdjust(t *testing.T) {
	env := newTestEnv(t)
	kitchen := token(t, 4, "KITCHEN")

	w := env.request(t, "POST", "/inventory", kitchen, map[string]interface{}{
		"name":             "Arborio Rice",
		"unit":             "kg",
		"current_quantity": 5,
		"par_level":        10,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	itemID := uint(dataField(t, w)["id"].(float64))

	w = env.request(t, "POST", fmt.Sprintf("/inventory/%d/adjust", itemID), kitchen,
		map[string]interface{}{"delta": -2, "reason": "DINNER_SERVICE"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), dataField(t, w)["current_quantity"])

	// Driving the quantity negative is rejected, not clamped.
	w = env.request(t, "POST", fmt.Sprintf("/inventory/%d/adjust", itemID), kitchen,
		map[string]interface{}{"delta": -4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["code"])

	var stored models.InventoryItem
	assert.NoError(t, env.db.First(&stored, itemID).Error)
	assert.Equal(t, float64(3), stored.CurrentQuantity)

	// Adjustments are audited with the reason code.
	var entry models.AuditLogEntry
	assert.NoError(t, env.db.Where("target_entity = ?", "inventory_item").
		First(&entry).Error)
	assert.Equal(t, "DINNER_SERVICE", entry.ReasonCode)
	assert.Equal(t, uint(4), entry.ActorID)
}

func TestMenuIngredientVisibility(t *testing.T) {
	env := newTestEnv(t)
	manager := token(t, 1, "MANAGER")
	host := token(t, 2, "HOST")
	server := token(t, 3, "SERVER")

	w := env.request(t, "POST", "/menus", manager, map[string]interface{}{
		"name":  "Mushroom Risotto",
		"price": 21.5,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	menuID := uint(dataField(t, w)["id"].(float64))

	w = env.request(t, "POST", "/inventory", manager, map[string]interface{}{
		"name": "Porcini", "unit": "oz", "current_quantity": 12,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	invID := uint(dataField(t, w)["id"].(float64))

	w = env.request(t, "POST", fmt.Sprintf("/menus/%d/ingredients", menuID), manager,
		map[string]interface{}{"inventory_item_id": invID, "quantity_required": 2})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Server is cleared for ingredient detail, host is not.
	w = env.request(t, "GET", fmt.Sprintf("/menus/%d", menuID), server, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	withIngredients := dataField(t, w)
	assert.Contains(t, withIngredients, "ingredients")

	w = env.request(t, "GET", fmt.Sprintf("/menus/%d", menuID), host, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	withoutIngredients := dataField(t, w)
	assert.NotContains(t, withoutIngredients, "ingredients")

	// The public listing never includes ingredient detail, fresh or served
	// from cache.
	for i := 0; i < 2; i++ {
		w = env.request(t, "GET", "/menus", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		items, ok := decode(t, w)["data"].([]interface{})
		if assert.True(t, ok) && assert.Len(t, items, 1) {
			assert.NotContains(t, items[0].(map[string]interface{}), "ingredients")
		}
	}
}

func TestAuditLogEndpoint(t *testing.T) {
	env := newTestEnv(t)
	manager := token(t, 1, "MANAGER")
	tableID := createTable(t, env, manager, "T-20")

	w := env.request(t, "PUT", fmt.Sprintf("/tables/%d/state", tableID), manager,
		map[string]interface{}{"state": "SEATED"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, "GET", "/audit-logs?entity=table", manager, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	entries, ok := decode(t, w)["data"].([]interface{})
	if assert.True(t, ok) && assert.Len(t, entries, 1) {
		entry := entries[0].(map[string]interface{})
		assert.Equal(t, "UPDATE", entry["action"])
		changes := entry["changes"].(map[string]interface{})
		assert.Contains(t, changes, "current_state")
	}

	// SERVER holds no audit permission.
	server := token(t, 3, "SERVER")
	w = env.request(t, "GET", "/audit-logs", server, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
