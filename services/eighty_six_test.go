package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/audit"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/rbac"
	"github.com/opskitchen/resto-ops/utils"
)

func newEightySixEngine(t *testing.T) (*EightySixEngine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewEightySixEngine(db, audit.NewSink(db), nil), db
}

// seedMenuItem creates a menu item with one tracked ingredient at the given
// stock level.
func seedMenuItem(t *testing.T, db *gorm.DB, name, ingredient string, required, stock float64, optional bool) models.MenuItem {
	t.Helper()

	inv := models.InventoryItem{Name: ingredient, Unit: "oz", CurrentQuantity: stock}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}

	item := models.MenuItem{Name: name, Category: "mains", Price: 24.50}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item: %v", err)
	}

	link := models.MenuItemIngredient{
		MenuItemID:       item.ID,
		InventoryItemID:  inv.ID,
		QuantityRequired: required,
		IsOptional:       optional,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("seed ingredient link: %v", err)
	}
	return item
}

func TestScanFlagsDepletedIngredient(t *testing.T) {
	engine, _ := newEightySixEngine(t)

	item := seedMenuItem(t, engine.db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	created, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	if assert.Len(t, created, 1) {
		s := created[0]
		assert.Equal(t, item.ID, s.MenuItemID)
		assert.Equal(t, "Truffle Pasta", s.MenuItemName)
		assert.Equal(t, models.TriggerIngredientUnavailable, s.TriggerReason)
		assert.Equal(t, "Truffle Oil", s.Details["ingredient_name"])
		assert.Equal(t, float64(2), s.Details["required_quantity"])
		assert.Equal(t, float64(0), s.Details["current_quantity"])
		assert.Equal(t, "oz", s.Details["unit"])
	}

	// Suggestion only; the item stays orderable until confirmed.
	var stored models.MenuItem
	assert.NoError(t, engine.db.First(&stored, item.ID).Error)
	assert.Equal(t, models.MenuAvailable, stored.Status)
}

func TestScanIsIdempotent(t *testing.T) {
	engine, _ := newEightySixEngine(t)
	seedMenuItem(t, engine.db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	first, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Empty(t, second)

	var total int64
	assert.NoError(t, engine.db.Model(&models.EightySixSuggestion{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestScanSkipsOptionalAndUntracked(t *testing.T) {
	engine, _ := newEightySixEngine(t)

	// Depleted but optional: never a trigger.
	seedMenuItem(t, engine.db, "Burger", "Truffle Shavings", 1, 0, true)

	// No tracked ingredients at all: absence of data is not depletion.
	plain := models.MenuItem{Name: "House Salad", Price: 9}
	assert.NoError(t, engine.db.Create(&plain).Error)

	// Sufficient stock.
	seedMenuItem(t, engine.db, "Risotto", "Arborio Rice", 3, 10, false)

	created, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Empty(t, created)
}

func TestConfirmFlipsItemAndOpensEvent(t *testing.T) {
	engine, db := newEightySixEngine(t)
	item := seedMenuItem(t, db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	created, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Len(t, created, 1)

	event, err := engine.Confirm(created[0].ID, 9, rbac.RoleKitchen)
	assert.NoError(t, err)
	assert.Equal(t, item.ID, event.MenuItemID)
	assert.Equal(t, uint(9), event.CreatedBy)
	assert.Nil(t, event.ResolvedAt)

	var stored models.MenuItem
	assert.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, models.MenuEightySixed, stored.Status)

	var suggestion models.EightySixSuggestion
	assert.NoError(t, db.First(&suggestion, created[0].ID).Error)
	assert.NotNil(t, suggestion.ConfirmedAt)

	ok, reason, err := engine.CanOrder(item.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "item is currently 86'd", reason)

	// A confirmed suggestion cannot be confirmed again.
	_, err = engine.Confirm(created[0].ID, 9, rbac.RoleKitchen)
	if appErr, errOk := err.(*utils.AppError); assert.True(t, errOk) {
		assert.Equal(t, utils.CodeNotFound, appErr.Code)
	}
}

func TestConfirmConflictsOnOpenEvent(t *testing.T) {
	engine, db := newEightySixEngine(t)
	item := seedMenuItem(t, db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	created, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Len(t, created, 1)

	// An event opened out of band between scan and confirm.
	open := models.EightySixEvent{MenuItemID: item.ID, Reason: "walk-in depletion", CreatedBy: 2}
	assert.NoError(t, db.Create(&open).Error)

	_, err = engine.Confirm(created[0].ID, 9, rbac.RoleKitchen)
	if appErr, ok := err.(*utils.AppError); assert.True(t, ok) {
		assert.Equal(t, utils.CodeConflict, appErr.Code)
		assert.Equal(t, 409, appErr.Status)
	}

	// The suggestion stays pending and no duplicate event was created.
	var suggestion models.EightySixSuggestion
	assert.NoError(t, db.First(&suggestion, created[0].ID).Error)
	assert.Nil(t, suggestion.ConfirmedAt)

	var events int64
	assert.NoError(t, db.Model(&models.EightySixEvent{}).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestConfirmConflictsWhenStatusFlipped(t *testing.T) {
	engine, db := newEightySixEngine(t)
	item := seedMenuItem(t, db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	created, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Len(t, created, 1)

	// The item's status changed between the engine's read and its guarded
	// write; the zero-rows UPDATE must surface as a conflict, not succeed.
	assert.NoError(t, db.Model(&models.MenuItem{}).
		Where("id = ?", item.ID).
		Update("status", models.MenuEightySixed).Error)

	_, err = engine.Confirm(created[0].ID, 9, rbac.RoleKitchen)
	if appErr, ok := err.(*utils.AppError); assert.True(t, ok) {
		assert.Equal(t, utils.CodeConflict, appErr.Code)
	}

	// The transaction rolled back: no event row survived.
	var events int64
	assert.NoError(t, db.Model(&models.EightySixEvent{}).Count(&events).Error)
	assert.Zero(t, events)

	var suggestion models.EightySixSuggestion
	assert.NoError(t, db.First(&suggestion, created[0].ID).Error)
	assert.Nil(t, suggestion.ConfirmedAt)
}

func TestRejectLeavesItemAlone(t *testing.T) {
	engine, db := newEightySixEngine(t)
	item := seedMenuItem(t, db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	created, err := engine.ScanForTriggers()
	assert.NoError(t, err)
	assert.Len(t, created, 1)

	assert.NoError(t, engine.Reject(created[0].ID, 9))

	var stored models.MenuItem
	assert.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, models.MenuAvailable, stored.Status)

	var events int64
	assert.NoError(t, db.Model(&models.EightySixEvent{}).Count(&events).Error)
	assert.Zero(t, events)

	// Terminal: rejecting twice fails, and the queue is empty.
	err = engine.Reject(created[0].ID, 9)
	if appErr, ok := err.(*utils.AppError); assert.True(t, ok) {
		assert.Equal(t, utils.CodeNotFound, appErr.Code)
	}

	pending, err := engine.Pending()
	assert.NoError(t, err)
	assert.Empty(t, pending)
}

func TestResolveRestoresAvailability(t *testing.T) {
	engine, db := newEightySixEngine(t)
	item := seedMenuItem(t, db, "Truffle Pasta", "Truffle Oil", 2, 0, false)

	created, _ := engine.ScanForTriggers()
	event, err := engine.Confirm(created[0].ID, 9, rbac.RoleKitchen)
	assert.NoError(t, err)

	resolved, err := engine.Resolve(event.ID, 4, rbac.RoleManager)
	assert.NoError(t, err)
	assert.NotNil(t, resolved.ResolvedAt)

	var stored models.MenuItem
	assert.NoError(t, db.First(&stored, item.ID).Error)
	assert.Equal(t, models.MenuAvailable, stored.Status)

	ok, _, err := engine.CanOrder(item.ID)
	assert.NoError(t, err)
	assert.True(t, ok)

	// Resolving a closed event fails.
	_, err = engine.Resolve(event.ID, 4, rbac.RoleManager)
	if appErr, errOk := err.(*utils.AppError); assert.True(t, errOk) {
		assert.Equal(t, utils.CodeNotFound, appErr.Code)
	}
}

func TestCanOrderUnknownItem(t *testing.T) {
	engine, _ := newEightySixEngine(t)

	ok, reason, err := engine.CanOrder(31337)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "menu item not found", reason)
}
