package services

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/audit"
	"github.com/opskitchen/resto-ops/events"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/rbac"
	"github.com/opskitchen/resto-ops/utils"
)

// EightySixEngine detects inventory-driven unavailability and manages the
// suggestion -> confirmation lifecycle for menu items. A scan only ever
// proposes; flipping an item to EIGHTY_SIXED always takes a staff confirm,
// and restoring it always takes a manual resolve.
type EightySixEngine struct {
	db    *gorm.DB
	audit *audit.Sink
	hub   *events.Hub

	stop     chan struct{}
	stopOnce sync.Once
}

func NewEightySixEngine(db *gorm.DB, sink *audit.Sink, hub *events.Hub) *EightySixEngine {
	return &EightySixEngine{
		db:    db,
		audit: sink,
		hub:   hub,
		stop:  make(chan struct{}),
	}
}

// ScanForTriggers walks AVAILABLE menu items and creates a suggestion for
// each whose non-optional ingredient stock has fallen below the required
// quantity. Items without tracked ingredients are skipped: absence of data
// is not evidence of absence of stock. The scan is idempotent; an existing
// pending suggestion for an item suppresses a new one.
func (e *EightySixEngine) ScanForTriggers() ([]models.EightySixSuggestion, error) {
	var items []models.MenuItem
	if err := e.db.Preload("Ingredients.InventoryItem").
		Where("status = ?", models.MenuAvailable).
		Find(&items).Error; err != nil {
		return nil, err
	}

	created := []models.EightySixSuggestion{}
	for _, item := range items {
		details := checkIngredients(item)
		if details == nil {
			continue
		}

		var pending int64
		if err := e.db.Model(&models.EightySixSuggestion{}).
			Where("menu_item_id = ? AND confirmed_at IS NULL AND rejected = ?", item.ID, false).
			Count(&pending).Error; err != nil {
			return nil, err
		}
		if pending > 0 {
			continue
		}

		suggestion := models.EightySixSuggestion{
			MenuItemID:    item.ID,
			MenuItemName:  item.Name,
			TriggerReason: models.TriggerIngredientUnavailable,
			Details:       details,
		}
		if err := e.db.Create(&suggestion).Error; err != nil {
			return nil, err
		}
		created = append(created, suggestion)

		utils.InfoLogger.Printf("86 trigger for menu item %d (%s): %v",
			item.ID, item.Name, details)
	}

	return created, nil
}

// checkIngredients returns trigger details for the first depleted
// non-optional ingredient, or nil if the item cannot be flagged.
func checkIngredients(item models.MenuItem) models.TriggerDetails {
	if len(item.Ingredients) == 0 {
		return nil
	}
	for _, ing := range item.Ingredients {
		if ing.IsOptional {
			continue
		}
		if ing.InventoryItem.CurrentQuantity < ing.QuantityRequired {
			return models.TriggerDetails{
				"ingredient_name":   ing.InventoryItem.Name,
				"required_quantity": ing.QuantityRequired,
				"current_quantity":  ing.InventoryItem.CurrentQuantity,
				"unit":              ing.InventoryItem.Unit,
			}
		}
	}
	return nil
}

// Pending returns unconfirmed, unrejected suggestions, oldest first.
func (e *EightySixEngine) Pending() ([]models.EightySixSuggestion, error) {
	var suggestions []models.EightySixSuggestion
	err := e.db.Where("confirmed_at IS NULL AND rejected = ?", false).
		Order("created_at ASC").
		Find(&suggestions).Error
	return suggestions, err
}

// Confirm applies a pending suggestion: it opens an 86 event and flips the
// menu item to EIGHTY_SIXED, in one transaction guarded by the item's
// current status.
func (e *EightySixEngine) Confirm(suggestionID, actorID uint, role rbac.Role) (*models.EightySixEvent, error) {
	var suggestion models.EightySixSuggestion
	err := e.db.Where("id = ? AND confirmed_at IS NULL AND rejected = ?", suggestionID, false).
		First(&suggestion).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrNotFound("pending 86 suggestion", suggestionID)
		}
		return nil, err
	}

	event := models.EightySixEvent{
		MenuItemID: suggestion.MenuItemID,
		Reason:     fmt.Sprintf("%s: %s", suggestion.TriggerReason, suggestion.MenuItemName),
		CreatedBy:  actorID,
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		// One unresolved event per item.
		var open int64
		if err := tx.Model(&models.EightySixEvent{}).
			Where("menu_item_id = ? AND resolved_at IS NULL", suggestion.MenuItemID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return utils.ErrConflict(
				fmt.Sprintf("menu item %d already has an open 86 event", suggestion.MenuItemID))
		}

		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		res := tx.Model(&models.MenuItem{}).
			Where("id = ? AND status = ?", suggestion.MenuItemID, models.MenuAvailable).
			Update("status", models.MenuEightySixed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrConflict(
				fmt.Sprintf("menu item %d status changed concurrently", suggestion.MenuItemID))
		}

		now := time.Now()
		return tx.Model(&models.EightySixSuggestion{}).
			Where("id = ?", suggestionID).
			Updates(map[string]interface{}{
				"confirmed_at": now,
				"confirmed_by": actorID,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	e.audit.RecordMutation(actorID, string(role), models.SourceManual, models.AuditCreate,
		"eighty_six_event", event.ID, nil, event, suggestion.TriggerReason)

	if e.hub != nil {
		e.hub.Publish(events.EventEightySixCreated, event)
	}

	utils.InfoLogger.Printf("86 suggestion %d confirmed by actor %d; menu item %d unavailable",
		suggestionID, actorID, suggestion.MenuItemID)

	return &event, nil
}

// Reject closes a pending suggestion without touching the menu item.
func (e *EightySixEngine) Reject(suggestionID, actorID uint) error {
	res := e.db.Model(&models.EightySixSuggestion{}).
		Where("id = ? AND confirmed_at IS NULL AND rejected = ?", suggestionID, false).
		Updates(map[string]interface{}{
			"rejected":     true,
			"confirmed_by": actorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound("pending 86 suggestion", suggestionID)
	}

	utils.InfoLogger.Printf("86 suggestion %d rejected by actor %d", suggestionID, actorID)
	return nil
}

// Resolve closes an open 86 event and restores the item to AVAILABLE.
// Always a manual staff action; stale inventory data must not silently
// restore availability, so there is no automatic counterpart.
func (e *EightySixEngine) Resolve(eventID, actorID uint, role rbac.Role) (*models.EightySixEvent, error) {
	var event models.EightySixEvent

	err := e.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.EightySixEvent{}).
			Where("id = ? AND resolved_at IS NULL", eventID).
			Update("resolved_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound("open 86 event", eventID)
		}

		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}

		return tx.Model(&models.MenuItem{}).
			Where("id = ?", event.MenuItemID).
			Update("status", models.MenuAvailable).Error
	})
	if err != nil {
		return nil, err
	}

	e.audit.RecordMutation(actorID, string(role), models.SourceManual, models.AuditUpdate,
		"eighty_six_event", eventID, nil, event, "RESOLVED")

	if e.hub != nil {
		e.hub.Publish(events.EventEightySixResolved, event)
	}

	utils.InfoLogger.Printf("86 event %d resolved by actor %d; menu item %d available",
		eventID, actorID, event.MenuItemID)

	return &event, nil
}

// CanOrder is the read-only guard used by order placement. The status flag
// and the open-event check are kept in sync by this engine, but the guard
// checks both anyway.
func (e *EightySixEngine) CanOrder(menuItemID uint) (bool, string, error) {
	var item models.MenuItem
	if err := e.db.First(&item, menuItemID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, "menu item not found", nil
		}
		return false, "", err
	}

	if item.Status == models.MenuEightySixed {
		return false, "item is currently 86'd", nil
	}

	var open int64
	if err := e.db.Model(&models.EightySixEvent{}).
		Where("menu_item_id = ? AND resolved_at IS NULL", menuItemID).
		Count(&open).Error; err != nil {
		return false, "", err
	}
	if open > 0 {
		return false, "item is currently 86'd", nil
	}

	return true, "", nil
}

// StartScanner runs ScanForTriggers on an interval until Stop. The scan
// stays externally triggerable; this is just a convenience driver.
func (e *EightySixEngine) StartScanner(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := e.ScanForTriggers(); err != nil {
					utils.ErrorLogger.Printf("86 scan failed: %v", err)
				}
			case <-e.stop:
				return
			}
		}
	}()
}

func (e *EightySixEngine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
}
