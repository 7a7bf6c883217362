package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/audit"
	"github.com/opskitchen/resto-ops/events"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/rbac"
	"github.com/opskitchen/resto-ops/utils"
)

// tableTransitions is the directed transition graph. OUT_OF_SERVICE is the
// escape hatch, reachable from every state and exiting only to CLEANING or
// AVAILABLE.
var tableTransitions = map[string][]string{
	models.TableAvailable:      {models.TableReserved, models.TableSeated, models.TableOutOfService},
	models.TableReserved:       {models.TableAvailable, models.TableSeated, models.TableOutOfService},
	models.TableSeated:         {models.TableOrdered, models.TableAvailable, models.TableOutOfService},
	models.TableOrdered:        {models.TableFoodInProgress, models.TableOutOfService},
	models.TableFoodInProgress: {models.TableFoodServed, models.TableOutOfService},
	models.TableFoodServed:     {models.TablePaying, models.TableOutOfService},
	models.TablePaying:         {models.TableCleaning, models.TableOutOfService},
	models.TableCleaning:       {models.TableAvailable, models.TableOutOfService},
	models.TableOutOfService:   {models.TableCleaning, models.TableAvailable},
}

// forwardTransitions restricts the graph to the single normal-flow edge per
// state, used by the suggestion engine to pick a target.
var forwardTransitions = map[string]string{
	models.TableAvailable:      models.TableReserved,
	models.TableReserved:       models.TableSeated,
	models.TableSeated:         models.TableOrdered,
	models.TableOrdered:        models.TableFoodInProgress,
	models.TableFoodInProgress: models.TableFoodServed,
	models.TableFoodServed:     models.TablePaying,
	models.TablePaying:         models.TableCleaning,
	models.TableCleaning:       models.TableAvailable,
}

// ValidTransition reports whether from -> to is a graph edge. A same-state
// transition is valid (applied as a no-op).
func ValidTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range tableTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TableStateMachine validates and applies table lifecycle transitions.
// All table state writes in the system go through Apply.
type TableStateMachine struct {
	db    *gorm.DB
	audit *audit.Sink
	hub   *events.Hub
}

func NewTableStateMachine(db *gorm.DB, sink *audit.Sink, hub *events.Hub) *TableStateMachine {
	return &TableStateMachine{db: db, audit: sink, hub: hub}
}

// Apply moves a table to targetState on behalf of an actor.
//
// Validation order: existence, role-state ceiling, graph edge. The state
// write and the event append run in one transaction, and the UPDATE is
// guarded by the previously read state so a concurrent transition surfaces
// as Conflict instead of a silently forked history. Audit and publish
// happen after commit and are best-effort.
func (sm *TableStateMachine) Apply(tableID uint, targetState string, actorID uint, role rbac.Role, source string, reservationID *uint) (*models.Table, error) {
	var table models.Table
	if err := sm.db.First(&table, tableID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrNotFound("table", tableID)
		}
		return nil, err
	}

	if !rbac.CanSetTableState(role, targetState) {
		return nil, utils.ErrForbidden(
			fmt.Sprintf("role %s cannot set table state to %s", role, targetState))
	}

	fromState := table.CurrentState
	if !ValidTransition(fromState, targetState) {
		return nil, utils.ErrInvalidTransition(fromState, targetState)
	}

	if fromState == targetState {
		// No-op success; no event, no audit.
		return &table, nil
	}

	before := table

	err := sm.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"current_state": targetState}
		if reservationID != nil {
			updates["current_reservation_id"] = reservationID
		} else if targetState == models.TableAvailable {
			// Turning the table clears a stale reservation link.
			updates["current_reservation_id"] = nil
		}

		res := tx.Model(&models.Table{}).
			Where("id = ? AND current_state = ?", tableID, fromState).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Someone else moved the table between our read and write.
			return utils.ErrConflict(
				fmt.Sprintf("table %d state changed concurrently, retry", tableID))
		}

		event := models.TableStateEvent{
			TableID:   tableID,
			FromState: &fromState,
			ToState:   targetState,
			ActorID:   actorID,
			ActorRole: string(role),
			Source:    source,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	table.CurrentState = targetState
	if reservationID != nil {
		table.CurrentReservationID = reservationID
	} else if targetState == models.TableAvailable {
		table.CurrentReservationID = nil
	}

	sm.audit.RecordMutation(actorID, string(role), source, models.AuditUpdate,
		"table", tableID, before, table, "")

	if sm.hub != nil {
		sm.hub.Publish(events.EventTableStateUpdated, map[string]interface{}{
			"table":      table,
			"from_state": fromState,
			"to_state":   targetState,
		})
	}

	utils.InfoLogger.Printf("table %d: %s -> %s by actor %d (%s/%s)",
		tableID, fromState, targetState, actorID, role, source)

	return &table, nil
}

// History returns the table's state events, newest first.
func (sm *TableStateMachine) History(tableID uint) ([]models.TableStateEvent, error) {
	var table models.Table
	if err := sm.db.First(&table, tableID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrNotFound("table", tableID)
		}
		return nil, err
	}

	var history []models.TableStateEvent
	err := sm.db.Where("table_id = ?", tableID).
		Order("created_at DESC").Order("id DESC").
		Find(&history).Error
	return history, err
}
