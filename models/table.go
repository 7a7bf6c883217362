package models

import "time"

// Table lifecycle states. The full transition graph lives in
// services.TableStateMachine; these are only the vocabulary.
const (
	TableAvailable      = "AVAILABLE"
	TableReserved       = "RESERVED"
	TableSeated         = "SEATED"
	TableOrdered        = "ORDERED"
	TableFoodInProgress = "FOOD_IN_PROGRESS"
	TableFoodServed     = "FOOD_SERVED"
	TablePaying         = "PAYING"
	TableCleaning       = "CLEANING"
	TableOutOfService   = "OUT_OF_SERVICE"
)

// Sources recorded on state events and audit entries.
const (
	SourceManual      = "MANUAL"
	SourceAISuggested = "AI_SUGGESTED"
	SourcePOS         = "POS"
	SourceSystem      = "SYSTEM"
)

type Table struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	TableNumber          string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Capacity             int       `gorm:"not null;default:2" json:"capacity"`
	Zone                 string    `gorm:"type:varchar(50)" json:"zone"`
	CurrentState         string    `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"current_state"`
	CurrentReservationID *uint     `gorm:"index" json:"current_reservation_id,omitempty"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

// TableStateEvent is the append-only record of one applied transition.
// Rows are created inside the same transaction as the state write and are
// never updated afterwards.
type TableStateEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   uint      `gorm:"not null;index" json:"table_id"`
	FromState *string   `gorm:"type:varchar(20)" json:"from_state,omitempty"`
	ToState   string    `gorm:"type:varchar(20);not null" json:"to_state"`
	ActorID   uint      `json:"actor_id"`
	ActorRole string    `gorm:"type:varchar(20);not null" json:"actor_role"`
	Source    string    `gorm:"type:varchar(20);not null;default:'MANUAL'" json:"source"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
