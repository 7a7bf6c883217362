package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Trigger reasons for an 86 suggestion.
const (
	TriggerIngredientUnavailable = "INGREDIENT_UNAVAILABLE"
	TriggerInventoryDepleted     = "INVENTORY_DEPLETED"
	TriggerManualRequest         = "MANUAL_REQUEST"
)

// TriggerDetails holds the structured explanation behind an 86 suggestion,
// stored as a JSON column.
type TriggerDetails map[string]interface{}

func (d TriggerDetails) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	return string(b), err
}

func (d *TriggerDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return errors.New("unsupported type for TriggerDetails")
}

// EightySixSuggestion is a proposed 86, pending staff confirmation. Scans
// never flip menu item status directly.
type EightySixSuggestion struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	MenuItemID    uint           `gorm:"not null;index" json:"menu_item_id"`
	MenuItemName  string         `gorm:"type:varchar(255);not null" json:"menu_item_name"`
	TriggerReason string         `gorm:"type:varchar(50);not null" json:"trigger_reason"`
	Details       TriggerDetails `gorm:"type:text" json:"details"`
	Rejected      bool           `gorm:"not null;default:false" json:"rejected"`
	ConfirmedAt   *time.Time     `json:"confirmed_at,omitempty"`
	ConfirmedBy   *uint          `json:"confirmed_by,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

// EightySixEvent is the immutable record of an applied 86. At most one
// unresolved event exists per menu item. Resolution is always manual.
type EightySixEvent struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MenuItemID uint       `gorm:"not null;index" json:"menu_item_id"`
	Reason     string     `gorm:"type:text;not null" json:"reason"`
	CreatedBy  uint       `json:"created_by"`
	ResolvedAt *time.Time `gorm:"index" json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}
