package models

import "time"

// POS event types consumed by the suggestion engine's POS probe.
const (
	POSCheckOpened  = "CHECK_OPENED"
	POSCheckPrinted = "CHECK_PRINTED"
	POSCheckPaid    = "CHECK_PAID"
)

// POSEvent is an ingested point-of-sale signal for a table. Append-only;
// the engine only ever reads the latest event per table.
type POSEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TableID   uint      `gorm:"not null;index" json:"table_id"`
	EventType string    `gorm:"type:varchar(30);not null" json:"event_type"`
	Provider  string    `gorm:"type:varchar(50)" json:"provider"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
