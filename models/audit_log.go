package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Audit actions.
const (
	AuditCreate = "CREATE"
	AuditUpdate = "UPDATE"
	AuditDelete = "DELETE"
	AuditAccess = "ACCESS"
)

// FieldChange captures one field-level before/after pair.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// FieldChanges is stored as a JSON column.
type FieldChanges map[string]FieldChange

func (f FieldChanges) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	b, err := json.Marshal(f)
	return string(b), err
}

func (f *FieldChanges) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	}
	return errors.New("unsupported type for FieldChanges")
}

// AuditLogEntry is write-once. Rows are queryable but never updated or
// deleted.
type AuditLogEntry struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ActorID      uint         `gorm:"index" json:"actor_id"`
	Role         string       `gorm:"type:varchar(20);not null" json:"role"`
	Action       string       `gorm:"type:varchar(20);not null" json:"action"`
	Source       string       `gorm:"type:varchar(20);not null;default:'MANUAL'" json:"source"`
	TargetEntity string       `gorm:"type:varchar(50);not null;index" json:"target_entity"`
	TargetID     uint         `gorm:"index" json:"target_id"`
	Changes      FieldChanges `gorm:"type:text" json:"changes,omitempty"`
	ReasonCode   string       `gorm:"type:varchar(100)" json:"reason_code,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;index" json:"created_at"`
}
