package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Evidence kinds attached to a table state suggestion.
const (
	EvidenceReservation   = "RESERVATION"
	EvidenceTimeThreshold = "TIME_THRESHOLD"
	EvidenceStaffAction   = "STAFF_ACTION"
	EvidencePOSEvent      = "POS_EVENT"
	EvidenceStateHistory  = "STATE_HISTORY"
)

// Evidence is one weighted observation supporting a suggested transition.
// Immutable once attached to a suggestion.
type Evidence struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Weight      int       `json:"weight"`
}

// EvidenceList is stored as a JSON column on the suggestion row.
type EvidenceList []Evidence

func (e EvidenceList) Value() (driver.Value, error) {
	if e == nil {
		return "[]", nil
	}
	b, err := json.Marshal(e)
	return string(b), err
}

func (e *EvidenceList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*e = nil
		return nil
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	}
	return errors.New("unsupported type for EvidenceList")
}

// TableStateSuggestion is a proposed-but-unapplied transition. It is created
// by the suggestion engine and mutated exactly once, by review. Accepting a
// suggestion never mutates table state here; that is the reviewer's call into
// the state machine.
type TableStateSuggestion struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	TableID          uint         `gorm:"not null;index" json:"table_id"`
	CurrentState     string       `gorm:"type:varchar(20);not null" json:"current_state"`
	SuggestedState   string       `gorm:"type:varchar(20);not null" json:"suggested_state"`
	Confidence       int          `gorm:"not null" json:"confidence"`
	Evidence         EvidenceList `gorm:"type:text" json:"evidence"`
	ConflictDetected bool         `gorm:"not null;default:false" json:"conflict_detected"`
	ConflictReason   string       `gorm:"type:varchar(255)" json:"conflict_reason,omitempty"`
	Source           string       `gorm:"type:varchar(20);not null;default:'AI_SUGGESTED'" json:"source"`
	Accepted         bool         `gorm:"not null;default:false" json:"accepted"`
	ReviewedAt       *time.Time   `json:"reviewed_at,omitempty"`
	ReviewedBy       *uint        `json:"reviewed_by,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}
