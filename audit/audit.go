// Package audit provides the append-only, best-effort mutation recorder.
// Audit persistence is deliberately not transactional with the mutation it
// describes: a failed audit write never rolls back or fails the owning
// business operation.
package audit

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/utils"
)

// Sink records audit entries. Construct with NewSink and pass explicitly to
// every engine that mutates state.
type Sink struct {
	db   *gorm.DB
	errs chan error
}

func NewSink(db *gorm.DB) *Sink {
	return &Sink{
		db:   db,
		errs: make(chan error, 64),
	}
}

// Errors exposes audit write failures for monitoring. The channel is never
// closed; sends are non-blocking, so a slow consumer drops failures rather
// than stalling mutations.
func (s *Sink) Errors() <-chan error {
	return s.errs
}

// Record persists one entry. Failures are logged and offered on Errors();
// they never propagate to the caller.
func (s *Sink) Record(entry models.AuditLogEntry) {
	if err := s.db.Create(&entry).Error; err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("audit write failed for %s/%d: %v",
				entry.TargetEntity, entry.TargetID, err)
		}
		select {
		case s.errs <- err:
		default:
		}
	}
}

// RecordMutation builds and records an entry with a field-level diff
// computed from the before/after snapshots.
func (s *Sink) RecordMutation(actorID uint, role, source, action, entity string, targetID uint, before, after interface{}, reasonCode string) {
	s.Record(models.AuditLogEntry{
		ActorID:      actorID,
		Role:         role,
		Action:       action,
		Source:       source,
		TargetEntity: entity,
		TargetID:     targetID,
		Changes:      diffFields(before, after),
		ReasonCode:   reasonCode,
	})
}

// diffFields compares two snapshots field by field via their JSON forms.
// Only changed fields are recorded; nil snapshots yield no diff.
func diffFields(before, after interface{}) models.FieldChanges {
	if before == nil || after == nil {
		return nil
	}
	beforeMap, okB := toMap(before)
	afterMap, okA := toMap(after)
	if !okB || !okA {
		return nil
	}

	changes := models.FieldChanges{}
	for key, newVal := range afterMap {
		oldVal := beforeMap[key]
		oldJSON, _ := json.Marshal(oldVal)
		newJSON, _ := json.Marshal(newVal)
		if string(oldJSON) != string(newJSON) {
			changes[key] = models.FieldChange{Old: oldVal, New: newVal}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// Query filters for the audit log listing.
type Query struct {
	ActorID      uint
	TargetEntity string
	TargetID     uint
	Action       string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

// Find returns matching entries, newest first.
func (s *Sink) Find(q Query) ([]models.AuditLogEntry, error) {
	tx := s.db.Model(&models.AuditLogEntry{})
	if q.ActorID != 0 {
		tx = tx.Where("actor_id = ?", q.ActorID)
	}
	if q.TargetEntity != "" {
		tx = tx.Where("target_entity = ?", q.TargetEntity)
	}
	if q.TargetID != 0 {
		tx = tx.Where("target_id = ?", q.TargetID)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if q.Since != nil {
		tx = tx.Where("created_at >= ?", q.Since)
	}
	if q.Until != nil {
		tx = tx.Where("created_at <= ?", q.Until)
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []models.AuditLogEntry
	err := tx.Order("created_at DESC").Limit(limit).Offset(q.Offset).Find(&entries).Error
	return entries, err
}
