package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/opskitchen/resto-ops/events"
	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/utils"
)

// SuggestionConfig carries the engine's tuning constants. The thresholds
// are heuristics, not invariants, so they are configurable rather than
// baked in.
type SuggestionConfig struct {
	// MinEvidenceWeight is the summed weight below which no suggestion is
	// produced.
	MinEvidenceWeight int
	// CorroborationBonus is added per evidence item, capped at
	// CorroborationCap.
	CorroborationBonus int
	CorroborationCap   int
	// ManualActivityWindow flags a conflict when any state change hit the
	// table this recently.
	ManualActivityWindow time.Duration
	// PendingWindow flags a conflict when an unreviewed suggestion for the
	// table was created this recently.
	PendingWindow time.Duration
	// PendingLimit bounds the reviewer queue.
	PendingLimit int
	// POSLookback bounds how old a POS signal may be to count as evidence.
	POSLookback time.Duration
}

func DefaultSuggestionConfig() SuggestionConfig {
	return SuggestionConfig{
		MinEvidenceWeight:    70,
		CorroborationBonus:   10,
		CorroborationCap:     30,
		ManualActivityWindow: 2 * time.Minute,
		PendingWindow:        5 * time.Minute,
		PendingLimit:         50,
		POSLookback:          30 * time.Minute,
	}
}

// SuggestionEngine gathers timed evidence for a table and proposes the next
// normal-flow state. It never mutates table state: an accepted suggestion
// is applied by the reviewer's caller through the state machine, keeping
// the human-confirmation boundary intact.
type SuggestionEngine struct {
	db  *gorm.DB
	hub *events.Hub
	cfg SuggestionConfig
}

func NewSuggestionEngine(db *gorm.DB, hub *events.Hub, cfg SuggestionConfig) *SuggestionEngine {
	return &SuggestionEngine{db: db, hub: hub, cfg: cfg}
}

// Generate runs all probes for the table and persists a suggestion when the
// evidence clears the creation threshold. Returns nil (no error) when there
// is nothing to suggest.
func (se *SuggestionEngine) Generate(tableID uint) (*models.TableStateSuggestion, error) {
	var table models.Table
	if err := se.db.First(&table, tableID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrNotFound("table", tableID)
		}
		return nil, err
	}

	evidence := models.EvidenceList{}
	for _, probe := range []func(*models.Table) (*models.Evidence, error){
		se.reservationProbe,
		se.timeThresholdProbe,
		se.posProbe,
		se.staffActionProbe,
		se.stateHistoryProbe,
	} {
		ev, err := probe(&table)
		if err != nil {
			// A failed probe degrades the suggestion, it does not abort it.
			utils.ErrorLogger.Printf("suggestion probe failed for table %d: %v", tableID, err)
			continue
		}
		if ev != nil {
			evidence = append(evidence, *ev)
		}
	}

	if len(evidence) == 0 {
		return nil, nil
	}

	target := se.determineTarget(table.CurrentState, evidence)
	if target == "" || target == table.CurrentState {
		return nil, nil
	}

	confidence := se.confidence(evidence)
	conflict, reason, err := se.detectConflict(tableID)
	if err != nil {
		return nil, err
	}

	suggestion := models.TableStateSuggestion{
		TableID:          tableID,
		CurrentState:     table.CurrentState,
		SuggestedState:   target,
		Confidence:       confidence,
		Evidence:         evidence,
		ConflictDetected: conflict,
		ConflictReason:   reason,
		Source:           models.SourceAISuggested,
	}
	if err := se.db.Create(&suggestion).Error; err != nil {
		return nil, err
	}

	if se.hub != nil && !conflict {
		se.hub.Publish(events.EventSuggestionCreated, suggestion)
	}

	utils.InfoLogger.Printf("suggestion %d for table %d: %s -> %s (confidence %d, conflict %v)",
		suggestion.ID, tableID, table.CurrentState, target, confidence, conflict)

	return &suggestion, nil
}

// reservationProbe: an arrived guest within 10 minutes of their reservation
// time strongly implies the table should advance.
func (se *SuggestionEngine) reservationProbe(table *models.Table) (*models.Evidence, error) {
	if table.CurrentReservationID == nil {
		return nil, nil
	}

	var reservation models.Reservation
	err := se.db.First(&reservation, *table.CurrentReservationID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now()
	if reservation.Status == models.ReservationArrived &&
		absDuration(now.Sub(reservation.ReservationTime)) < 10*time.Minute {
		return &models.Evidence{
			Kind:        models.EvidenceReservation,
			Description: "guest arrived within 10 minutes of reservation time",
			Timestamp:   now,
			Weight:      90,
		}, nil
	}
	return nil, nil
}

// timeThresholdProbe: elapsed time in the current state. PAYING for 5+
// minutes suggests CLEANING (weight 70); CLEANING for 10+ minutes suggests
// AVAILABLE (weight 80).
func (se *SuggestionEngine) timeThresholdProbe(table *models.Table) (*models.Evidence, error) {
	var lastEntry models.TableStateEvent
	err := se.db.Where("table_id = ? AND to_state = ?", table.ID, table.CurrentState).
		Order("created_at DESC").Order("id DESC").
		First(&lastEntry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now()
	minutesInState := now.Sub(lastEntry.CreatedAt).Minutes()

	switch {
	case table.CurrentState == models.TablePaying && minutesInState >= 5:
		return &models.Evidence{
			Kind:        models.EvidenceTimeThreshold,
			Description: fmt.Sprintf("table in PAYING state for %d minutes", int(minutesInState)),
			Timestamp:   now,
			Weight:      70,
		}, nil
	case table.CurrentState == models.TableCleaning && minutesInState >= 10:
		return &models.Evidence{
			Kind:        models.EvidenceTimeThreshold,
			Description: fmt.Sprintf("table in CLEANING state for %d minutes", int(minutesInState)),
			Timestamp:   now,
			Weight:      80,
		}, nil
	}
	return nil, nil
}

// posProbe: the latest POS check event within the lookback window.
func (se *SuggestionEngine) posProbe(table *models.Table) (*models.Evidence, error) {
	var event models.POSEvent
	err := se.db.Where("table_id = ? AND created_at > ?",
		table.ID, time.Now().Add(-se.cfg.POSLookback)).
		Order("created_at DESC").Order("id DESC").
		First(&event).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	weights := map[string]int{
		models.POSCheckOpened:  80,
		models.POSCheckPrinted: 85,
		models.POSCheckPaid:    95,
	}
	weight, ok := weights[event.EventType]
	if !ok {
		return nil, nil
	}

	return &models.Evidence{
		Kind:        models.EvidencePOSEvent,
		Description: fmt.Sprintf("%s in POS", event.EventType),
		Timestamp:   event.CreatedAt,
		Weight:      weight,
	}, nil
}

// staffActionProbe is a reserved extension point for patterns in recent
// staff activity. It yields no evidence and issues no query until it does.
func (se *SuggestionEngine) staffActionProbe(table *models.Table) (*models.Evidence, error) {
	return nil, nil
}

// stateHistoryProbe is a reserved extension point for dwell-time patterns
// across the table's history. It yields no evidence and issues no query
// until it does.
func (se *SuggestionEngine) stateHistoryProbe(table *models.Table) (*models.Evidence, error) {
	return nil, nil
}

// determineTarget picks the single forward-progress edge when the summed
// evidence weight clears the creation threshold.
func (se *SuggestionEngine) determineTarget(currentState string, evidence models.EvidenceList) string {
	next, ok := forwardTransitions[currentState]
	if !ok {
		return ""
	}

	total := 0
	for _, ev := range evidence {
		total += ev.Weight
	}
	if total < se.cfg.MinEvidenceWeight {
		return ""
	}
	return next
}

// confidence is the mean evidence weight boosted by corroboration count,
// capped at 100.
func (se *SuggestionEngine) confidence(evidence models.EvidenceList) int {
	if len(evidence) == 0 {
		return 0
	}

	total := 0
	for _, ev := range evidence {
		total += ev.Weight
	}
	avg := float64(total) / float64(len(evidence))

	boost := len(evidence) * se.cfg.CorroborationBonus
	if boost > se.cfg.CorroborationCap {
		boost = se.cfg.CorroborationCap
	}

	score := int(math.Round(avg)) + boost
	if score > 100 {
		score = 100
	}
	return score
}

// detectConflict flags suggestions racing manual activity or an earlier
// unreviewed suggestion. Conflicted suggestions are still persisted for
// audit, just kept out of the default review queue.
func (se *SuggestionEngine) detectConflict(tableID uint) (bool, string, error) {
	var recentChanges int64
	err := se.db.Model(&models.TableStateEvent{}).
		Where("table_id = ? AND created_at > ?",
			tableID, time.Now().Add(-se.cfg.ManualActivityWindow)).
		Count(&recentChanges).Error
	if err != nil {
		return false, "", err
	}
	if recentChanges > 0 {
		return true, "recent manual state change detected", nil
	}

	var pending int64
	err = se.db.Model(&models.TableStateSuggestion{}).
		Where("table_id = ? AND reviewed_at IS NULL AND created_at > ?",
			tableID, time.Now().Add(-se.cfg.PendingWindow)).
		Count(&pending).Error
	if err != nil {
		return false, "", err
	}
	if pending > 0 {
		return true, "pending suggestion already exists", nil
	}

	return false, "", nil
}

// Pending returns the reviewer queue: unreviewed, conflict-free
// suggestions, strongest first.
func (se *SuggestionEngine) Pending() ([]models.TableStateSuggestion, error) {
	var suggestions []models.TableStateSuggestion
	err := se.db.Where("reviewed_at IS NULL AND conflict_detected = ?", false).
		Order("confidence DESC").Order("created_at ASC").
		Limit(se.cfg.PendingLimit).
		Find(&suggestions).Error
	return suggestions, err
}

// Review marks a suggestion accepted or rejected. Terminal: a reviewed
// suggestion cannot be reviewed again. Applying an accepted suggestion is
// the caller's job, through the state machine.
func (se *SuggestionEngine) Review(suggestionID uint, accepted bool, reviewerID uint) (*models.TableStateSuggestion, error) {
	now := time.Now()
	res := se.db.Model(&models.TableStateSuggestion{}).
		Where("id = ? AND reviewed_at IS NULL", suggestionID).
		Updates(map[string]interface{}{
			"reviewed_at": now,
			"reviewed_by": reviewerID,
			"accepted":    accepted,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrNotFound("unreviewed suggestion", suggestionID)
	}

	var suggestion models.TableStateSuggestion
	if err := se.db.First(&suggestion, suggestionID).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("suggestion %d reviewed by %d: accepted=%v",
		suggestionID, reviewerID, accepted)

	return &suggestion, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
