package audit

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opskitchen/resto-ops/models"
	"github.com/opskitchen/resto-ops/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

func newTestSink(t *testing.T) (*Sink, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.AuditLogEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSink(db), db
}

func TestRecordPersists(t *testing.T) {
	sink, db := newTestSink(t)

	sink.Record(models.AuditLogEntry{
		ActorID:      3,
		Role:         "MANAGER",
		Action:       models.AuditUpdate,
		Source:       models.SourceManual,
		TargetEntity: "table",
		TargetID:     12,
	})

	var entries []models.AuditLogEntry
	assert.NoError(t, db.Find(&entries).Error)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, uint(3), entries[0].ActorID)
		assert.Equal(t, "table", entries[0].TargetEntity)
	}
}

func TestRecordFailureIsSwallowedAndSurfaced(t *testing.T) {
	sink, db := newTestSink(t)

	// Force the write to fail.
	assert.NoError(t, db.Migrator().DropTable(&models.AuditLogEntry{}))

	sink.Record(models.AuditLogEntry{
		ActorID:      1,
		Role:         "ADMIN",
		Action:       models.AuditCreate,
		TargetEntity: "menu_item",
		TargetID:     5,
	})

	select {
	case err := <-sink.Errors():
		assert.Error(t, err)
	default:
		t.Fatal("expected audit failure on the errors channel")
	}
}

func TestRecordMutationDiffsChangedFields(t *testing.T) {
	sink, db := newTestSink(t)

	before := models.Table{ID: 1, TableNumber: "T-1", CurrentState: models.TablePaying}
	after := models.Table{ID: 1, TableNumber: "T-1", CurrentState: models.TableCleaning}

	sink.RecordMutation(8, "SERVER", models.SourceManual, models.AuditUpdate,
		"table", 1, before, after, "")

	var entry models.AuditLogEntry
	assert.NoError(t, db.First(&entry).Error)
	if assert.Contains(t, entry.Changes, "current_state") {
		assert.Equal(t, "PAYING", entry.Changes["current_state"].Old)
		assert.Equal(t, "CLEANING", entry.Changes["current_state"].New)
	}
	assert.NotContains(t, entry.Changes, "table_number")
}

func TestRecordMutationNilSnapshots(t *testing.T) {
	sink, db := newTestSink(t)

	sink.RecordMutation(8, "KITCHEN", models.SourceManual, models.AuditCreate,
		"eighty_six_event", 2, nil, models.EightySixEvent{ID: 2}, "INGREDIENT_UNAVAILABLE")

	var entry models.AuditLogEntry
	assert.NoError(t, db.First(&entry).Error)
	assert.Nil(t, entry.Changes)
	assert.Equal(t, "INGREDIENT_UNAVAILABLE", entry.ReasonCode)
}

func TestFindFilters(t *testing.T) {
	sink, db := newTestSink(t)

	base := time.Now().Add(-time.Hour)
	for i, entity := range []string{"table", "table", "menu_item"} {
		entry := models.AuditLogEntry{
			ActorID:      uint(i + 1),
			Role:         "ADMIN",
			Action:       models.AuditUpdate,
			TargetEntity: entity,
			TargetID:     uint(i + 1),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		assert.NoError(t, db.Create(&entry).Error)
	}

	tables, err := sink.Find(Query{TargetEntity: "table"})
	assert.NoError(t, err)
	if assert.Len(t, tables, 2) {
		// Newest first.
		assert.True(t, !tables[0].CreatedAt.Before(tables[1].CreatedAt))
	}

	byActor, err := sink.Find(Query{ActorID: 3})
	assert.NoError(t, err)
	if assert.Len(t, byActor, 1) {
		assert.Equal(t, "menu_item", byActor[0].TargetEntity)
	}

	since := base.Add(90 * time.Second)
	recent, err := sink.Find(Query{Since: &since})
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
}
