package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"fitia-backend/internal/database"
	"fitia-backend/internal/llm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndDailyUsage(t *testing.T) {
	store := newTestStore(t)

	err := store.Record(GenerationMetric{
		AgentName:        "PlanGenerator",
		Model:            "gemini-2.0-flash",
		PromptTokens:     120,
		CompletionTokens: 480,
		LatencyMS:        900,
		Timestamp:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	usage, err := store.GetDailyUsage(7)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("Expected 1 day of usage, got %d", len(usage))
	}
	if usage[0].TotalPrompt != 120 || usage[0].TotalCompletion != 480 || usage[0].TotalExecution != 1 {
		t.Errorf("Usage = %+v", usage[0])
	}
}

func TestRecordMetaSkipsZeroUsage(t *testing.T) {
	store := newTestStore(t)

	// Template builds consume no tokens; nothing should be written.
	if err := store.RecordMeta(llm.AgentMeta{AgentName: "PlanTemplate"}); err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}

	usage, err := store.GetDailyUsage(7)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 0 {
		t.Errorf("Expected no usage rows, got %d", len(usage))
	}
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)

	old := GenerationMetric{
		AgentName:    "ChatAssistant",
		PromptTokens: 10,
		Timestamp:    time.Now().UTC().AddDate(0, 0, -60),
	}
	recent := GenerationMetric{
		AgentName:    "ChatAssistant",
		PromptTokens: 10,
		Timestamp:    time.Now().UTC(),
	}
	if err := store.Record(old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(recent); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	deleted, err := store.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Cleanup deleted %d rows, want 1", deleted)
	}
}
