package ops

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/config"
	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/intent"
	"github.com/tradehand/tradehand/internal/task"
)

var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// fakeIntent returns canned tool calls without a network round trip.
type fakeIntent struct {
	calls []intent.ToolCall
	err   error
}

func (f *fakeIntent) Propose(_ context.Context, _, _ string) ([]intent.ToolCall, error) {
	return f.calls, f.err
}

func smsCall(name, message string) intent.ToolCall {
	return intent.ToolCall{
		Name: task.FnSendSMS,
		Args: map[string]any{"contact_name": name, "message": message, "timing": "tomorrow"},
	}
}

func seedCapture(t *testing.T, database *sql.DB, userID, id string) {
	t.Helper()
	c := task.Capture{
		ID:            id,
		UserID:        userID,
		Transcription: "finished the kitchen job, send maria a thank you",
		Status:        task.CaptureCompleted,
		CapturedAt:    testNow,
	}
	if err := db.InsertCapture(context.Background(), database, &c); err != nil {
		t.Fatalf("seed capture: %v", err)
	}
}

// seedTask inserts a pending task plus the capture it derives from. The
// task readers join captures, so a task without its capture is invisible.
func seedTask(t *testing.T, database *sql.DB, mutate func(*task.Task)) *task.Task {
	t.Helper()
	id, err := newID()
	if err != nil {
		t.Fatalf("newID: %v", err)
	}
	scheduled := testNow.Add(time.Hour)
	tk := &task.Task{
		ID:             id,
		UserID:         "owner-1",
		CaptureID:      "cap-" + id,
		Type:           task.TypeFollowUpSMS,
		Status:         task.StatusPending,
		ContactName:    strPtr("Maria Lopez"),
		ContactPhone:   strPtr("555-0142"),
		Message:        "Thanks again for the kitchen job!",
		DeliveryMethod: task.DeliverySMS,
		ScheduledFor:   &scheduled,
		CreatedAt:      testNow,
		ExpiresAt:      testNow.Add(7 * 24 * time.Hour),
	}
	if mutate != nil {
		mutate(tk)
	}
	seedCapture(t, database, tk.UserID, tk.CaptureID)
	if err := db.InsertTask(context.Background(), database, tk); err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return tk
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func nop() *zap.Logger { return zap.NewNop() }
