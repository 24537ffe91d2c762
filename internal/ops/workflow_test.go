package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradehand/tradehand/internal/intent"
	"github.com/tradehand/tradehand/internal/task"
)

// TestCaptureToApprovalWorkflow walks the whole pipeline: one voice note
// becomes two pending tasks, one is approved with review overrides, the
// other skipped, and the final listing reflects both outcomes.
func TestCaptureToApprovalWorkflow(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	client := &fakeIntent{calls: []intent.ToolCall{
		{Name: task.FnSendSMS, Args: map[string]any{
			"contact_name": "Maria Lopez",
			"message":      "Thanks for having us out today!",
			"timing":       "end_of_day",
		}},
		{Name: task.FnCreateRemind, Args: map[string]any{
			"message": "Send the invoice for the kitchen job",
			"timing":  "tomorrow",
		}},
	}}

	submitted, err := Submit(ctx, database, testConfig(), client, nop(), SubmitInput{
		UserID:        "owner-1",
		Transcription: "finished the kitchen job at maria's place",
		Now:           testNow,
	})
	require.NoError(t, err)
	require.Len(t, submitted.Tasks, 2)
	require.Equal(t, task.CaptureCompleted, submitted.Capture.Status)

	listed, err := List(ctx, database, ListInput{UserID: "owner-1", Now: testNow})
	require.NoError(t, err)
	require.Len(t, listed.Active, 2)
	require.Equal(t, 2, listed.Stats.Total)

	var sms, reminder task.Task
	for _, tk := range listed.Active {
		switch tk.Type {
		case task.TypeFollowUpSMS:
			sms = tk
		case task.TypeReminder:
			reminder = tk
		}
	}
	require.NotEmpty(t, sms.ID)
	require.NotEmpty(t, reminder.ID)

	phone := "555-0142"
	approved, err := Transition(ctx, database, nop(), TransitionInput{
		TaskID:       sms.ID,
		UserID:       "owner-1",
		Status:       task.StatusApproved,
		ContactPhone: &phone,
		Now:          testNow,
	})
	require.NoError(t, err)
	require.Equal(t, task.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	skipped, err := Transition(ctx, database, nop(), TransitionInput{
		TaskID: reminder.ID,
		UserID: "owner-1",
		Status: task.StatusSkipped,
		Now:    testNow,
	})
	require.NoError(t, err)
	require.Equal(t, task.StatusSkipped, skipped.Status)

	final, err := List(ctx, database, ListInput{UserID: "owner-1", Now: testNow})
	require.NoError(t, err)
	require.Len(t, final.Active, 1)
	require.Len(t, final.Archived, 1)
	require.Equal(t, 1, final.Stats.CompletedToday)
}
