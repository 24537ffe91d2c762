package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// DismissInput contains parameters for the Dismiss operation.
type DismissInput struct {
	TaskID string
	UserID string
	Now    time.Time // zero means wall-clock now
}

// Dismiss moves a pending task to dismissed. This is the administrative
// pending→dismissed transition; like ArchiveExpired it runs from the CLI,
// not from review, and takes no overrides.
func Dismiss(ctx context.Context, database *sql.DB, input DismissInput) (*task.Task, error) {
	if input.TaskID == "" || input.UserID == "" {
		return nil, errors.NewValidation("task id and user id are required")
	}
	now := nowOrDefault(input.Now)

	t, err := db.GetTask(ctx, database, input.UserID, input.TaskID)
	if err != nil {
		return nil, err
	}
	if t.Status != task.StatusPending {
		return nil, errors.NewInvalidTransition(string(t.Status), string(task.StatusDismissed))
	}
	prev := t.Status

	t.Status = task.StatusDismissed
	t.DismissedAt = &now
	if err := db.SaveTransition(ctx, database, t, prev); err != nil {
		return nil, err
	}
	return t, nil
}
