package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	UserID string
	Now    time.Time // zero means wall-clock now
}

// Stats summarizes the owner's task situation for the review screen.
type Stats struct {
	Total          int `json:"total"`
	NeedsInfo      int `json:"needsInfo"`
	CompletedToday int `json:"completedToday"`
}

// ListOutput contains the result of the List operation. Active holds
// pending and approved tasks; Archived holds everything terminal.
type ListOutput struct {
	Active   []task.Task `json:"active"`
	Archived []task.Task `json:"archived"`
	Stats    Stats       `json:"stats"`
}

// List returns the owner's tasks split into active and archived sets, with
// summary stats.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewValidation("user id is required")
	}
	now := nowOrDefault(input.Now)

	all, err := db.ListTasks(ctx, database, input.UserID)
	if err != nil {
		return nil, err
	}

	out := &ListOutput{
		Active:   make([]task.Task, 0),
		Archived: make([]task.Task, 0),
	}
	for _, t := range all {
		if task.Active(t.Status) {
			out.Active = append(out.Active, t)
		} else {
			out.Archived = append(out.Archived, t)
		}
	}

	out.Stats = Stats{
		Total:          len(all),
		NeedsInfo:      countNeedsInfo(out.Active),
		CompletedToday: countCompletedToday(all, now),
	}
	return out, nil
}

// countNeedsInfo counts pending contact-facing tasks with no resolved
// contact and no contact method on record.
func countNeedsInfo(active []task.Task) int {
	n := 0
	for _, t := range active {
		if t.Status != task.StatusPending || !task.ContactFacing(t.Type) {
			continue
		}
		if t.ContactID == nil && t.ContactPhone == nil && t.ContactEmail == nil {
			n++
		}
	}
	return n
}

// countCompletedToday counts tasks approved on the current UTC day.
func countCompletedToday(all []task.Task, now time.Time) int {
	y, m, d := now.UTC().Date()
	n := 0
	for _, t := range all {
		if t.ApprovedAt == nil {
			continue
		}
		ay, am, ad := t.ApprovedAt.UTC().Date()
		if ay == y && am == m && ad == d {
			n++
		}
	}
	return n
}
