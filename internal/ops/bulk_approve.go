package ops

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// MaxBulkApproveItems caps the ids accepted in one bulk approval.
const MaxBulkApproveItems = 100

// BulkApproveInput contains parameters for the BulkApprove operation.
type BulkApproveInput struct {
	UserID  string
	TaskIDs []string
	Now     time.Time // zero means wall-clock now
}

// BulkApproveOutput contains the result of the BulkApprove operation.
type BulkApproveOutput struct {
	ApprovedCount int      `json:"approvedCount"`
	FailedIDs     []string `json:"failedIds"`
}

// BulkApprove applies pending→approved to every id that belongs to the
// caller and is currently pending. Best-effort per id, non-transactional:
// failures are reported alongside the successes, never instead of them.
func BulkApprove(ctx context.Context, database *sql.DB, logger *zap.Logger, input BulkApproveInput) (*BulkApproveOutput, error) {
	if input.UserID == "" {
		return nil, errors.NewValidation("user id is required")
	}
	if len(input.TaskIDs) == 0 {
		return nil, errors.NewValidation("at least one task id is required")
	}
	if len(input.TaskIDs) > MaxBulkApproveItems {
		return nil, errors.NewValidation("too many task ids in one request")
	}

	out := &BulkApproveOutput{FailedIDs: make([]string, 0)}
	seen := make(map[string]bool, len(input.TaskIDs))
	for _, id := range input.TaskIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		_, err := Transition(ctx, database, logger, TransitionInput{
			TaskID: id,
			UserID: input.UserID,
			Status: task.StatusApproved,
			Now:    input.Now,
		})
		if err != nil {
			out.FailedIDs = append(out.FailedIDs, id)
			logger.Info("bulk approve: id failed",
				zap.String("user_id", input.UserID),
				zap.String("task_id", id),
				zap.Error(err))
			continue
		}
		out.ApprovedCount++
	}
	return out, nil
}
