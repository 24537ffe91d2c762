package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/config"
	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/intent"
	"github.com/tradehand/tradehand/internal/task"
)

// SubmitInput contains parameters for the Submit operation.
type SubmitInput struct {
	UserID          string
	Transcription   string
	DurationSeconds float64
	Now             time.Time // zero means wall-clock now
}

// SubmitOutput contains the result of the Submit operation.
type SubmitOutput struct {
	Capture task.Capture `json:"capture"`
	Tasks   []task.Task  `json:"tasksGenerated"`
}

// Submit ingests one transcription: it stores the capture, asks the model
// for function calls, and converts each call into a persisted pending task.
// Calls are processed sequentially and independently; a bad call or a failed
// write skips that draft and the batch continues. The capture never stays
// `processing`: it ends `completed` when at least one task was stored and
// `failed` otherwise.
func Submit(ctx context.Context, database *sql.DB, cfg *config.Config, client intent.Client, logger *zap.Logger, input SubmitInput) (*SubmitOutput, error) {
	if strings.TrimSpace(input.Transcription) == "" {
		return nil, errors.NewValidation("transcription is required")
	}
	if input.UserID == "" {
		return nil, errors.NewValidation("user id is required")
	}
	now := nowOrDefault(input.Now)

	captureID, err := newID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	capture := task.Capture{
		ID:              captureID,
		UserID:          input.UserID,
		Transcription:   input.Transcription,
		DurationSeconds: input.DurationSeconds,
		Status:          task.CaptureProcessing,
		CapturedAt:      now,
	}
	if err := db.InsertCapture(ctx, database, &capture); err != nil {
		return nil, err
	}

	// The model call is bounded by the configured timeout regardless of
	// how patient the caller's context is.
	aiCtx, cancel := context.WithTimeout(ctx, cfg.AITimeout())
	calls, aiErr := client.Propose(aiCtx, input.Transcription, cfg.BusinessContext)
	cancel()
	if aiErr != nil {
		failCapture(ctx, database, logger, &capture)
		logger.Warn("model call failed",
			zap.String("user_id", input.UserID),
			zap.String("capture_id", captureID),
			zap.Error(aiErr))
		return nil, errors.NewAIUnavailable(aiErr)
	}
	if len(calls) == 0 {
		failCapture(ctx, database, logger, &capture)
		return nil, errors.NewNoActionableIntent(captureID)
	}

	tasks := make([]task.Task, 0, len(calls))
	persistFailures := 0
	for _, call := range calls {
		draft, err := task.DraftFromCall(call.Name, call.Args, now)
		if err != nil {
			logger.Warn("skipping unusable function call",
				zap.String("user_id", input.UserID),
				zap.String("capture_id", captureID),
				zap.String("function", call.Name),
				zap.Error(err))
			continue
		}

		taskID, err := newID()
		if err != nil {
			logger.Error("id generation failed, skipping draft",
				zap.String("capture_id", captureID), zap.Error(err))
			persistFailures++
			continue
		}
		t := task.Task{
			ID:                    taskID,
			UserID:                input.UserID,
			CaptureID:             captureID,
			Type:                  draft.Type,
			Status:                task.StatusPending,
			ContactName:           draft.ContactName,
			ContactPhone:          draft.ContactPhone,
			ContactEmail:          draft.ContactEmail,
			Message:               draft.Message,
			DeliveryMethod:        draft.DeliveryMethod,
			OriginalTranscription: input.Transcription,
			ScheduledFor:          &draft.ScheduledFor,
			CreatedAt:             now,
			ExpiresAt:             now.Add(cfg.TaskExpiry()),
		}
		if err := db.InsertTask(ctx, database, &t); err != nil {
			persistFailures++
			logger.Error("draft failed to persist, continuing batch",
				zap.String("user_id", input.UserID),
				zap.String("capture_id", captureID),
				zap.String("task_type", string(draft.Type)),
				zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if len(tasks) == 0 {
		failCapture(ctx, database, logger, &capture)
		if persistFailures > 0 {
			return nil, errors.NewPersistence(nil)
		}
		return nil, errors.NewNoActionableIntent(captureID)
	}

	capture.Status = task.CaptureCompleted
	if err := db.SetCaptureStatus(ctx, database, input.UserID, captureID, task.CaptureCompleted); err != nil {
		// Tasks are already stored; surface the capture inconsistency
		// in the log but return the generated work.
		logger.Error("failed to mark capture completed",
			zap.String("capture_id", captureID), zap.Error(err))
	}

	return &SubmitOutput{Capture: capture, Tasks: tasks}, nil
}

func failCapture(ctx context.Context, database *sql.DB, logger *zap.Logger, c *task.Capture) {
	c.Status = task.CaptureFailed
	if err := db.SetCaptureStatus(ctx, database, c.UserID, c.ID, task.CaptureFailed); err != nil {
		logger.Error("failed to mark capture failed",
			zap.String("capture_id", c.ID), zap.Error(err))
	}
}
