package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/db"
	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// TransitionInput contains parameters for the Transition operation.
// Override fields are applied only on approval; nil leaves the stored value.
type TransitionInput struct {
	TaskID string
	UserID string
	Status task.Status

	ContactID    *string
	ContactPhone *string
	ContactEmail *string
	Message      *string
	Timing       *string

	Now time.Time // zero means wall-clock now
}

// Transition applies a caller-initiated lifecycle transition. Only
// pending→approved and pending→skipped are accepted; ownership mismatches
// surface as NotFound so other owners' tasks are never confirmed to exist.
func Transition(ctx context.Context, database *sql.DB, logger *zap.Logger, input TransitionInput) (*task.Task, error) {
	if input.TaskID == "" || input.UserID == "" {
		return nil, errors.NewValidation("task id and user id are required")
	}
	if input.Status != task.StatusApproved && input.Status != task.StatusSkipped {
		return nil, errors.NewInvalidTransition("pending", string(input.Status))
	}
	now := nowOrDefault(input.Now)

	t, err := db.GetTask(ctx, database, input.UserID, input.TaskID)
	if err != nil {
		return nil, err
	}
	if !task.CallerTransitionAllowed(t.Status, input.Status) {
		return nil, errors.NewInvalidTransition(string(t.Status), string(input.Status))
	}
	prev := t.Status

	if input.Status == task.StatusSkipped {
		t.Status = task.StatusSkipped
		if err := db.SaveTransition(ctx, database, t, prev); err != nil {
			return nil, err
		}
		return t, nil
	}

	// Approval: fold in the review flow's resolved contact, edited
	// message, and chosen timing before committing.
	if input.ContactID != nil && *input.ContactID != "" {
		contact, err := db.GetContact(ctx, database, input.UserID, *input.ContactID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.NewValidation("contact not found: " + *input.ContactID)
			}
			return nil, err
		}
		t.ContactID = &contact.ID
		t.ContactName = &contact.Name
		if t.ContactPhone == nil {
			t.ContactPhone = contact.Phone
		}
		if t.ContactEmail == nil {
			t.ContactEmail = contact.Email
		}
	}
	if input.ContactPhone != nil && strings.TrimSpace(*input.ContactPhone) != "" {
		t.ContactPhone = input.ContactPhone
	}
	if input.ContactEmail != nil && strings.TrimSpace(*input.ContactEmail) != "" {
		t.ContactEmail = input.ContactEmail
	}
	if input.Message != nil && strings.TrimSpace(*input.Message) != "" {
		t.Message = *input.Message
	}
	if input.Timing != nil {
		tm, ok := task.ParseTiming(*input.Timing)
		if !ok {
			return nil, errors.NewValidation("unknown timing: " + *input.Timing)
		}
		at := task.ResolveTiming(tm, now)
		t.ScheduledFor = &at
	}
	if t.ScheduledFor == nil {
		// Approval always leaves a concrete send time behind.
		t.ScheduledFor = &now
	}

	// Approving a contact_crud task is what actually adds the contact to
	// the directory.
	if t.Type == task.TypeContactCRUD && t.ContactID == nil && t.ContactName != nil {
		contact, err := CreateContact(ctx, database, CreateContactInput{
			UserID: input.UserID,
			Name:   *t.ContactName,
			Phone:  t.ContactPhone,
			Email:  t.ContactEmail,
			Now:    now,
		})
		if err != nil {
			return nil, err
		}
		t.ContactID = &contact.ID
	}

	// Hard gate from the review flow's contact-details step: a
	// contact-facing task cannot be approved without a way to reach the
	// contact.
	if task.ContactFacing(t.Type) && t.ContactPhone == nil && t.ContactEmail == nil {
		return nil, errors.NewValidation("a phone number or email is required before approval")
	}

	t.Status = task.StatusApproved
	t.ApprovedAt = &now
	if err := db.SaveTransition(ctx, database, t, prev); err != nil {
		return nil, err
	}

	if t.ContactID != nil {
		if err := db.TouchContact(ctx, database, input.UserID, *t.ContactID, now); err != nil {
			logger.Warn("failed to stamp contact last_contact_at",
				zap.String("user_id", input.UserID),
				zap.String("contact_id", *t.ContactID),
				zap.Error(err))
		}
	}
	return t, nil
}
