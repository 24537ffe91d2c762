package ops

import (
	"context"
	"testing"
	"time"

	"github.com/tradehand/tradehand/internal/db"
	tderrors "github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

func TestTransitionApproveStampsAndSchedules(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, nil)

	timing := "end_of_day"
	got, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID,
		UserID: "owner-1",
		Status: task.StatusApproved,
		Timing: &timing,
		Now:    testNow, // 10:00 UTC
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.Status != task.StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.ApprovedAt == nil || !got.ApprovedAt.Equal(testNow) {
		t.Errorf("approvedAt = %v, want %v", got.ApprovedAt, testNow)
	}
	wantAt := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	if got.ScheduledFor == nil || !got.ScheduledFor.Equal(wantAt) {
		t.Errorf("scheduledFor = %v, want %v", got.ScheduledFor, wantAt)
	}
}

func TestTransitionApproveAppliesOverrides(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, nil)

	phone := "555-9999"
	message := "Edited before sending"
	got, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID:       seeded.ID,
		UserID:       "owner-1",
		Status:       task.StatusApproved,
		ContactPhone: &phone,
		Message:      &message,
		Now:          testNow,
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.ContactPhone == nil || *got.ContactPhone != phone {
		t.Errorf("contactPhone = %v, want override", got.ContactPhone)
	}
	if got.Message != message {
		t.Errorf("message = %q, want override", got.Message)
	}

	stored, err := db.GetTask(context.Background(), database, "owner-1", seeded.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if stored.Message != message {
		t.Errorf("stored message = %q, want override persisted", stored.Message)
	}
}

func TestTransitionApproveResolvesContact(t *testing.T) {
	database := newTestDB(t)
	contact, err := CreateContact(context.Background(), database, CreateContactInput{
		UserID: "owner-1",
		Name:   "Maria Lopez",
		Phone:  strPtr("555-0142"),
		Now:    testNow,
	})
	if err != nil {
		t.Fatalf("CreateContact: %v", err)
	}
	seeded := seedTask(t, database, func(tk *task.Task) {
		tk.ContactPhone = nil
	})

	got, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID:    seeded.ID,
		UserID:    "owner-1",
		Status:    task.StatusApproved,
		ContactID: &contact.ID,
		Now:       testNow,
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.ContactID == nil || *got.ContactID != contact.ID {
		t.Errorf("contactId = %v, want %s", got.ContactID, contact.ID)
	}
	if got.ContactPhone == nil || *got.ContactPhone != "555-0142" {
		t.Errorf("contactPhone = %v, want inherited from contact", got.ContactPhone)
	}

	updated, err := db.GetContact(context.Background(), database, "owner-1", contact.ID)
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if updated.LastContactAt == nil {
		t.Error("approving a task should stamp the contact's last_contact_at")
	}
}

func TestTransitionApproveContactCrudCreatesContact(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, func(tk *task.Task) {
		tk.Type = task.TypeContactCRUD
		tk.DeliveryMethod = task.DeliveryInternal
		tk.ContactName = strPtr("Jordan Vega")
		tk.ContactPhone = strPtr("555-0107")
	})

	got, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID,
		UserID: "owner-1",
		Status: task.StatusApproved,
		Now:    testNow,
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.ContactID == nil {
		t.Fatal("approving a contact_crud task should create and link a contact")
	}

	created, err := db.GetContact(context.Background(), database, "owner-1", *got.ContactID)
	if err != nil {
		t.Fatalf("GetContact: %v", err)
	}
	if created.Name != "Jordan Vega" {
		t.Errorf("contact name = %q, want Jordan Vega", created.Name)
	}
	if created.Phone == nil || *created.Phone != "555-0107" {
		t.Errorf("contact phone = %v, want carried from task", created.Phone)
	}
}

func TestTransitionSkip(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, nil)

	got, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID,
		UserID: "owner-1",
		Status: task.StatusSkipped,
		Now:    testNow,
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if got.Status != task.StatusSkipped {
		t.Errorf("status = %q, want skipped", got.Status)
	}
	if got.ApprovedAt != nil {
		t.Errorf("skip must not stamp approvedAt, got %v", got.ApprovedAt)
	}
}

func TestTransitionOwnershipIsolation(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, nil) // owner-1

	_, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID,
		UserID: "owner-2",
		Status: task.StatusApproved,
		Now:    testNow,
	})
	if !tderrors.Is(err, tderrors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND (no existence leak)", err)
	}

	stored, err := db.GetTask(context.Background(), database, "owner-1", seeded.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if stored.Status != task.StatusPending {
		t.Errorf("status = %q, want pending (unchanged)", stored.Status)
	}
}

func TestTransitionRejectsNonCallerStatuses(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, nil)

	for _, status := range []task.Status{task.StatusSent, task.StatusDelivered, task.StatusFailed, task.StatusArchived, task.StatusDismissed} {
		_, err := Transition(context.Background(), database, nop(), TransitionInput{
			TaskID: seeded.ID,
			UserID: "owner-1",
			Status: status,
			Now:    testNow,
		})
		if !tderrors.Is(err, tderrors.ErrInvalidTransition) {
			t.Errorf("status %q: err = %v, want INVALID_TRANSITION", status, err)
		}
	}

	stored, _ := db.GetTask(context.Background(), database, "owner-1", seeded.ID)
	if stored.Status != task.StatusPending {
		t.Errorf("status = %q, want pending (unchanged)", stored.Status)
	}
}

func TestTransitionApprovedIsTerminalForCallers(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, nil)

	if _, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID, UserID: "owner-1", Status: task.StatusApproved, Now: testNow,
	}); err != nil {
		t.Fatalf("first approval failed: %v", err)
	}

	_, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID, UserID: "owner-1", Status: task.StatusSkipped, Now: testNow,
	})
	if !tderrors.Is(err, tderrors.ErrInvalidTransition) {
		t.Errorf("err = %v, want INVALID_TRANSITION on approved task", err)
	}
}

func TestTransitionContactMethodGate(t *testing.T) {
	database := newTestDB(t)
	seeded := seedTask(t, database, func(tk *task.Task) {
		tk.ContactPhone = nil
		tk.ContactEmail = nil
	})

	_, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: seeded.ID,
		UserID: "owner-1",
		Status: task.StatusApproved,
		Now:    testNow,
	})
	if !tderrors.Is(err, tderrors.ErrValidation) {
		t.Fatalf("err = %v, want VALIDATION (no contact method)", err)
	}

	// Internal tasks have no such gate.
	internal := seedTask(t, database, func(tk *task.Task) {
		tk.Type = task.TypeReminder
		tk.DeliveryMethod = task.DeliveryInternal
		tk.ContactName = nil
		tk.ContactPhone = nil
	})
	if _, err := Transition(context.Background(), database, nop(), TransitionInput{
		TaskID: internal.ID, UserID: "owner-1", Status: task.StatusApproved, Now: testNow,
	}); err != nil {
		t.Errorf("internal task approval failed: %v", err)
	}
}
