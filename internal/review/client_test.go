package review

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/task"
)

// flakyTaskServer serves the given tasks until fail is flipped, then
// answers 500 to every request.
func flakyTaskServer(tasks []task.Task, fail *atomic.Bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "INTERNAL", "message": "boom"},
			})
			return
		}
		json.NewEncoder(w).Encode(listResponse{Active: tasks})
	}))
}

func TestFetchPendingServesCacheOnFailure(t *testing.T) {
	tasks := []task.Task{
		pendingTask("t-1", task.TypeFollowUpSMS, "Maria Lopez"),
		pendingTask("t-2", task.TypeFollowUpSMS, "Dan"),
		pendingTask("t-3", task.TypeReminder, ""),
		pendingTask("t-4", task.TypeCampaign, ""),
	}
	var fail atomic.Bool
	srv := flakyTaskServer(tasks, &fail)
	defer srv.Close()

	client := NewClient(srv.URL, "tok", t.TempDir(), zap.NewNop())
	ctx := context.Background()

	got, err := client.FetchPending(ctx)
	if err != nil {
		t.Fatalf("FetchPending: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("fetched %d tasks, want 4", len(got))
	}

	fail.Store(true)
	got, err = client.FetchPending(ctx)
	if err != nil {
		t.Fatalf("FetchPending with server down: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("cache fallback returned %d tasks, want the prior 4", len(got))
	}
	if got[0].ID != "t-1" || got[3].ID != "t-4" {
		t.Errorf("cache fallback returned %+v", got)
	}
}

func TestFetchPendingFailsWithoutCache(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := flakyTaskServer(nil, &fail)
	defer srv.Close()

	client := NewClient(srv.URL, "tok", t.TempDir(), zap.NewNop())
	if _, err := client.FetchPending(context.Background()); err == nil {
		t.Fatal("expected error when both fetch and cache are empty")
	}
}

func TestFetchPendingFiltersNonPending(t *testing.T) {
	approved := pendingTask("t-2", task.TypeReminder, "")
	approved.Status = task.StatusApproved
	tasks := []task.Task{pendingTask("t-1", task.TypeReminder, ""), approved}

	var fail atomic.Bool
	srv := flakyTaskServer(tasks, &fail)
	defer srv.Close()

	client := NewClient(srv.URL, "tok", t.TempDir(), zap.NewNop())
	got, err := client.FetchPending(context.Background())
	if err != nil {
		t.Fatalf("FetchPending: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t-1" {
		t.Errorf("got %+v, want only the pending task", got)
	}
}

func TestExecuteApprove(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("missing bearer token on %s", r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&gotBody)
			updated := pendingTask("t-1", task.TypeFollowUpSMS, "Maria Lopez")
			updated.Status = task.StatusApproved
			json.NewEncoder(w).Encode(updated)
			return
		}
		json.NewEncoder(w).Encode(listResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", t.TempDir(), zap.NewNop())
	phone := "555-0199"
	timing := string(task.TimingEndOfDay)
	updated, err := client.Execute(context.Background(), Action{
		Kind:         ActionApprove,
		TaskID:       "t-1",
		ContactPhone: &phone,
		Timing:       &timing,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if updated.Status != task.StatusApproved {
		t.Errorf("status = %q, want approved", updated.Status)
	}
	if gotBody["status"] != "approved" || gotBody["contactPhone"] != phone || gotBody["timing"] != timing {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestExecuteApproveCreatesNewContact(t *testing.T) {
	var created map[string]any
	var patched map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/contacts":
			json.NewDecoder(r.Body).Decode(&created)
			json.NewEncoder(w).Encode(map[string]any{"id": "c-new", "name": created["name"]})
		case r.Method == http.MethodPatch:
			json.NewDecoder(r.Body).Decode(&patched)
			updated := pendingTask("t-1", task.TypeFollowUpSMS, "Jordan Vega")
			updated.Status = task.StatusApproved
			json.NewEncoder(w).Encode(updated)
		default:
			json.NewEncoder(w).Encode(listResponse{})
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", t.TempDir(), zap.NewNop())
	name := "Jordan Vega"
	phone := "555-0107"
	_, err := client.Execute(context.Background(), Action{
		Kind:         ActionApprove,
		TaskID:       "t-1",
		CreateNew:    true,
		ContactName:  &name,
		ContactPhone: &phone,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if created["name"] != name || created["phone"] != phone {
		t.Errorf("contact create body = %v", created)
	}
	if patched["contactId"] != "c-new" {
		t.Errorf("approval body should link the new contact, got %v", patched)
	}
}

func TestExecuteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "NOT_FOUND", "message": "task not found: t-9"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", t.TempDir(), zap.NewNop())
	_, err := client.Execute(context.Background(), Action{Kind: ActionSkip, TaskID: "t-9"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "NOT_FOUND: task not found: t-9" {
		t.Errorf("err = %v", err)
	}
}
