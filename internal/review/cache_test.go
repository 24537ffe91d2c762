package review

import (
	"testing"

	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(t.TempDir())

	saved := []task.Task{
		pendingTask("t-1", task.TypeFollowUpSMS, "Maria Lopez"),
		pendingTask("t-2", task.TypeReminder, ""),
	}
	if err := cache.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d tasks, want 2", len(loaded))
	}
	if loaded[0].ID != "t-1" || loaded[0].Type != task.TypeFollowUpSMS {
		t.Errorf("loaded[0] = %+v", loaded[0])
	}
	if loaded[0].ContactName == nil || *loaded[0].ContactName != "Maria Lopez" {
		t.Errorf("contact name lost: %+v", loaded[0].ContactName)
	}
}

func TestCacheLoadMissing(t *testing.T) {
	cache := NewCache(t.TempDir())
	if _, err := cache.Load(); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("missing snapshot: %v, want NOT_FOUND", err)
	}
}

func TestCacheSaveOverwrites(t *testing.T) {
	cache := NewCache(t.TempDir())

	if err := cache.Save([]task.Task{pendingTask("t-1", task.TypeReminder, "")}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cache.Save(nil); err != nil {
		t.Fatalf("Save empty: %v", err)
	}

	loaded, err := cache.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d tasks, want 0 after overwrite", len(loaded))
	}
}
