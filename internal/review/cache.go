package review

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/tradehand/tradehand/internal/errors"
	"github.com/tradehand/tradehand/internal/task"
)

// cacheFileName is the snapshot file under the cache directory.
const cacheFileName = "tasks_cache.json"

// Cache persists the last known pending-task snapshot so the review flow
// can open on stale-but-real data when the live fetch fails.
type Cache struct {
	path string
}

// NewCache creates a cache rooted at baseDir.
func NewCache(baseDir string) *Cache {
	return &Cache{path: filepath.Join(baseDir, cacheFileName)}
}

// snapshot is the on-disk shape.
type snapshot struct {
	SavedAt time.Time   `json:"savedAt"`
	Tasks   []task.Task `json:"tasks"`
}

// Save replaces the snapshot with the given tasks. The write goes through a
// temp file and rename so a crash never leaves a torn snapshot behind.
func (c *Cache) Save(tasks []task.Task) error {
	data, err := json.MarshalIndent(snapshot{SavedAt: time.Now().UTC(), Tasks: tasks}, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.NewPersistence(err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return errors.NewPersistence(err)
	}
	return nil
}

// Load returns the cached tasks, or NOT_FOUND when no snapshot exists.
func (c *Cache) Load() ([]task.Task, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFound("task cache", c.path)
	}
	if err != nil {
		return nil, errors.NewPersistence(err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewPersistence(err)
	}
	return snap.Tasks, nil
}
