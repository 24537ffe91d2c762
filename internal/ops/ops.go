// Package ops implements the operations behind every surface (HTTP, MCP,
// CLI): capture submission, task listing, lifecycle transitions, bulk
// approval, and the expiry sweep. Each operation validates its input first
// and is scoped to one owner.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newID generates ids for captures and tasks. Package-level so tests can
// force collisions to exercise per-draft persistence failures.
var newID = generateULID

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// nowOrDefault lets callers pin the reference time; the zero value means
// wall-clock now.
func nowOrDefault(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
