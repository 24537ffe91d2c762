package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/tradehand/tradehand/internal/db"
)

// ArchiveExpiredInput contains parameters for the ArchiveExpired operation.
// An empty UserID sweeps every owner.
type ArchiveExpiredInput struct {
	UserID string
	Now    time.Time // zero means wall-clock now
}

// ArchiveExpiredOutput contains the result of the ArchiveExpired operation.
type ArchiveExpiredOutput struct {
	ArchivedCount int `json:"archivedCount"`
}

// ArchiveExpired moves pending and approved tasks past their expiry to
// archived. This is the administrative transition to archived; it runs from
// the CLI, not from review.
func ArchiveExpired(ctx context.Context, database *sql.DB, input ArchiveExpiredInput) (*ArchiveExpiredOutput, error) {
	n, err := db.ArchiveExpired(ctx, database, input.UserID, nowOrDefault(input.Now))
	if err != nil {
		return nil, err
	}
	return &ArchiveExpiredOutput{ArchivedCount: n}, nil
}
