package store

import (
	"context"

	"ridematcher/internal/models"
)

// CandidateStore is the ephemeral candidate pool. One record per user;
// Upsert is a full replace, never a merge. Implementations must treat
// records past their expiry as absent on every read, whether or not the
// background reaper has physically removed them yet.
type CandidateStore interface {
	// Upsert atomically replaces the record for set.UserID.
	Upsert(ctx context.Context, set *models.CandidateSet) error

	// Delete removes the user's record and reports whether one existed.
	Delete(ctx context.Context, userID string) (bool, error)

	// Get returns the user's current record, or nil if absent or expired.
	Get(ctx context.Context, userID string) (*models.CandidateSet, error)

	// FindByThreadIDs returns every live record other than excludeUserID's
	// whose candidate list contains at least one of the given thread
	// identifiers, ordered by creation time ascending.
	FindByThreadIDs(ctx context.Context, threadIDs []string, excludeUserID string) ([]*models.CandidateSet, error)

	// CountActive returns the number of live records.
	CountActive(ctx context.Context) (int64, error)
}
