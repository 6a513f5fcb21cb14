package matching

import (
	"context"
	"sort"

	"ridematcher/internal/matching/store"
	"ridematcher/internal/models"
	"ridematcher/pkg/logger"
)

// MatchEngine finds the other users sharing a transit run with the caller.
// It is stateless; all data flows through the store.
type MatchEngine struct {
	store  store.CandidateStore
	logger *logger.Logger
}

// NewMatchEngine creates a MatchEngine over the given store.
func NewMatchEngine(candidateStore store.CandidateStore, log *logger.Logger) *MatchEngine {
	return &MatchEngine{store: candidateStore, logger: log}
}

// FindMatches groups every other user sharing at least one thread with the
// caller's candidate set. Groups come back in first-appearance order of the
// caller's candidates; members within a group are ordered oldest search
// first. Store lookups are one indexed query over all of the caller's
// thread identifiers.
func (e *MatchEngine) FindMatches(ctx context.Context, userID string, set *models.CandidateSet) ([]models.MatchGroup, error) {
	threadIDs := set.ThreadIDs()
	if len(threadIDs) == 0 {
		return nil, nil
	}

	others, err := e.store.FindByThreadIDs(ctx, threadIDs, userID)
	if err != nil {
		return nil, err
	}

	callerThreads := make(map[string]struct{}, len(threadIDs))
	for _, id := range threadIDs {
		callerThreads[id] = struct{}{}
	}

	// Group by thread, one entry per (thread, user) even if the other
	// user's set lists the same thread twice.
	byThread := make(map[string][]*models.CandidateSet)
	for _, other := range others {
		if other.UserID == userID {
			// The store excludes the caller, but a concurrent replace can
			// still echo the caller's own record back.
			continue
		}
		seen := make(map[string]struct{}, len(other.Candidates))
		for _, candidate := range other.Candidates {
			if _, shared := callerThreads[candidate.ThreadID]; !shared {
				continue
			}
			if _, dup := seen[candidate.ThreadID]; dup {
				continue
			}
			seen[candidate.ThreadID] = struct{}{}
			byThread[candidate.ThreadID] = append(byThread[candidate.ThreadID], other)
		}
	}

	groups := make([]models.MatchGroup, 0, len(byThread))
	for _, threadID := range threadIDs {
		members := byThread[threadID]
		if len(members) == 0 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})
		groups = append(groups, models.MatchGroup{ThreadID: threadID, Members: members})
	}
	return groups, nil
}
