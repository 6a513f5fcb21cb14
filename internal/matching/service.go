package matching

import (
	"context"
	"fmt"
	"time"

	"ridematcher/internal/matching/store"
	"ridematcher/internal/models"
	"ridematcher/internal/notify"
	"ridematcher/internal/profile"
	"ridematcher/internal/schedule"
	"ridematcher/pkg/logger"
)

// Service orchestrates one ride search end to end: profile lookup, intent
// resolution, schedule lookup, candidate filtering, store upsert, match
// query and the notification fan-out to previously-matched riders.
type Service struct {
	profiles         profile.Store
	runs             schedule.RunLister
	store            store.CandidateStore
	resolver         *IntentResolver
	engine           *MatchEngine
	dispatcher       notify.Dispatcher
	postWindowMargin time.Duration
	now              func() time.Time
	logger           *logger.Logger
}

// NewService wires the orchestration service.
func NewService(
	profiles profile.Store,
	runs schedule.RunLister,
	candidateStore store.CandidateStore,
	resolver *IntentResolver,
	engine *MatchEngine,
	dispatcher notify.Dispatcher,
	postWindowMargin time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		profiles:         profiles,
		runs:             runs,
		store:            candidateStore,
		resolver:         resolver,
		engine:           engine,
		dispatcher:       dispatcher,
		postWindowMargin: postWindowMargin,
		now:              time.Now,
		logger:           log,
	}
}

// SearchResult is what a completed search returns to the requester. An
// empty Candidates slice is a valid outcome, distinct from any error.
type SearchResult struct {
	Intent     models.UserIntent
	Candidates []models.CandidateThread
	Groups     []models.MatchGroup
}

// Search runs the full flow for one user request. Errors are terminal for
// this request: ErrNoStations before any store interaction, a *ParseError
// for bad time input, ErrLookup when the schedule collaborator fails, and
// ErrStore when the candidate pool is unreachable. Notification failures
// are logged and never fail the search.
func (s *Service) Search(ctx context.Context, userID, rawTime string, direction models.Direction) (*SearchResult, error) {
	prof, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: reading profile: %v", ErrStore, err)
	}
	if !prof.HasStations() {
		return nil, ErrNoStations
	}

	intent, err := s.resolver.Resolve(rawTime, s.now(), direction)
	if err != nil {
		return nil, err
	}

	fromID, toID, fromLabel, toLabel := prof.Route(direction)
	date := intent.WindowStart.Format("2006-01-02")

	runs, err := s.runs.ListRuns(ctx, fromID, toID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookup, err)
	}

	candidates := BuildCandidates(intent, runs)
	s.logger.WithPayload(map[string]interface{}{
		"user_id":    userID,
		"direction":  string(direction),
		"runs":       len(runs),
		"candidates": len(candidates),
	}).Info("Ride search built candidate set")

	if len(candidates) == 0 {
		// Valid empty result; nothing worth matching is stored.
		return &SearchResult{Intent: intent}, nil
	}

	now := s.now()
	set := &models.CandidateSet{
		UserID:        userID,
		Username:      prof.Username,
		FirstName:     prof.FirstName,
		LastName:      prof.LastName,
		FromStopID:    fromID,
		ToStopID:      toID,
		FromStopLabel: fromLabel,
		ToStopLabel:   toLabel,
		Candidates:    candidates,
		Intent:        intent,
		CreatedAt:     now,
		ExpiresAt:     intent.WindowEnd.Add(s.postWindowMargin),
	}

	if err := s.store.Upsert(ctx, set); err != nil {
		return nil, fmt.Errorf("%w: upsert: %v", ErrStore, err)
	}

	groups, err := s.engine.FindMatches(ctx, userID, set)
	if err != nil {
		return nil, fmt.Errorf("%w: match query: %v", ErrStore, err)
	}

	s.notifyExisting(ctx, set, groups)

	return &SearchResult{Intent: intent, Candidates: candidates, Groups: groups}, nil
}

// Cancel removes the user's active search and reports whether one existed.
func (s *Service) Cancel(ctx context.Context, userID string) (bool, error) {
	existed, err := s.store.Delete(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%w: delete: %v", ErrStore, err)
	}
	return existed, nil
}

// ActiveSearches reports the number of live candidate sets in the pool.
func (s *Service) ActiveSearches(ctx context.Context) (int64, error) {
	count, err := s.store.CountActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", ErrStore, err)
	}
	return count, nil
}

// notifyExisting tells every previously-matched rider that the new user
// joined one of their threads. Exactly one notification per recipient per
// triggering search, however many threads they share; delivery failures are
// logged and skipped.
func (s *Service) notifyExisting(ctx context.Context, set *models.CandidateSet, groups []models.MatchGroup) {
	if s.dispatcher == nil || len(groups) == 0 {
		return
	}

	departures := make(map[string]time.Time, len(set.Candidates))
	for _, candidate := range set.Candidates {
		if _, ok := departures[candidate.ThreadID]; !ok {
			departures[candidate.ThreadID] = candidate.DepartureTime
		}
	}

	notified := make(map[string]struct{})
	for _, group := range groups {
		for _, member := range group.Members {
			if _, done := notified[member.UserID]; done {
				continue
			}
			notified[member.UserID] = struct{}{}

			notification := models.MatchNotification{
				RecipientID:   member.UserID,
				ThreadID:      group.ThreadID,
				DepartureTime: departures[group.ThreadID],
				JoinedName:    set.DisplayName(),
				JoinedFrom:    set.FromStopLabel,
				JoinedTo:      set.ToStopLabel,
				CreatedAt:     s.now(),
			}
			if err := s.dispatcher.Dispatch(ctx, notification); err != nil {
				s.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "notify_error"}).WithPayload(map[string]interface{}{
					"recipient": member.UserID,
					"thread_id": group.ThreadID,
				}).Warn("Failed to deliver match notification")
			}
		}
	}
}
