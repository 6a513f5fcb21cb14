package models

import "time"

// CandidateThread is one transit run that satisfies a user's arrival window.
// ThreadID is the opaque identifier of the physical run, shared by every
// stop it serves; two users holding the same ThreadID ride the same vehicle.
type CandidateThread struct {
	ThreadID      string    `bson:"thread_id" json:"thread_id"`
	DepartureTime time.Time `bson:"departure_time" json:"departure_time"`
	ArrivalTime   time.Time `bson:"arrival_time" json:"arrival_time"`
	FromStopID    string    `bson:"from_stop_id" json:"from_stop_id"`
	ToStopID      string    `bson:"to_stop_id" json:"to_stop_id"`
	FromStopLabel string    `bson:"from_stop_label" json:"from_stop_label"`
	ToStopLabel   string    `bson:"to_stop_label" json:"to_stop_label"`
}

// CandidateSet is the per-user search record kept in the candidate pool.
// Exactly one record exists per user at any time: a new search replaces the
// previous record entirely. The record is gone after an explicit cancel or
// once the wall clock passes ExpiresAt.
type CandidateSet struct {
	UserID        string            `bson:"_id" json:"user_id"`
	Username      string            `bson:"username,omitempty" json:"username,omitempty"`
	FirstName     string            `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName      string            `bson:"last_name,omitempty" json:"last_name,omitempty"`
	FromStopID    string            `bson:"from_stop_id" json:"from_stop_id"`
	ToStopID      string            `bson:"to_stop_id" json:"to_stop_id"`
	FromStopLabel string            `bson:"from_stop_label" json:"from_stop_label"`
	ToStopLabel   string            `bson:"to_stop_label" json:"to_stop_label"`
	Candidates    []CandidateThread `bson:"candidates" json:"candidates"`
	Intent        UserIntent        `bson:"intent" json:"intent"`
	CreatedAt     time.Time         `bson:"created_at" json:"created_at"`
	ExpiresAt     time.Time         `bson:"expires_at" json:"expires_at"`
}

// DisplayName picks the friendliest non-empty name for messages.
func (s *CandidateSet) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	if s.Username != "" {
		return s.Username
	}
	return s.UserID
}

// ThreadIDs returns the distinct thread identifiers of the set, in
// first-appearance order.
func (s *CandidateSet) ThreadIDs() []string {
	seen := make(map[string]struct{}, len(s.Candidates))
	ids := make([]string, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		if _, ok := seen[c.ThreadID]; ok {
			continue
		}
		seen[c.ThreadID] = struct{}{}
		ids = append(ids, c.ThreadID)
	}
	return ids
}

// MatchGroup is the set of other users sharing one thread with the caller.
// It is derived at query time and never persisted.
type MatchGroup struct {
	ThreadID string          `json:"thread_id"`
	Members  []*CandidateSet `json:"members"`
}
