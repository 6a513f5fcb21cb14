package matching

import (
	"context"
	"sort"
	"testing"
	"time"

	"ridematcher/internal/models"
)

// memStore mimics the Mongo store semantics in memory for tests: one record
// per user, reads filter on expires_at, results ordered by creation time.
type memStore struct {
	now     func() time.Time
	records map[string]*models.CandidateSet
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{now: now, records: make(map[string]*models.CandidateSet)}
}

func (m *memStore) live(set *models.CandidateSet) bool {
	return set.ExpiresAt.After(m.now())
}

func (m *memStore) Upsert(_ context.Context, set *models.CandidateSet) error {
	copied := *set
	m.records[set.UserID] = &copied
	return nil
}

func (m *memStore) Delete(_ context.Context, userID string) (bool, error) {
	_, ok := m.records[userID]
	delete(m.records, userID)
	return ok, nil
}

func (m *memStore) Get(_ context.Context, userID string) (*models.CandidateSet, error) {
	set, ok := m.records[userID]
	if !ok || !m.live(set) {
		return nil, nil
	}
	return set, nil
}

func (m *memStore) FindByThreadIDs(_ context.Context, threadIDs []string, excludeUserID string) ([]*models.CandidateSet, error) {
	wanted := make(map[string]struct{}, len(threadIDs))
	for _, id := range threadIDs {
		wanted[id] = struct{}{}
	}

	var result []*models.CandidateSet
	for _, set := range m.records {
		if set.UserID == excludeUserID || !m.live(set) {
			continue
		}
		for _, candidate := range set.Candidates {
			if _, ok := wanted[candidate.ThreadID]; ok {
				result = append(result, set)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *memStore) CountActive(_ context.Context) (int64, error) {
	var count int64
	for _, set := range m.records {
		if m.live(set) {
			count++
		}
	}
	return count, nil
}

func candSet(userID string, created time.Time, threadIDs ...string) *models.CandidateSet {
	candidates := make([]models.CandidateThread, 0, len(threadIDs))
	for i, id := range threadIDs {
		departure := created.Add(time.Duration(30+10*i) * time.Minute)
		candidates = append(candidates, models.CandidateThread{
			ThreadID:      id,
			DepartureTime: departure,
			ArrivalTime:   departure.Add(40 * time.Minute),
			FromStopID:    "s100",
			ToStopID:      "s200",
			FromStopLabel: "Подольск",
			ToStopLabel:   "Москва",
		})
	}
	return &models.CandidateSet{
		UserID:     userID,
		FirstName:  userID,
		Candidates: candidates,
		CreatedAt:  created,
		ExpiresAt:  created.Add(3 * time.Hour),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFindMatchesSymmetry(t *testing.T) {
	ctx := context.Background()
	base := mskTime(8, 0)
	st := newMemStore(fixedClock(base))
	engine := NewMatchEngine(st, testLogger())

	alice := candSet("alice", base, "T1", "T2", "T3")
	bob := candSet("bob", base.Add(time.Minute), "T2", "T4")
	st.Upsert(ctx, alice)
	st.Upsert(ctx, bob)

	groups, err := engine.FindMatches(ctx, "bob", bob)
	if err != nil {
		t.Fatalf("FindMatches(bob) error = %v", err)
	}
	if len(groups) != 1 || groups[0].ThreadID != "T2" {
		t.Fatalf("FindMatches(bob) = %+v, want one group for T2", groups)
	}
	if len(groups[0].Members) != 1 || groups[0].Members[0].UserID != "alice" {
		t.Errorf("T2 members = %+v, want [alice]", groups[0].Members)
	}

	groups, err = engine.FindMatches(ctx, "alice", alice)
	if err != nil {
		t.Fatalf("FindMatches(alice) error = %v", err)
	}
	if len(groups) != 1 || groups[0].ThreadID != "T2" {
		t.Fatalf("FindMatches(alice) = %+v, want one group for T2", groups)
	}
	if len(groups[0].Members) != 1 || groups[0].Members[0].UserID != "bob" {
		t.Errorf("T2 members = %+v, want [bob]", groups[0].Members)
	}
}

func TestFindMatchesMemberOrderByInsertionTime(t *testing.T) {
	ctx := context.Background()
	base := mskTime(8, 0)
	st := newMemStore(fixedClock(base))
	engine := NewMatchEngine(st, testLogger())

	st.Upsert(ctx, candSet("alice", base, "T1", "T2", "T3"))
	st.Upsert(ctx, candSet("bob", base.Add(time.Minute), "T2", "T4"))
	charlie := candSet("charlie", base.Add(2*time.Minute), "T2", "T6")
	st.Upsert(ctx, charlie)

	groups, err := engine.FindMatches(ctx, "charlie", charlie)
	if err != nil {
		t.Fatalf("FindMatches(charlie) error = %v", err)
	}
	if len(groups) != 1 || groups[0].ThreadID != "T2" {
		t.Fatalf("FindMatches(charlie) = %+v, want one group for T2", groups)
	}
	members := groups[0].Members
	if len(members) != 2 || members[0].UserID != "alice" || members[1].UserID != "bob" {
		t.Errorf("T2 members = [%s, %s], want [alice, bob] oldest first", members[0].UserID, members[1].UserID)
	}
}

func TestFindMatchesGroupOrderFollowsCallerCandidates(t *testing.T) {
	ctx := context.Background()
	base := mskTime(8, 0)
	st := newMemStore(fixedClock(base))
	engine := NewMatchEngine(st, testLogger())

	st.Upsert(ctx, candSet("alice", base, "T2", "T9"))
	caller := candSet("dave", base.Add(time.Minute), "T9", "T2")
	st.Upsert(ctx, caller)

	groups, err := engine.FindMatches(ctx, "dave", caller)
	if err != nil {
		t.Fatalf("FindMatches() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].ThreadID != "T9" || groups[1].ThreadID != "T2" {
		t.Errorf("group order = [%s, %s], want caller order [T9, T2]", groups[0].ThreadID, groups[1].ThreadID)
	}
}

func TestFindMatchesReplacementAndCancellation(t *testing.T) {
	ctx := context.Background()
	base := mskTime(8, 0)
	st := newMemStore(fixedClock(base))
	engine := NewMatchEngine(st, testLogger())

	alice := candSet("alice", base, "T1", "T2", "T3")
	st.Upsert(ctx, alice)
	st.Upsert(ctx, candSet("bob", base.Add(time.Minute), "T2", "T4"))

	// Bob's second search replaces the first entirely; T2 is gone.
	st.Upsert(ctx, candSet("bob", base.Add(2*time.Minute), "T5"))
	groups, err := engine.FindMatches(ctx, "alice", alice)
	if err != nil {
		t.Fatalf("FindMatches() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("after replacement got %+v, want no groups", groups)
	}

	// A fresh Bob search on T2 matches again, then cancellation removes him.
	st.Upsert(ctx, candSet("bob", base.Add(3*time.Minute), "T2"))
	groups, _ = engine.FindMatches(ctx, "alice", alice)
	if len(groups) != 1 {
		t.Fatalf("after re-search got %d groups, want 1", len(groups))
	}

	existed, err := st.Delete(ctx, "bob")
	if err != nil || !existed {
		t.Fatalf("Delete(bob) = %v, %v", existed, err)
	}
	groups, _ = engine.FindMatches(ctx, "alice", alice)
	if len(groups) != 0 {
		t.Errorf("after cancellation got %+v, want no groups", groups)
	}
}

func TestFindMatchesExcludesExpiredRecords(t *testing.T) {
	ctx := context.Background()
	base := mskTime(8, 0)
	now := base
	st := newMemStore(func() time.Time { return now })
	engine := NewMatchEngine(st, testLogger())

	alice := candSet("alice", base, "T2")
	st.Upsert(ctx, alice)
	caller := candSet("bob", base.Add(time.Minute), "T2")
	st.Upsert(ctx, caller)

	// Advance past Alice's expiry; her record is physically present but
	// must behave as absent.
	now = alice.ExpiresAt.Add(time.Minute)
	caller.ExpiresAt = now.Add(time.Hour)
	st.Upsert(ctx, caller)

	groups, err := engine.FindMatches(ctx, "bob", caller)
	if err != nil {
		t.Fatalf("FindMatches() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expired record produced groups: %+v", groups)
	}

	if got, _ := st.Get(ctx, "alice"); got != nil {
		t.Errorf("Get(alice) = %+v, want nil for expired record", got)
	}
}

func TestFindMatchesDeduplicatesThreadEntries(t *testing.T) {
	ctx := context.Background()
	base := mskTime(8, 0)
	st := newMemStore(fixedClock(base))
	engine := NewMatchEngine(st, testLogger())

	// Alice's set lists T2 twice (two runs of the same physical thread
	// cannot happen upstream, but the engine must not double-report).
	st.Upsert(ctx, candSet("alice", base, "T2", "T2"))
	caller := candSet("bob", base.Add(time.Minute), "T2")
	st.Upsert(ctx, caller)

	groups, err := engine.FindMatches(ctx, "bob", caller)
	if err != nil {
		t.Fatalf("FindMatches() error = %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 1 {
		t.Errorf("got %+v, want one group with one member", groups)
	}
}
