package matching

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ridematcher/internal/models"
)

var (
	timeToken       = regexp.MustCompile(`^(\d{1,2})(?::(\d{1,2}))?$`)
	rangeSeparators = regexp.MustCompile(`\s*(?:-|–|—|до|to)\s*`)
)

// IntentResolver turns raw textual time input into a canonical arrival
// window. It is pure: all state comes in through the arguments, so the
// calendar arithmetic can be tested against fixed clocks.
type IntentResolver struct {
	Location  *time.Location // timezone every resolved window is anchored to
	Tolerance time.Duration  // half-width applied to single-time input
	Grace     time.Duration  // how far past a window end may be and still count as today
}

// NewIntentResolver builds a resolver with the given configuration.
func NewIntentResolver(loc *time.Location, tolerance, grace time.Duration) *IntentResolver {
	return &IntentResolver{Location: loc, Tolerance: tolerance, Grace: grace}
}

// Resolve parses raw into an arrival window relative to now.
//
// Accepted forms: a single time ("08:45", "8", "845", "08.45") which expands
// to ±Tolerance around the given clock value, or a range ("08:30-09:00",
// separators -, –, —, "до", "to") which is taken literally with zero
// tolerance. An inverted range rolls the end over to the next day.
//
// A window whose end lies more than Grace in the past is moved forward a
// calendar day at a time until it is current again; a window that ended
// within the grace period stays on today, so a rider whose train just left
// can still be matched.
func (r *IntentResolver) Resolve(raw string, now time.Time, direction models.Direction) (models.UserIntent, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return models.UserIntent{}, &ParseError{Input: raw, Reason: "empty input"}
	}

	now = now.In(r.Location)
	parts := rangeSeparators.Split(cleaned, -1)

	var start, end time.Time
	tolerance := time.Duration(0)

	if len(parts) >= 2 {
		startClock, ok := parseClock(parts[0])
		if !ok {
			return models.UserIntent{}, &ParseError{Input: raw, Reason: "invalid range start"}
		}
		endClock, ok := parseClock(parts[1])
		if !ok {
			return models.UserIntent{}, &ParseError{Input: raw, Reason: "invalid range end"}
		}
		start = r.onDate(now, startClock)
		end = r.onDate(now, endClock)
		if !end.After(start) {
			// "23:30-00:15" means the range crosses midnight.
			end = end.AddDate(0, 0, 1)
		}
	} else {
		centerClock, ok := parseClock(parts[0])
		if !ok {
			return models.UserIntent{}, &ParseError{Input: raw, Reason: "invalid time"}
		}
		center := r.onDate(now, centerClock)
		start = center.Add(-r.Tolerance)
		if dayStart := r.onDate(now, clock{}); start.Before(dayStart) {
			start = dayStart
		}
		end = center.Add(r.Tolerance)
		tolerance = r.Tolerance
	}

	// A window entirely more than Grace in the past belongs to tomorrow.
	graceThreshold := now.Add(-r.Grace)
	for end.Before(graceThreshold) {
		start = start.AddDate(0, 0, 1)
		end = end.AddDate(0, 0, 1)
	}

	if start.After(end) {
		return models.UserIntent{}, &ParseError{Input: raw, Reason: "window start after end"}
	}

	return models.UserIntent{
		Direction:        direction,
		WindowStart:      start,
		WindowEnd:        end,
		Timezone:         r.Location.String(),
		ToleranceMinutes: int(tolerance / time.Minute),
	}, nil
}

type clock struct {
	hour, minute int
}

// onDate anchors a clock value to now's calendar day in the resolver's zone.
func (r *IntentResolver) onDate(now time.Time, c clock) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), c.hour, c.minute, 0, 0, r.Location)
}

// parseClock decomposes one time-of-day token. Users type "8", "08:45",
// "8.45", "8,45" and bare digit runs like "845" or "0845"; all are accepted.
func parseClock(part string) (clock, bool) {
	candidate := strings.TrimSpace(part)
	if candidate == "" {
		return clock{}, false
	}
	candidate = strings.ReplaceAll(candidate, " ", "")
	candidate = strings.ReplaceAll(candidate, ",", ":")
	candidate = strings.ReplaceAll(candidate, ".", ":")

	var hours, minutes int
	if value, err := strconv.Atoi(candidate); err == nil {
		if value >= 2400 {
			return clock{}, false
		}
		if value >= 100 {
			hours = value / 100
			minutes = value % 100
		} else {
			hours = value
		}
	} else {
		m := timeToken.FindStringSubmatch(candidate)
		if m == nil {
			return clock{}, false
		}
		hours, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return clock{}, false
	}
	return clock{hour: hours, minute: minutes}, true
}
