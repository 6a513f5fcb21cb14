package matching

import (
	"errors"
	"fmt"
)

// The four terminal failure kinds of a search. None is retried inside this
// package; callers decide whether a retry makes sense.
var (
	// ErrNoStations means the user has no base/destination stop on file.
	// Surfaced before any store or lookup interaction.
	ErrNoStations = errors.New("no stations configured")

	// ErrLookup means the schedule collaborator failed or timed out.
	ErrLookup = errors.New("schedule lookup failed")

	// ErrStore means the candidate store was unreachable or a write failed.
	ErrStore = errors.New("candidate store failed")
)

// ParseError reports raw time input that could not be turned into a window.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse time input %q: %s", e.Input, e.Reason)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
