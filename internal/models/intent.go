package models

import "time"

// Direction distinguishes the two travel directions of a configured route.
type Direction string

const (
	DirectionForward Direction = "forward" // base stop -> destination stop
	DirectionReverse Direction = "reverse" // destination stop -> base stop
)

// UserIntent is the canonical arrival window resolved from raw user input.
// Invariant: WindowStart <= WindowEnd, both anchored to Timezone.
type UserIntent struct {
	Direction        Direction `bson:"direction" json:"direction"`
	WindowStart      time.Time `bson:"arrival_window_start" json:"arrival_window_start"`
	WindowEnd        time.Time `bson:"arrival_window_end" json:"arrival_window_end"`
	Timezone         string    `bson:"timezone" json:"timezone"`
	ToleranceMinutes int       `bson:"tolerance_minutes" json:"tolerance_minutes"`
}

// Tolerance returns the tolerance as a duration.
func (i UserIntent) Tolerance() time.Duration {
	return time.Duration(i.ToleranceMinutes) * time.Minute
}
