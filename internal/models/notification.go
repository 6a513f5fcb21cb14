package models

import "time"

// MatchNotification is one message to one previously-matched user, telling
// them a new rider has joined a thread they are already on. Dispatchers
// deliver these best-effort; a failed delivery never fails the triggering
// search.
type MatchNotification struct {
	RecipientID   string    `json:"recipient_id"`
	ThreadID      string    `json:"thread_id"`
	DepartureTime time.Time `json:"departure_time"`
	JoinedName    string    `json:"joined_name"`
	JoinedFrom    string    `json:"joined_from"`
	JoinedTo      string    `json:"joined_to"`
	CreatedAt     time.Time `json:"created_at"`
}
