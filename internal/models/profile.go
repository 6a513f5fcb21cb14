package models

import "time"

// UserProfile is the persisted per-user configuration: the two stops of the
// commute route plus display fields. A search cannot run until both stops
// are set.
type UserProfile struct {
	UserID           string    `bson:"_id" json:"user_id"`
	Username         string    `bson:"username,omitempty" json:"username,omitempty"`
	FirstName        string    `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName         string    `bson:"last_name,omitempty" json:"last_name,omitempty"`
	BaseStopID       string    `bson:"base_stop_id" json:"base_stop_id"`
	BaseStopLabel    string    `bson:"base_stop_label" json:"base_stop_label"`
	DestinationID    string    `bson:"destination_id" json:"destination_id"`
	DestinationLabel string    `bson:"destination_label" json:"destination_label"`
	IsAdmin          bool      `bson:"is_admin" json:"is_admin"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// HasStations reports whether both route endpoints are configured.
func (p *UserProfile) HasStations() bool {
	return p != nil && p.BaseStopID != "" && p.DestinationID != ""
}

// Route returns the from/to stop pair for the given direction.
func (p *UserProfile) Route(direction Direction) (fromID, toID, fromLabel, toLabel string) {
	if direction == DirectionReverse {
		return p.DestinationID, p.BaseStopID, p.DestinationLabel, p.BaseStopLabel
	}
	return p.BaseStopID, p.DestinationID, p.BaseStopLabel, p.DestinationLabel
}
