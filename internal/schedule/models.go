package schedule

import "time"

// Run is one scheduled vehicle run between two stops, already normalized
// from the raw API payload. ThreadID identifies the physical run and is
// shared by every stop the run serves.
type Run struct {
	ThreadID  string    `json:"thread_id"`
	Departure time.Time `json:"departure"`
	Arrival   time.Time `json:"arrival"`
	FromID    string    `json:"from_id"`
	ToID      string    `json:"to_id"`
	FromLabel string    `json:"from_label"`
	ToLabel   string    `json:"to_label"`
}

// Wire types of the schedule API search response. Only the fields the
// matcher needs are decoded.

type apiStop struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type apiThread struct {
	UID    string `json:"uid"`
	Number string `json:"number"`
	Title  string `json:"title"`
}

type apiSegment struct {
	Thread    *apiThread `json:"thread"`
	Departure string     `json:"departure"`
	Arrival   string     `json:"arrival"`
	From      apiStop    `json:"from"`
	To        apiStop    `json:"to"`
}

type apiSearchResponse struct {
	Segments []apiSegment `json:"segments"`
}
