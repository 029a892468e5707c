package models

import "time"

// BusyInterval is a half-open [Start, End) range during which a
// calendar reports an attendee unavailable.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps applies the standard half-open overlap test against a
// candidate slot spanning [start, start+duration).
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return start.Before(b.End) && end.After(b.Start)
}

// EventInput carries everything the calendar backend needs to insert
// a meeting.
type EventInput struct {
	Summary         string    `json:"summary"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"durationMinutes"`
	Attendees       []string  `json:"attendees"`
}

// End returns the event's exclusive end instant.
func (e EventInput) End() time.Time {
	return e.Start.Add(time.Duration(e.DurationMinutes) * time.Minute)
}

// EventRef identifies a created calendar event.
type EventRef struct {
	ID   string `json:"id"`
	Link string `json:"link,omitempty"`
}

// MeetingRecord is the historical document stored after a successful
// booking.
type MeetingRecord struct {
	ID              string    `bson:"id" json:"id"`
	SessionID       string    `bson:"sessionId" json:"sessionId"`
	EventID         string    `bson:"eventId" json:"eventId"`
	EventLink       string    `bson:"eventLink,omitempty" json:"eventLink,omitempty"`
	Purpose         string    `bson:"purpose" json:"purpose"`
	Start           time.Time `bson:"start" json:"start"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	Attendees       []string  `bson:"attendees" json:"attendees"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
