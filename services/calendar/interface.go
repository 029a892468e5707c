package calendar

import (
	"context"

	"schedbot/models"
)

// CalendarService is the only boundary the dialogue engine has to the
// calendar backend: busy lookups, event creation, credential checks.
type CalendarService interface {
	// FreeBusy returns the merged busy intervals of the session owner's
	// primary calendar plus every attendee calendar, for the window.
	FreeBusy(ctx context.Context, sessionID string, window models.TimeWindow, attendees []string) ([]models.BusyInterval, error)

	// CreateEvent inserts the meeting and sends invitations.
	CreateEvent(ctx context.Context, sessionID string, input models.EventInput) (*models.EventRef, error)

	// HasValidCredential reports whether the session can reach its
	// calendar at all.
	HasValidCredential(ctx context.Context, sessionID string) bool
}
