package calendar

import (
	"context"
	"net/http"
	"time"

	"schedbot/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// NewGoogleOAuthConfig returns the OAuth2 config used both by the
// authorize handlers and by per-session token sources.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			gcal.CalendarReadonlyScope,
			gcal.CalendarEventsScope,
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleCalendarService implements CalendarService against the Google
// Calendar API with one OAuth token per session.
type GoogleCalendarService struct {
	OAuth  *oauth2.Config
	Tokens TokenStore
	Loc    *time.Location
	Logger *zap.Logger
}

func NewGoogleCalendarService(oauth *oauth2.Config, tokens TokenStore, loc *time.Location, logger *zap.Logger) *GoogleCalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendarService{OAuth: oauth, Tokens: tokens, Loc: loc, Logger: logger}
}

// service builds an authenticated API client for the session. The
// token source refreshes expired access tokens transparently.
func (g *GoogleCalendarService) service(ctx context.Context, sessionID string) (*gcal.Service, error) {
	token, err := g.Tokens.Get(ctx, sessionID)
	if err != nil {
		return nil, &TransportError{Op: "token lookup", Err: err}
	}
	if token == nil || (!token.Valid() && token.RefreshToken == "") {
		return nil, ErrNoCredential
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(g.OAuth.TokenSource(ctx, token)))
	if err != nil {
		return nil, &TransportError{Op: "client setup", Err: err}
	}
	return svc, nil
}

func (g *GoogleCalendarService) HasValidCredential(ctx context.Context, sessionID string) bool {
	token, err := g.Tokens.Get(ctx, sessionID)
	if err != nil {
		g.Logger.Warn("token lookup failed", zap.String("sessionID", sessionID), zap.Error(err))
		return false
	}
	return token != nil && (token.Valid() || token.RefreshToken != "")
}

// FreeBusy queries the primary calendar together with every attendee
// calendar and returns all busy intervals merged into one collection.
// Duplicates are fine: the overlap test is monotonic regardless.
func (g *GoogleCalendarService) FreeBusy(ctx context.Context, sessionID string, window models.TimeWindow, attendees []string) ([]models.BusyInterval, error) {
	svc, err := g.service(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := []*gcal.FreeBusyRequestItem{{Id: "primary"}}
	for _, email := range attendees {
		items = append(items, &gcal.FreeBusyRequestItem{Id: email})
	}

	resp, err := svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin:  window.Start.Format(time.RFC3339),
		TimeMax:  window.End.Format(time.RFC3339),
		TimeZone: g.Loc.String(),
		Items:    items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, g.mapAPIError("freebusy query", err)
	}

	var busy []models.BusyInterval
	for id, cal := range resp.Calendars {
		for _, period := range cal.Busy {
			start, errS := time.Parse(time.RFC3339, period.Start)
			end, errE := time.Parse(time.RFC3339, period.End)
			if errS != nil || errE != nil {
				g.Logger.Warn("skipping unparseable busy period",
					zap.String("calendar", id),
					zap.String("start", period.Start),
					zap.String("end", period.End))
				continue
			}
			busy = append(busy, models.BusyInterval{Start: start.In(g.Loc), End: end.In(g.Loc)})
		}
	}

	g.Logger.Debug("freebusy query finished",
		zap.String("sessionID", sessionID),
		zap.Int("calendars", len(resp.Calendars)),
		zap.Int("busyIntervals", len(busy)))
	return busy, nil
}

// CreateEvent inserts the meeting on the primary calendar and lets
// Google email the invitations.
func (g *GoogleCalendarService) CreateEvent(ctx context.Context, sessionID string, input models.EventInput) (*models.EventRef, error) {
	svc, err := g.service(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var eventAttendees []*gcal.EventAttendee
	for _, email := range input.Attendees {
		eventAttendees = append(eventAttendees, &gcal.EventAttendee{Email: email})
	}

	event := &gcal.Event{
		Summary:     input.Summary,
		Description: input.Summary,
		Start: &gcal.EventDateTime{
			DateTime: input.Start.In(g.Loc).Format(time.RFC3339),
			TimeZone: g.Loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: input.End().In(g.Loc).Format(time.RFC3339),
			TimeZone: g.Loc.String(),
		},
		Attendees: eventAttendees,
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := svc.Events.Insert("primary", event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return nil, g.mapAPIError("event insert", err)
	}

	g.Logger.Info("calendar event created",
		zap.String("sessionID", sessionID),
		zap.String("eventID", created.Id))
	return &models.EventRef{ID: created.Id, Link: created.HtmlLink}, nil
}

// mapAPIError folds Google API failures into the service's error
// taxonomy so the dialogue layer never sees transport details.
func (g *GoogleCalendarService) mapAPIError(op string, err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrNoCredential
		case http.StatusConflict:
			return ErrSlotConflict
		}
	}
	return &TransportError{Op: op, Err: err}
}
