package dialogue

import (
	"context"
	"testing"
	"time"

	sessionRepo "schedbot/database/repository/session"
	"schedbot/models"
	"schedbot/services/calendar"
	"schedbot/services/extractor"
	"schedbot/services/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Monday, June 2 2025, 08:00 local.
var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

type fakeCalendar struct {
	busy        []models.BusyInterval
	freeBusyErr error
	createErr   error
	created     []models.EventInput
	ref         models.EventRef
}

func (f *fakeCalendar) FreeBusy(ctx context.Context, sessionID string, window models.TimeWindow, attendees []string) ([]models.BusyInterval, error) {
	if f.freeBusyErr != nil {
		return nil, f.freeBusyErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, sessionID string, input models.EventInput) (*models.EventRef, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, input)
	ref := f.ref
	if ref.ID == "" {
		ref.ID = "evt-1"
	}
	return &ref, nil
}

func (f *fakeCalendar) HasValidCredential(ctx context.Context, sessionID string) bool {
	return true
}

type fakeMeetings struct {
	created []models.MeetingRecord
}

func (f *fakeMeetings) Create(ctx context.Context, record models.MeetingRecord) (string, error) {
	f.created = append(f.created, record)
	return "rec-1", nil
}

func (f *fakeMeetings) GetByID(ctx context.Context, id string) (*models.MeetingRecord, error) {
	return nil, nil
}

func (f *fakeMeetings) GetBySessionID(ctx context.Context, sessionID string) ([]models.MeetingRecord, error) {
	return nil, nil
}

func (f *fakeMeetings) DeleteByID(ctx context.Context, id string) error {
	return nil
}

type scheduledReminder struct {
	meetingID string
	sessionID string
	start     time.Time
}

type fakeReminders struct {
	scheduled []scheduledReminder
}

func (f *fakeReminders) ScheduleMeetingReminder(ctx context.Context, meetingID, sessionID string, start time.Time) error {
	f.scheduled = append(f.scheduled, scheduledReminder{meetingID, sessionID, start})
	return nil
}

func newTestService(cal calendar.CalendarService) (*DefaultDialogueService, *sessionRepo.MemoryStore) {
	store := sessionRepo.NewMemoryStore()
	svc := &DefaultDialogueService{
		Extractor: extractor.NewRegexExtractor(time.UTC),
		Sessions:  store,
		Calendar:  cal,
		Engine:    scheduling.NewEngine(time.UTC, 9, 17, zap.NewNop()),
		Logger:    zap.NewNop(),
		Clock:     func() time.Time { return testNow },
	}
	return svc, store
}

const fullUtterance = "I need to schedule a meeting for project planning with john@example.com tomorrow at 2pm for 1 hour"

func TestProcessTurnGreetsOnEmptyFirstMessage(t *testing.T) {
	svc, _ := newTestService(&fakeCalendar{})

	res, err := svc.ProcessTurn(context.Background(), "s1", "")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "What's the purpose of your meeting?")
	assert.Equal(t, models.PhaseGathering, res.State.Phase)
}

func TestProcessTurnFullySpecifiedFirstMessage(t *testing.T) {
	svc, _ := newTestService(&fakeCalendar{})

	res, err := svc.ProcessTurn(context.Background(), "s1", fullUtterance)
	require.NoError(t, err)

	assert.Equal(t, models.PhaseSlotsShown, res.State.Phase)
	require.NotEmpty(t, res.TimeSlots)
	assert.Equal(t, "Tuesday, June 3 at 2:00 PM", res.TimeSlots[0])
	assert.Contains(t, res.Message, "I understand the purpose is: project planning")
	assert.Contains(t, res.Message, "Option 1")
}

func TestProcessTurnAsksNextQuestionInOrder(t *testing.T) {
	svc, _ := newTestService(&fakeCalendar{})

	res, err := svc.ProcessTurn(context.Background(), "s1", "I want to set up a meeting about hiring plans")
	require.NoError(t, err)

	// Purpose landed, duration is the next topic by priority.
	assert.Contains(t, res.Message, "How long would you like the meeting to be?")
	assert.True(t, res.State.HasPurpose)
	assert.False(t, res.State.HasDuration)
}

func TestProcessTurnNeverOverwritesCollectedFields(t *testing.T) {
	svc, store := newTestService(&fakeCalendar{})

	state := models.NewMeetingRequest("s1")
	state.Phase = models.PhaseGathering
	state.Purpose = "budget review"
	state.MarkAnswered(models.TopicPurpose)
	require.NoError(t, store.Put(context.Background(), "s1", state))

	_, err := svc.ProcessTurn(context.Background(), "s1", "actually let's talk about marketing instead")
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "budget review", stored.Purpose)
}

func TestProcessTurnInvalidSlotChoice(t *testing.T) {
	svc, store := newTestService(&fakeCalendar{})

	_, err := svc.ProcessTurn(context.Background(), "s1", fullUtterance)
	require.NoError(t, err)

	res, err := svc.ProcessTurn(context.Background(), "s1", "99")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "Option 99 isn't on the list")
	assert.Equal(t, models.PhaseSlotsShown, res.State.Phase)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, stored.SelectedSlot, "a rejected choice must not select anything")
	assert.NotEmpty(t, stored.AvailableSlots, "the offer list survives a bad choice")
}

func TestProcessTurnNonNumericSlotReplyRepeatsList(t *testing.T) {
	svc, _ := newTestService(&fakeCalendar{})

	_, err := svc.ProcessTurn(context.Background(), "s1", fullUtterance)
	require.NoError(t, err)

	res, err := svc.ProcessTurn(context.Background(), "s1", "the second one I guess")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "Option 1")
	assert.Equal(t, models.PhaseSlotsShown, res.State.Phase)
}

func TestProcessTurnBooksOnConfirmation(t *testing.T) {
	cal := &fakeCalendar{ref: models.EventRef{ID: "evt-9", Link: "https://calendar.example/evt-9"}}
	svc, store := newTestService(cal)
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, "s1", fullUtterance)
	require.NoError(t, err)

	res, err := svc.ProcessTurn(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseConfirming, res.State.Phase)
	assert.Contains(t, res.Message, "Shall I go ahead?")

	res, err = svc.ProcessTurn(ctx, "s1", "yes")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "Meeting scheduled successfully")
	assert.Contains(t, res.Message, "https://calendar.example/evt-9")
	require.Len(t, cal.created, 1)
	assert.Equal(t, "project planning", cal.created[0].Summary)
	assert.Equal(t, 60, cal.created[0].DurationMinutes)
	assert.Equal(t, []string{"john@example.com"}, cal.created[0].Attendees)

	// Booking is terminal; the session starts over.
	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInitial, stored.Phase)
	assert.Empty(t, stored.Purpose)
}

func TestProcessTurnBookingRecordsAndQueuesReminder(t *testing.T) {
	svc, _ := newTestService(&fakeCalendar{})
	meetings := &fakeMeetings{}
	reminders := &fakeReminders{}
	svc.Meetings = meetings
	svc.Reminders = reminders
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, "s1", fullUtterance)
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, "s1", "1")
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, "s1", "yes")
	require.NoError(t, err)

	require.Len(t, meetings.created, 1)
	assert.Equal(t, "project planning", meetings.created[0].Purpose)

	require.Len(t, reminders.scheduled, 1)
	got := reminders.scheduled[0]
	assert.Equal(t, "rec-1", got.meetingID)
	assert.Equal(t, "s1", got.sessionID)
	assert.True(t, got.start.Equal(time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)), "got %v", got.start)
}

func TestProcessTurnDeclineReopensTimeQuestion(t *testing.T) {
	svc, store := newTestService(&fakeCalendar{})
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, "s1", fullUtterance)
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, "s1", "1")
	require.NoError(t, err)

	res, err := svc.ProcessTurn(ctx, "s1", "no")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "When would you like to schedule this meeting?")
	assert.Equal(t, models.PhaseGathering, res.State.Phase)

	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, stored.SelectedSlot)
	assert.Nil(t, stored.PreferredWindow)
	assert.Equal(t, "project planning", stored.Purpose, "everything except the time survives")
	assert.Equal(t, []string{"john@example.com"}, stored.Attendees)
}

func TestProcessTurnBookingConflictReturnsToSlots(t *testing.T) {
	cal := &fakeCalendar{createErr: calendar.ErrSlotConflict}
	svc, store := newTestService(cal)
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, "s1", fullUtterance)
	require.NoError(t, err)
	_, err = svc.ProcessTurn(ctx, "s1", "1")
	require.NoError(t, err)

	res, err := svc.ProcessTurn(ctx, "s1", "yes")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "that slot was just taken")
	assert.Equal(t, models.PhaseSlotsShown, res.State.Phase)
	assert.NotEmpty(t, res.TimeSlots)

	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, stored.SelectedSlot)
}

func TestProcessTurnMissingCredential(t *testing.T) {
	cal := &fakeCalendar{freeBusyErr: calendar.ErrNoCredential}
	svc, store := newTestService(cal)
	ctx := context.Background()

	state := models.NewMeetingRequest("s1")
	state.Phase = models.PhaseGathering
	state.Purpose = "project planning"
	state.MarkAnswered(models.TopicPurpose)
	require.NoError(t, store.Put(ctx, "s1", state))

	res, err := svc.ProcessTurn(ctx, "s1", "tomorrow at 2pm with john@example.com")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "authorize access to your calendar")

	// The stored state is untouched so the retry replays cleanly.
	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Attendees)
	assert.Nil(t, stored.PreferredWindow)
	assert.Equal(t, models.PhaseGathering, stored.Phase)
}

func TestProcessTurnTransportFailure(t *testing.T) {
	cal := &fakeCalendar{freeBusyErr: &calendar.TransportError{Op: "freebusy query", Err: context.DeadlineExceeded}}
	svc, _ := newTestService(cal)

	res, err := svc.ProcessTurn(context.Background(), "s1", fullUtterance)
	require.NoError(t, err)

	assert.Contains(t, res.Message, "trouble reaching the calendar")
}

func TestProcessTurnNoSlotsReopensTimeQuestion(t *testing.T) {
	// One blocker covering the whole requested week.
	start := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	cal := &fakeCalendar{busy: []models.BusyInterval{{Start: start, End: start.AddDate(0, 0, 8)}}}
	svc, store := newTestService(cal)

	res, err := svc.ProcessTurn(context.Background(), "s1", fullUtterance)
	require.NoError(t, err)

	assert.Contains(t, res.Message, "couldn't find any open time slots")
	assert.Equal(t, models.PhaseGathering, res.State.Phase)

	stored, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, stored.PreferredWindow, "the time question reopens")
	assert.Equal(t, "project planning", stored.Purpose)
}

func TestProcessTurnReset(t *testing.T) {
	svc, store := newTestService(&fakeCalendar{})
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, "s1", fullUtterance)
	require.NoError(t, err)

	res, err := svc.ProcessTurn(ctx, "s1", "start over")
	require.NoError(t, err)

	assert.Contains(t, res.Message, "What's the purpose of your meeting?")
	assert.Equal(t, models.PhaseInitial, res.State.Phase)

	stored, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInitial, stored.Phase)
	assert.Empty(t, stored.Purpose)
	assert.Empty(t, stored.Attendees)
}

func TestProcessTurnSerializesTurnsPerSession(t *testing.T) {
	svc, _ := newTestService(&fakeCalendar{})
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := svc.ProcessTurn(ctx, "s1", "I want a meeting about roadmap planning")
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
