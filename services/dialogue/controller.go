package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	meetingRepo "schedbot/database/repository/meeting"
	sessionRepo "schedbot/database/repository/session"
	"schedbot/models"
	"schedbot/services/calendar"
	"schedbot/services/extractor"
	"schedbot/services/scheduling"

	"go.uber.org/zap"
)

// ReminderScheduler queues a pre-meeting reminder for a booked and
// recorded meeting.
type ReminderScheduler interface {
	ScheduleMeetingReminder(ctx context.Context, meetingID, sessionID string, start time.Time) error
}

// DefaultDialogueService drives the booking conversation: extract,
// merge, decide, search, confirm, book. Turns within one session are
// strictly serialized; independent sessions run in parallel.
type DefaultDialogueService struct {
	Extractor extractor.Extractor
	Sessions  sessionRepo.Store
	Calendar  calendar.CalendarService
	Engine    *scheduling.Engine
	// Meetings is optional; when set, every booked meeting is recorded.
	Meetings meetingRepo.MeetingRecordRepository
	// Reminders is optional; when set, every recorded meeting gets a
	// pre-start reminder queued.
	Reminders ReminderScheduler
	Logger    *zap.Logger
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func (s *DefaultDialogueService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// sessionLock returns the per-session mutex, creating it on first use.
func (s *DefaultDialogueService) sessionLock(sessionID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// ProcessTurn handles one utterance and produces exactly one response.
// Collaborator failures never escape as errors to the transport; they
// are downgraded to user-facing messages here. The returned error is
// reserved for session-store faults.
func (s *DefaultDialogueService) ProcessTurn(ctx context.Context, sessionID, utterance string) (*models.TurnResult, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if state == nil || state.Phase == models.PhaseDone {
		state = models.NewMeetingRequest(sessionID)
	}

	trimmed := strings.TrimSpace(utterance)

	if isReset(trimmed) {
		// Everything collected is discarded; the next turn starts from
		// the greeting's purpose question.
		fresh := models.NewMeetingRequest(sessionID)
		if err := s.Sessions.Put(ctx, sessionID, fresh); err != nil {
			return nil, fmt.Errorf("save session %s: %w", sessionID, err)
		}
		return &models.TurnResult{Message: greeting, State: fresh.Snapshot()}, nil
	}

	if state.Phase == models.PhaseInitial {
		state.Phase = models.PhaseGathering
		if trimmed == "" {
			if err := s.Sessions.Put(ctx, sessionID, state); err != nil {
				return nil, fmt.Errorf("save session %s: %w", sessionID, err)
			}
			return &models.TurnResult{Message: greeting, State: state.Snapshot()}, nil
		}
		// A first utterance with substance is processed as a normal
		// gathering turn so a fully specified request books in one shot.
	}

	switch state.Phase {
	case models.PhaseGathering:
		return s.handleGathering(ctx, state, trimmed)
	case models.PhaseSlotsShown:
		return s.handleSlotsShown(ctx, state, trimmed)
	case models.PhaseConfirming:
		return s.handleConfirming(ctx, state, trimmed)
	default:
		// Unreachable given the phase normalization above.
		s.Logger.Error("unexpected phase", zap.String("sessionID", sessionID), zap.String("phase", string(state.Phase)))
		return &models.TurnResult{Message: formatRecap(state, s.Engine.Loc), State: state.Snapshot()}, nil
	}
}

// handleGathering merges everything the utterance answered in a single
// pass, then either searches the calendar or asks the next question.
// A field already populated is never overwritten by a later extraction.
func (s *DefaultDialogueService) handleGathering(ctx context.Context, state *models.MeetingRequest, utterance string) (*models.TurnResult, error) {
	now := s.now()
	storedSnapshot := state.Snapshot()
	info := s.Extractor.Extract(utterance, now)

	var parts []string
	if info.Purpose != "" && state.Purpose == "" {
		state.Purpose = info.Purpose
		state.MarkAnswered(models.TopicPurpose)
		parts = append(parts, fmt.Sprintf("I understand the purpose is: %s", info.Purpose))
	}
	if info.DurationMinutes > 0 && state.DurationMinutes == 0 {
		state.DurationMinutes = info.DurationMinutes
		state.MarkAnswered(models.TopicDuration)
		parts = append(parts, fmt.Sprintf("Meeting duration set to %d minutes", info.DurationMinutes))
	}
	if info.TimeWindow != nil && state.PreferredWindow == nil {
		state.PreferredWindow = info.TimeWindow
		state.MarkAnswered(models.TopicTime)
		parts = append(parts, fmt.Sprintf("Meeting time set to: %s", info.TimeWindow.Start.In(s.Engine.Loc).Format(slotTimeLayout)))
	}
	if added := state.AddAttendees(info.Attendees); len(added) > 0 {
		state.MarkAnswered(models.TopicAttendees)
		parts = append(parts, fmt.Sprintf("Added attendees: %s", strings.Join(added, ", ")))
	}

	if state.IsComplete() {
		return s.searchAndOffer(ctx, state, storedSnapshot, parts, now)
	}

	if topic, ok := state.NextMissingTopic(); ok {
		parts = append(parts, questionFor(topic))
	} else if len(parts) == 0 {
		parts = append(parts, formatRecap(state, s.Engine.Loc))
	}
	state.UpdatedAt = now
	if err := s.Sessions.Put(ctx, state.SessionID, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
	}
	return &models.TurnResult{Message: strings.Join(parts, "\n\n"), State: state.Snapshot()}, nil
}

// searchAndOffer runs the availability search and moves the dialogue to
// slot selection. Calendar failures leave the stored state untouched so
// the user can simply retry the turn.
func (s *DefaultDialogueService) searchAndOffer(ctx context.Context, state *models.MeetingRequest, storedSnapshot models.MeetingSnapshot, parts []string, now time.Time) (*models.TurnResult, error) {
	window := s.Engine.DefaultWindow(now)
	if state.PreferredWindow != nil {
		window = *state.PreferredWindow
	}

	busy, err := s.Calendar.FreeBusy(ctx, state.SessionID, window, state.Attendees)
	if err != nil {
		return s.calendarFailure("freebusy", state, storedSnapshot, err), nil
	}

	slots := s.Engine.FindSlots(window, state.EffectiveDuration(), busy)
	if len(slots) == 0 {
		// Re-open the time question; everything else stays collected.
		state.ClearTime()
		state.AvailableSlots = nil
		state.UpdatedAt = now
		if err := s.Sessions.Put(ctx, state.SessionID, state); err != nil {
			return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
		}
		return &models.TurnResult{Message: msgNoSlots, State: state.Snapshot()}, nil
	}

	state.AvailableSlots = slots
	state.Phase = models.PhaseSlotsShown
	state.UpdatedAt = now
	if err := s.Sessions.Put(ctx, state.SessionID, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
	}

	parts = append(parts, formatSlotList(slots, s.Engine.Loc))
	return &models.TurnResult{
		Message:   strings.Join(parts, "\n\n"),
		TimeSlots: displaySlots(slots, s.Engine.Loc),
		State:     state.Snapshot(),
	}, nil
}

// handleSlotsShown interprets a numeric reply as a slot choice and
// re-prompts on anything else; an out-of-range number never corrupts
// the state.
func (s *DefaultDialogueService) handleSlotsShown(ctx context.Context, state *models.MeetingRequest, utterance string) (*models.TurnResult, error) {
	n, err := strconv.Atoi(utterance)
	if err != nil {
		return &models.TurnResult{
			Message:   formatSlotList(state.AvailableSlots, s.Engine.Loc),
			TimeSlots: displaySlots(state.AvailableSlots, s.Engine.Loc),
			State:     state.Snapshot(),
		}, nil
	}
	if n < 1 || n > len(state.AvailableSlots) {
		msg := fmt.Sprintf("Option %d isn't on the list.\n\n%s", n, formatSlotList(state.AvailableSlots, s.Engine.Loc))
		return &models.TurnResult{
			Message:   msg,
			TimeSlots: displaySlots(state.AvailableSlots, s.Engine.Loc),
			State:     state.Snapshot(),
		}, nil
	}

	slot := state.AvailableSlots[n-1]
	state.SelectedSlot = &slot
	state.Phase = models.PhaseConfirming
	state.UpdatedAt = s.now()
	if err := s.Sessions.Put(ctx, state.SessionID, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
	}
	return &models.TurnResult{Message: formatConfirmation(state, s.Engine.Loc), State: state.Snapshot()}, nil
}

// handleConfirming books on yes, reopens the time question on no, and
// repeats the summary on anything else.
func (s *DefaultDialogueService) handleConfirming(ctx context.Context, state *models.MeetingRequest, utterance string) (*models.TurnResult, error) {
	if state.SelectedSlot == nil {
		// Should be impossible per the state machine; recover by
		// falling back to slot selection.
		s.Logger.Error("confirming with no selected slot", zap.String("sessionID", state.SessionID))
		state.Phase = models.PhaseSlotsShown
		if err := s.Sessions.Put(ctx, state.SessionID, state); err != nil {
			return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
		}
		return &models.TurnResult{
			Message:   formatSlotList(state.AvailableSlots, s.Engine.Loc),
			TimeSlots: displaySlots(state.AvailableSlots, s.Engine.Loc),
			State:     state.Snapshot(),
		}, nil
	}

	switch {
	case isAffirmative(utterance):
		return s.book(ctx, state)
	case isNegative(utterance):
		state.ClearTime()
		state.AvailableSlots = nil
		state.Phase = models.PhaseGathering
		state.UpdatedAt = s.now()
		if err := s.Sessions.Put(ctx, state.SessionID, state); err != nil {
			return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
		}
		msg := msgPickAnotherTime + "\n\n" + questionFor(models.TopicTime)
		return &models.TurnResult{Message: msg, State: state.Snapshot()}, nil
	default:
		return &models.TurnResult{Message: formatConfirmation(state, s.Engine.Loc), State: state.Snapshot()}, nil
	}
}

func (s *DefaultDialogueService) book(ctx context.Context, state *models.MeetingRequest) (*models.TurnResult, error) {
	storedSnapshot := state.Snapshot()
	input := models.EventInput{
		Summary:         purposeOrDefault(state),
		Start:           *state.SelectedSlot,
		DurationMinutes: state.EffectiveDuration(),
		Attendees:       state.Attendees,
	}

	ref, err := s.Calendar.CreateEvent(ctx, state.SessionID, input)
	if err != nil {
		if errors.Is(err, calendar.ErrSlotConflict) {
			// Back to slot selection; everything already collected stays.
			state.SelectedSlot = nil
			state.Phase = models.PhaseSlotsShown
			state.UpdatedAt = s.now()
			if putErr := s.Sessions.Put(ctx, state.SessionID, state); putErr != nil {
				return nil, fmt.Errorf("save session %s: %w", state.SessionID, putErr)
			}
			msg := msgBookingConflict + "\n\n" + formatSlotList(state.AvailableSlots, s.Engine.Loc)
			return &models.TurnResult{
				Message:   msg,
				TimeSlots: displaySlots(state.AvailableSlots, s.Engine.Loc),
				State:     state.Snapshot(),
			}, nil
		}
		return s.calendarFailure("event insert", state, storedSnapshot, err), nil
	}

	s.recordBooking(ctx, state, input, ref)
	message := formatBookingSuccess(state, ref, s.Engine.Loc)

	// Booking is terminal for this request; the next turn starts fresh.
	fresh := models.NewMeetingRequest(state.SessionID)
	if err := s.Sessions.Put(ctx, state.SessionID, fresh); err != nil {
		return nil, fmt.Errorf("save session %s: %w", state.SessionID, err)
	}
	return &models.TurnResult{Message: message, State: fresh.Snapshot()}, nil
}

// recordBooking writes the historical record; failures are logged, not
// surfaced, because the event itself already exists.
func (s *DefaultDialogueService) recordBooking(ctx context.Context, state *models.MeetingRequest, input models.EventInput, ref *models.EventRef) {
	if s.Meetings == nil {
		return
	}
	record := models.MeetingRecord{
		SessionID:       state.SessionID,
		EventID:         ref.ID,
		EventLink:       ref.Link,
		Purpose:         input.Summary,
		Start:           input.Start,
		DurationMinutes: input.DurationMinutes,
		Attendees:       input.Attendees,
	}
	id, err := s.Meetings.Create(ctx, record)
	if err != nil {
		s.Logger.Warn("failed to store meeting record",
			zap.String("sessionID", state.SessionID),
			zap.String("eventID", ref.ID),
			zap.Error(err))
		return
	}

	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.ScheduleMeetingReminder(ctx, id, state.SessionID, input.Start); err != nil {
		s.Logger.Warn("failed to queue meeting reminder",
			zap.String("meetingID", id),
			zap.Error(err))
	}
}

// calendarFailure maps collaborator errors onto user-facing messages.
// The stored session state is deliberately left untouched: the user
// retries the turn against exactly the state they had before.
func (s *DefaultDialogueService) calendarFailure(op string, state *models.MeetingRequest, storedSnapshot models.MeetingSnapshot, err error) *models.TurnResult {
	if errors.Is(err, calendar.ErrNoCredential) {
		return &models.TurnResult{Message: msgAuthorizeFirst, State: storedSnapshot}
	}
	s.Logger.Error("calendar call failed",
		zap.String("op", op),
		zap.String("sessionID", state.SessionID),
		zap.Error(err))
	return &models.TurnResult{Message: msgCalendarDown, State: storedSnapshot}
}
