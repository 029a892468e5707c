package models

import "time"

// Phase identifies where a conversation is in the booking flow.
type Phase string

const (
	PhaseInitial    Phase = "initial"
	PhaseGathering  Phase = "gathering"
	PhaseSlotsShown Phase = "slots_shown"
	PhaseConfirming Phase = "confirming"
	PhaseDone       Phase = "done"
)

// Topic is a unit of information the dialogue must collect.
type Topic string

const (
	TopicPurpose   Topic = "purpose"
	TopicDuration  Topic = "duration"
	TopicTime      Topic = "time"
	TopicAttendees Topic = "attendees"
)

// TopicOrder is the fixed priority in which missing topics are asked.
// Purpose first builds context; attendees last since it is the most
// effortful ask. Reordering this changes the dialogue for every user.
var TopicOrder = []Topic{TopicPurpose, TopicDuration, TopicTime, TopicAttendees}

// DefaultDurationMinutes applies when the user never states a duration.
const DefaultDurationMinutes = 30

// TimeWindow is a half-open [Start, End) range.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MeetingRequest accumulates everything collected over one conversation.
// One instance per session; replaced with a fresh instance after a
// successful booking or an explicit reset.
type MeetingRequest struct {
	SessionID       string         `json:"sessionId"`
	Purpose         string         `json:"purpose,omitempty"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	PreferredWindow *TimeWindow    `json:"preferredWindow,omitempty"`
	Attendees       []string       `json:"attendees,omitempty"`
	AnsweredTopics  map[Topic]bool `json:"answeredTopics,omitempty"`
	SelectedSlot    *time.Time     `json:"selectedSlot,omitempty"`
	AvailableSlots  []time.Time    `json:"availableSlots,omitempty"`
	Phase           Phase          `json:"phase"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// NewMeetingRequest returns a fresh request in the initial phase.
func NewMeetingRequest(sessionID string) *MeetingRequest {
	return &MeetingRequest{
		SessionID:      sessionID,
		AnsweredTopics: make(map[Topic]bool),
		Phase:          PhaseInitial,
		UpdatedAt:      time.Now().UTC(),
	}
}

// MarkAnswered records that the user has answered a topic, so the
// controller never re-asks it while its backing field stays set.
func (m *MeetingRequest) MarkAnswered(t Topic) {
	if m.AnsweredTopics == nil {
		m.AnsweredTopics = make(map[Topic]bool)
	}
	m.AnsweredTopics[t] = true
}

// ClearTime drops the preferred window, the pending slot selection and
// the answered-topic marker together. Clearing the field without the
// marker would leave the controller convinced the question was already
// answered and it would never re-ask.
func (m *MeetingRequest) ClearTime() {
	m.PreferredWindow = nil
	m.SelectedSlot = nil
	delete(m.AnsweredTopics, TopicTime)
}

// HasAttendee reports whether the email is already on the invite list.
func (m *MeetingRequest) HasAttendee(email string) bool {
	for _, a := range m.Attendees {
		if a == email {
			return true
		}
	}
	return false
}

// AddAttendees appends the emails not already present and returns the
// newly added ones.
func (m *MeetingRequest) AddAttendees(emails []string) []string {
	var added []string
	for _, e := range emails {
		if e == "" || m.HasAttendee(e) {
			continue
		}
		m.Attendees = append(m.Attendees, e)
		added = append(added, e)
	}
	return added
}

// EffectiveDuration returns the requested duration, defaulting to 30
// minutes. The default is applied here, at completion time, never
// inside the extractor.
func (m *MeetingRequest) EffectiveDuration() int {
	if m.DurationMinutes > 0 {
		return m.DurationMinutes
	}
	return DefaultDurationMinutes
}

// hasTime reports whether a usable meeting time exists, either as a
// preferred window or an already selected slot.
func (m *MeetingRequest) hasTime() bool {
	return m.PreferredWindow != nil || m.SelectedSlot != nil
}

// IsComplete reports whether enough has been collected to search the
// calendar: purpose, a time anchor and at least one attendee. Duration
// is always satisfiable through the default.
func (m *MeetingRequest) IsComplete() bool {
	return m.Purpose != "" && m.hasTime() && len(m.Attendees) > 0
}

// NextMissingTopic returns the first topic, in fixed priority order,
// that has not been answered and whose backing field is still empty.
// Returns false when nothing is missing.
func (m *MeetingRequest) NextMissingTopic() (Topic, bool) {
	for _, t := range TopicOrder {
		if m.AnsweredTopics[t] {
			continue
		}
		switch t {
		case TopicPurpose:
			if m.Purpose == "" {
				return t, true
			}
		case TopicDuration:
			if m.DurationMinutes == 0 {
				return t, true
			}
		case TopicTime:
			if !m.hasTime() {
				return t, true
			}
		case TopicAttendees:
			if len(m.Attendees) == 0 {
				return t, true
			}
		}
	}
	return "", false
}
