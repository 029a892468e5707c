package models

// MeetingSnapshot is the collected-so-far view returned with every
// turn, mirroring what chat front ends render as progress indicators.
type MeetingSnapshot struct {
	Phase        Phase `json:"phase"`
	HasPurpose   bool  `json:"hasPurpose"`
	HasDuration  bool  `json:"hasDuration"`
	HasTime      bool  `json:"hasTime"`
	HasAttendees bool  `json:"hasAttendees"`
	SlotsShown   bool  `json:"slotsShown"`
}

// Snapshot derives the progress view from a request.
func (m *MeetingRequest) Snapshot() MeetingSnapshot {
	return MeetingSnapshot{
		Phase:        m.Phase,
		HasPurpose:   m.Purpose != "",
		HasDuration:  m.DurationMinutes > 0,
		HasTime:      m.hasTime(),
		HasAttendees: len(m.Attendees) > 0,
		SlotsShown:   len(m.AvailableSlots) > 0,
	}
}

// TurnResult is the outcome of processing one user utterance: exactly
// one message and the resulting state snapshot.
type TurnResult struct {
	Message   string          `json:"message"`
	TimeSlots []string        `json:"timeSlots,omitempty"`
	State     MeetingSnapshot `json:"state"`
}
