package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingRequestJSONRoundTrip(t *testing.T) {
	slot := time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)
	req := &MeetingRequest{
		SessionID:       "abc",
		Purpose:         "project planning",
		DurationMinutes: 60,
		PreferredWindow: &TimeWindow{Start: slot, End: slot.AddDate(0, 0, 7)},
		Attendees:       []string{"john@example.com"},
		AnsweredTopics:  map[Topic]bool{TopicPurpose: true, TopicTime: true},
		SelectedSlot:    &slot,
		AvailableSlots:  []time.Time{slot, slot.Add(30 * time.Minute)},
		Phase:           PhaseConfirming,
		UpdatedAt:       time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(req)
	require.NoError(t, err)

	var got MeetingRequest
	require.NoError(t, json.Unmarshal(b, &got))

	if d := cmp.Diff(*req, got); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func TestNextMissingTopicPriority(t *testing.T) {
	m := NewMeetingRequest("s")

	topic, ok := m.NextMissingTopic()
	require.True(t, ok)
	assert.Equal(t, TopicPurpose, topic)

	m.Purpose = "standup"
	m.MarkAnswered(TopicPurpose)
	topic, _ = m.NextMissingTopic()
	assert.Equal(t, TopicDuration, topic, "duration is asked before time and attendees")

	m.DurationMinutes = 30
	m.MarkAnswered(TopicDuration)
	topic, _ = m.NextMissingTopic()
	assert.Equal(t, TopicTime, topic)

	start := time.Now().Add(24 * time.Hour)
	m.PreferredWindow = &TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}
	m.MarkAnswered(TopicTime)
	topic, _ = m.NextMissingTopic()
	assert.Equal(t, TopicAttendees, topic)

	m.AddAttendees([]string{"a@b.com"})
	m.MarkAnswered(TopicAttendees)
	_, ok = m.NextMissingTopic()
	assert.False(t, ok)
}

func TestClearTimeReopensQuestion(t *testing.T) {
	m := NewMeetingRequest("s")
	start := time.Now().Add(24 * time.Hour)
	m.PreferredWindow = &TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}
	slot := start.Add(time.Hour)
	m.SelectedSlot = &slot
	m.MarkAnswered(TopicTime)

	m.ClearTime()

	assert.Nil(t, m.PreferredWindow)
	assert.Nil(t, m.SelectedSlot)
	assert.False(t, m.AnsweredTopics[TopicTime], "marker must be cleared with the field")
}

func TestAddAttendeesDeduplicates(t *testing.T) {
	m := NewMeetingRequest("s")

	added := m.AddAttendees([]string{"a@b.com", "c@d.com"})
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, added)

	added = m.AddAttendees([]string{"a@b.com", "e@f.com", ""})
	assert.Equal(t, []string{"e@f.com"}, added)
	assert.Equal(t, []string{"a@b.com", "c@d.com", "e@f.com"}, m.Attendees)
}

func TestEffectiveDurationDefaults(t *testing.T) {
	m := NewMeetingRequest("s")
	assert.Equal(t, DefaultDurationMinutes, m.EffectiveDuration())

	m.DurationMinutes = 45
	assert.Equal(t, 45, m.EffectiveDuration())
}

func TestIsComplete(t *testing.T) {
	m := NewMeetingRequest("s")
	assert.False(t, m.IsComplete())

	m.Purpose = "standup"
	start := time.Now().Add(24 * time.Hour)
	m.PreferredWindow = &TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}
	assert.False(t, m.IsComplete(), "attendees still missing")

	m.AddAttendees([]string{"a@b.com"})
	assert.True(t, m.IsComplete(), "duration is defaultable and never blocks completion")
}

func TestBusyIntervalOverlapsHalfOpen(t *testing.T) {
	busy := BusyInterval{
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}

	// A slot starting exactly at the busy end does not overlap.
	assert.False(t, busy.Overlaps(busy.End, busy.End.Add(30*time.Minute)))
	// A slot ending exactly at the busy start does not overlap.
	assert.False(t, busy.Overlaps(busy.Start.Add(-30*time.Minute), busy.Start))
	// Any interior intersection does.
	assert.True(t, busy.Overlaps(busy.Start.Add(30*time.Minute), busy.End.Add(30*time.Minute)))
	assert.True(t, busy.Overlaps(busy.Start.Add(-10*time.Minute), busy.Start.Add(10*time.Minute)))
}
