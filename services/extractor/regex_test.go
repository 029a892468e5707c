package extractor

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday, June 2 2025, 10:00 local.
var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func TestExtractFullUtterance(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	got := e.Extract("I need to schedule a meeting for project planning with john@example.com tomorrow at 2pm for 1 hour", testNow)

	assert.Equal(t, "project planning", got.Purpose)
	assert.Equal(t, 60, got.DurationMinutes)
	assert.Equal(t, []string{"john@example.com"}, got.Attendees)

	require.NotNil(t, got.TimeWindow)
	wantStart := time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(wantStart), "got %v", got.TimeWindow.Start)
	assert.True(t, got.TimeWindow.End.Equal(wantStart.AddDate(0, 0, 7)))
}

func TestExtractOneShotBookingPhrase(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	got := e.Extract("Schedule a meeting about budget review with alice@co.com tomorrow at 2pm for 45 minutes", testNow)

	assert.Equal(t, "budget review", got.Purpose)
	assert.Equal(t, 45, got.DurationMinutes)
	assert.Equal(t, []string{"alice@co.com"}, got.Attendees)
	require.NotNil(t, got.TimeWindow)
	assert.True(t, got.TimeWindow.Start.Equal(time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)))
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewRegexExtractor(time.UTC)
	text := "book a call about quarterly budget with a@b.com next friday at 10:30am"

	first := e.Extract(text, testNow)
	second := e.Extract(text, testNow)

	if d := cmp.Diff(first, second); d != "" {
		t.Errorf("same input, different output (-first +second):\n%s", d)
	}
}

func TestExtractDuration(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	tests := []struct {
		text string
		want int
	}{
		{"let's meet for 45 minutes", 45},
		{"a 2 hour review", 120},
		{"block 90 mins please", 90},
		{"two hours should do", 120},
		{"just half an hour", 30},
		{"a quarter of an hour", 15},
		{"no duration here", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, e.Extract(tc.text, testNow).DurationMinutes, "text: %q", tc.text)
	}
}

func TestExtractEmails(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	got := e.Extract("invite John.Doe@Example.COM and jane+x@corp.io", testNow)
	assert.Equal(t, []string{"john.doe@example.com", "jane+x@corp.io"}, got.Attendees)

	assert.Nil(t, e.Extract("no addresses here", testNow).Attendees)
}

func TestExtractPurposeStripsFiller(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	got := e.Extract("Let's discuss about the budget review with the team", testNow)
	assert.Equal(t, "budget review", got.Purpose)
}

func TestExtractTimeRejectsExplicitPast(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	// 9am today is already gone at 10:00; an explicit "today" is a
	// rejection rather than a silent reinterpretation.
	got := e.Extract("today at 9am", testNow)
	assert.Nil(t, got.TimeWindow)
}

func TestExtractTimeRollsImpliedTodayForward(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	// A bare clock time with no day lands on the next occurrence.
	got := e.Extract("meet at 9am", testNow)
	require.NotNil(t, got.TimeWindow)
	want := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)
}

func TestExtractTimeWeekday(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	// testNow is a Monday, so "friday" resolves four days out.
	got := e.Extract("sometime friday afternoon", testNow)
	require.NotNil(t, got.TimeWindow)
	want := time.Date(2025, 6, 6, 14, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)
}

func TestExtractTimeSameWeekdayMeansNextWeek(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	// Naming the current weekday points at next week, never at today.
	got := e.Extract("on monday at 11am", testNow)
	require.NotNil(t, got.TimeWindow)
	want := time.Date(2025, 6, 9, 11, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)
}

func TestExtractExplicitDate(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	got := e.Extract("how about June 5", testNow)
	require.NotNil(t, got.TimeWindow)
	want := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)

	// A year-less date already behind now resolves to next year.
	got = e.Extract("how about January 15", testNow)
	require.NotNil(t, got.TimeWindow)
	want = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)
}

func TestExtractExplicitDateWithClock(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	// The calendar date anchors the day; the clock expression must not
	// pull the meeting back to today.
	got := e.Extract("how about June 5 at 2pm", testNow)
	require.NotNil(t, got.TimeWindow)
	want := time.Date(2025, 6, 5, 14, 0, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)

	got = e.Extract("2025-06-20 at 10:30am works", testNow)
	require.NotNil(t, got.TimeWindow)
	want = time.Date(2025, 6, 20, 10, 30, 0, 0, time.UTC)
	assert.True(t, got.TimeWindow.Start.Equal(want), "got %v", got.TimeWindow.Start)
}

func TestExtractNothing(t *testing.T) {
	e := NewRegexExtractor(time.UTC)

	got := e.Extract("hmm", testNow)
	assert.True(t, got.Empty())
}
