package scheduling

import (
	"testing"
	"time"

	"schedbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEngine() *Engine {
	return NewEngine(time.UTC, 9, 17, zap.NewNop())
}

func day(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestFindSlotsSkipsPastBusyInterval(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(9, 0), End: day(17, 0)}
	busy := []models.BusyInterval{{Start: day(9, 0), End: day(10, 0)}}

	slots := e.FindSlots(window, 30, busy)

	require.NotEmpty(t, slots)
	// 09:00 and 09:30 both intersect the blocker; the walker jumps
	// straight to its end.
	assert.True(t, slots[0].Equal(day(10, 0)), "first candidate should be 10:00, got %v", slots[0])

	for _, s := range slots {
		for _, b := range busy {
			assert.False(t, b.Overlaps(s, s.Add(30*time.Minute)), "slot %v intersects busy %v-%v", s, b.Start, b.End)
		}
	}
}

func TestFindSlotsEmptyCalendar(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(9, 0), End: day(17, 0)}

	slots := e.FindSlots(window, 30, nil)

	// 09:00 through 16:30 on the half hour.
	require.Len(t, slots, 16)
	assert.True(t, slots[0].Equal(day(9, 0)))
	assert.True(t, slots[len(slots)-1].Equal(day(16, 30)))
}

func TestFindSlotsClampsToBusinessHours(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(7, 0), End: day(17, 0).AddDate(0, 0, 1)}

	slots := e.FindSlots(window, 30, nil)

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Equal(day(9, 0)), "pre-open start jumps to business open, got %v", slots[0])
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.Hour(), 9)
		assert.Less(t, s.Hour(), 17)
	}
}

func TestFindSlotsCrossesToNextDay(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(16, 0), End: day(12, 0).AddDate(0, 0, 1)}

	slots := e.FindSlots(window, 30, nil)

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Equal(day(16, 0)))
	// After 16:30 the walker moves to the next day's open.
	nextOpen := day(9, 0).AddDate(0, 0, 1)
	assert.True(t, slots[2].Equal(nextOpen), "got %v", slots[2])
}

func TestFindSlotsBusyEndBeyondClose(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(15, 0), End: day(17, 0).AddDate(0, 0, 1)}
	busy := []models.BusyInterval{{Start: day(15, 30), End: day(18, 0)}}

	slots := e.FindSlots(window, 30, busy)

	require.NotEmpty(t, slots)
	assert.True(t, slots[0].Equal(day(15, 0)))
	// The blocker runs past close, so the next offer is tomorrow's open.
	nextOpen := day(9, 0).AddDate(0, 0, 1)
	assert.True(t, slots[1].Equal(nextOpen), "got %v", slots[1])
}

func TestFindSlotsLongMeeting(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(9, 0), End: day(17, 0)}
	busy := []models.BusyInterval{{Start: day(10, 0), End: day(11, 0)}}

	slots := e.FindSlots(window, 120, busy)

	require.NotEmpty(t, slots)
	// A two-hour meeting starting 09:00 or 09:30 would run into the
	// 10:00 blocker; 11:00 is the first clean fit.
	assert.True(t, slots[0].Equal(day(11, 0)), "got %v", slots[0])
}

func TestFindSlotsDefaultsDuration(t *testing.T) {
	e := testEngine()
	window := models.TimeWindow{Start: day(9, 0), End: day(17, 0)}

	withZero := e.FindSlots(window, 0, nil)
	withDefault := e.FindSlots(window, models.DefaultDurationMinutes, nil)
	assert.Equal(t, withDefault, withZero)
}

func TestDefaultWindowSpansSevenDays(t *testing.T) {
	e := testEngine()
	now := time.Date(2025, 6, 2, 13, 45, 0, 0, time.UTC)

	w := e.DefaultWindow(now)

	assert.True(t, w.Start.Equal(day(9, 0)))
	assert.True(t, w.End.Equal(day(17, 0).AddDate(0, 0, 7)))
}
