package scheduling

import (
	"time"

	"schedbot/models"

	"go.uber.org/zap"
)

// Engine walks a time window and offers candidate meeting starts that
// clear every busy interval. It is deterministic: same window, same
// busy set, same offers.
type Engine struct {
	Loc           *time.Location
	BusinessStart int // inclusive hour, local time
	BusinessEnd   int // exclusive hour, local time
	Step          time.Duration
	Logger        *zap.Logger
}

// NewEngine returns an engine with the standard business-hour setup.
func NewEngine(loc *time.Location, businessStart, businessEnd int, logger *zap.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		Loc:           loc,
		BusinessStart: businessStart,
		BusinessEnd:   businessEnd,
		Step:          30 * time.Minute,
		Logger:        logger,
	}
}

// DefaultWindow is the search range used when the user never stated a
// preference: today at business open through seven days out at close.
func (e *Engine) DefaultWindow(now time.Time) models.TimeWindow {
	now = now.In(e.Loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), e.BusinessStart, 0, 0, 0, e.Loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), e.BusinessEnd, 0, 0, 0, e.Loc).AddDate(0, 0, 7)
	return models.TimeWindow{Start: start, End: end}
}

// FindSlots returns every candidate start inside the window, in order.
// Candidates step forward 30 minutes at a time within business hours;
// a collision advances the walker straight to the busy interval's end
// instead of re-scanning every tick inside it. Offers may overlap
// back-to-back even when the meeting is longer than one step: the
// result is a list of offers, not a partition of the day.
func (e *Engine) FindSlots(window models.TimeWindow, durationMinutes int, busy []models.BusyInterval) []time.Time {
	if durationMinutes <= 0 {
		durationMinutes = models.DefaultDurationMinutes
	}
	duration := time.Duration(durationMinutes) * time.Minute

	var slots []time.Time
	cur := window.Start.In(e.Loc)
	end := window.End.In(e.Loc)

	for cur.Before(end) {
		switch {
		case cur.Hour() < e.BusinessStart:
			cur = time.Date(cur.Year(), cur.Month(), cur.Day(), e.BusinessStart, 0, 0, 0, e.Loc)
			continue
		case cur.Hour() >= e.BusinessEnd:
			cur = time.Date(cur.Year(), cur.Month(), cur.Day(), e.BusinessStart, 0, 0, 0, e.Loc).AddDate(0, 0, 1)
			continue
		}

		slotEnd := cur.Add(duration)
		collided := false
		for _, b := range busy {
			if b.Overlaps(cur, slotEnd) {
				// Skip straight past the blocker; its end may land
				// outside business hours, which the next pass fixes.
				cur = b.End.In(e.Loc)
				collided = true
				break
			}
		}
		if collided {
			continue
		}

		slots = append(slots, cur)
		cur = cur.Add(e.Step)
	}

	if e.Logger != nil {
		e.Logger.Debug("availability search finished",
			zap.Time("windowStart", window.Start),
			zap.Time("windowEnd", window.End),
			zap.Int("busyIntervals", len(busy)),
			zap.Int("slots", len(slots)))
	}
	return slots
}
