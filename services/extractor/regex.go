package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"schedbot/models"
)

// RegexExtractor recognizes meeting details with pattern matching only.
// It is the default implementation and the fallback for the Gemini one.
type RegexExtractor struct {
	Loc *time.Location
}

// NewRegexExtractor returns an extractor resolving times in loc.
func NewRegexExtractor(loc *time.Location) *RegexExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &RegexExtractor{Loc: loc}
}

var (
	durationNumRe  = regexp.MustCompile(`(?i)\b(\d+)\s*(hours?|hrs?|minutes?|mins?)\b`)
	durationWordRe = regexp.MustCompile(`(?i)\b(one|two|three|four|five)\s+(?:hours?|hrs?)\b`)
	halfHourRe     = regexp.MustCompile(`(?i)\bhalf\s+(?:an?\s+)?hour\b`)
	quarterHourRe  = regexp.MustCompile(`(?i)\bquarter\s+(?:of\s+an?\s+)?hour\b`)

	clockRe   = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	dayWordRe = regexp.MustCompile(`(?i)\b(today|tomorrow|next week|(?:next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`)
	dayPartRe = regexp.MustCompile(`(?i)\b(morning|afternoon|evening)\b`)

	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	purposeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:schedule|set up|arrange|plan|organize|book)\b.*?(?:meeting|call|session)\s+(?:for|about|to discuss|regarding)\s+(.+?)(?:\s+(?:with|at|on|by)\b|[.!?]|$)`),
		regexp.MustCompile(`(?i)(?:need|want|would like)\b.*?(?:meeting|call|session)\s+(?:for|about|to discuss|regarding)\s+(.+?)(?:\s+(?:with|at|on|by)\b|[.!?]|$)`),
		regexp.MustCompile(`(?i)\b(?:meeting|call|discussion)\s+(?:about|for|regarding)\s+(.+?)(?:\s+(?:with|at|on|by)\b|[.!?]|$)`),
		regexp.MustCompile(`(?i)\b(?:to discuss|discuss about|talk about|regarding|about)\s+(.+?)(?:\s+(?:with|at|on|by)\b|[.!?]|$)`),
	}
	fillerRe        = regexp.MustCompile(`(?i)^(?:the|a|an|some|this|that|these|those|my|our|their)\s+`)
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	// Sentences carrying any of these are never purpose candidates.
	dateTimeTokenRe = regexp.MustCompile(`(?i)\b(?:today|tomorrow|next|at|on|pm|am)\b|:\d{2}|@|\d`)

	weekdays = map[string]time.Weekday{
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
		"sunday":    time.Sunday,
	}
	hourWords = map[string]int{"one": 60, "two": 120, "three": 180, "four": 240, "five": 300}
)

// Extract never returns an error; every sub-extraction degrades to
// "field absent" on its own.
func (e *RegexExtractor) Extract(text string, now time.Time) models.PartialMeetingInfo {
	return models.PartialMeetingInfo{
		Purpose:         extractPurpose(text),
		DurationMinutes: extractDuration(text),
		TimeWindow:      e.extractTimeWindow(text, now),
		Attendees:       extractEmails(text),
	}
}

func extractDuration(text string) int {
	if m := durationNumRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0
		}
		unit := strings.ToLower(m[2])
		if strings.HasPrefix(unit, "hour") || strings.HasPrefix(unit, "hr") {
			return n * 60
		}
		return n
	}
	if m := durationWordRe.FindStringSubmatch(text); m != nil {
		return hourWords[strings.ToLower(m[1])]
	}
	if halfHourRe.MatchString(text) {
		return 30
	}
	if quarterHourRe.MatchString(text) {
		return 15
	}
	return 0
}

func extractEmails(text string) []string {
	matches := emailRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	emails := make([]string, 0, len(matches))
	for _, m := range matches {
		emails = append(emails, strings.ToLower(m))
	}
	return emails
}

// extractTimeWindow resolves day and clock expressions against now.
// Instants strictly in the past are rejected, except that a time on an
// implied "today" rolls forward to the same clock time tomorrow since
// meetings cannot be scheduled in the past.
func (e *RegexExtractor) extractTimeWindow(text string, now time.Time) *models.TimeWindow {
	now = now.In(e.Loc)

	day, dayFound := resolveDay(text, now)
	hour, minute, clockFound := resolveClock(text)
	if !clockFound {
		if h, ok := resolveDayPart(text); ok {
			hour, clockFound = h, true
		}
	}
	// A calendar date like "June 5" anchors the day even when a clock
	// expression already matched.
	if !dayFound {
		if d, ok := parseExplicitDate(text, now, e.Loc); ok {
			day, dayFound = d, true
		}
	}
	if !dayFound && !clockFound {
		return nil
	}
	if !dayFound {
		day = now
	}
	if !clockFound {
		hour, minute = 9, 0
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, e.Loc)
	if !start.After(now) {
		if dayFound {
			// An explicit past day is a rejection, not a guess.
			return nil
		}
		start = start.AddDate(0, 0, 1)
	}
	return &models.TimeWindow{Start: start, End: start.AddDate(0, 0, 7)}
}

func resolveDay(text string, now time.Time) (time.Time, bool) {
	m := dayWordRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	switch strings.ToLower(m[1]) {
	case "today":
		return now, true
	case "tomorrow":
		return now.AddDate(0, 0, 1), true
	case "next week":
		return now.AddDate(0, 0, 7), true
	}
	wd, ok := weekdays[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	ahead := (int(wd) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return now.AddDate(0, 0, ahead), true
}

func resolveClock(text string) (hour, minute int, ok bool) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return 0, 0, false
	}
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, minute, true
}

func resolveDayPart(text string) (int, bool) {
	switch m := dayPartRe.FindStringSubmatch(text); {
	case m == nil:
		return 0, false
	case strings.EqualFold(m[1], "morning"):
		return 9, true
	case strings.EqualFold(m[1], "afternoon"):
		return 14, true
	default:
		return 17, true
	}
}

var explicitDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"January 2 2006",
	"January 2",
	"Jan 2",
}

// parseExplicitDate is the free-form fallback for utterances like
// "June 5" or "2025-06-05". Year-less layouts resolve to the current
// year, or the next one when that date is already gone.
func parseExplicitDate(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	tokens := strings.Fields(strings.ReplaceAll(text, ",", " "))
	for width := 3; width >= 1; width-- {
		for i := 0; i+width <= len(tokens); i++ {
			candidate := strings.Join(tokens[i:i+width], " ")
			for _, layout := range explicitDateLayouts {
				t, err := time.ParseInLocation(layout, candidate, loc)
				if err != nil {
					continue
				}
				if t.Year() == 0 {
					t = t.AddDate(now.Year(), 0, 0)
					if t.Before(now) {
						t = t.AddDate(1, 0, 0)
					}
				}
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func extractPurpose(text string) string {
	for _, re := range purposeRes {
		if m := re.FindStringSubmatch(text); m != nil {
			purpose := strings.TrimSpace(m[1])
			purpose = fillerRe.ReplaceAllString(purpose, "")
			if len(purpose) > 3 {
				return purpose
			}
		}
	}
	// Fall back to the first sentence free of date/time/email tokens.
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" || dateTimeTokenRe.MatchString(sentence) {
			continue
		}
		if len(sentence) > 3 {
			return fillerRe.ReplaceAllString(sentence, "")
		}
	}
	return ""
}
