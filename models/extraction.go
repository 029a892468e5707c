package models

// PartialMeetingInfo is what the extractor recovered from a single
// utterance. Every field is optional; the zero value of a field means
// the utterance said nothing usable about it. Partial extraction is the
// normal path, not an error path.
type PartialMeetingInfo struct {
	Purpose         string
	DurationMinutes int
	TimeWindow      *TimeWindow
	Attendees       []string
}

// Empty reports whether nothing at all was extracted.
func (p PartialMeetingInfo) Empty() bool {
	return p.Purpose == "" && p.DurationMinutes == 0 && p.TimeWindow == nil && len(p.Attendees) == 0
}
