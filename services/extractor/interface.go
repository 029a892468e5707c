package extractor

import (
	"time"

	"schedbot/models"
)

// Extractor maps one free-form utterance to the structured fields it
// mentions. Implementations never fail: a sub-field that cannot be
// parsed is simply left absent. The reference instant is passed in so
// extraction stays reproducible under test.
type Extractor interface {
	Extract(text string, now time.Time) models.PartialMeetingInfo
}
