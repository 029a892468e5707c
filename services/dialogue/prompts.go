package dialogue

import (
	"fmt"
	"strings"
	"time"

	"schedbot/models"
)

const slotTimeLayout = "Monday, January 2 at 3:04 PM"

// maxDisplaySlots caps how many offers one message shows; the search
// itself is uncapped.
const maxDisplaySlots = 5

const greeting = "👋 Hello! I'm your scheduling assistant.\n\n" +
	"I'll help you set up your meeting. Let's get started!\n\n" +
	"What's the purpose of your meeting?"

const (
	msgAuthorizeFirst   = "Please authorize access to your calendar first, then try again."
	msgCalendarDown     = "I'm having trouble reaching the calendar right now. Could you please try again?"
	msgNoSlots          = "I couldn't find any open time slots in that range. Would you like to try a different time?"
	msgBookingConflict = "I'm sorry, that slot was just taken. Here are the times still open:"
	msgPickAnotherTime = "No problem, let's pick another time."
)

var questions = map[models.Topic]string{
	models.TopicPurpose:   "What's the purpose of your meeting?",
	models.TopicDuration:  "How long would you like the meeting to be? (default is 30 minutes)",
	models.TopicTime:      "When would you like to schedule this meeting?",
	models.TopicAttendees: "Who would you like to invite? (Please provide email addresses)",
}

var affirmatives = map[string]bool{
	"yes": true, "y": true, "sure": true, "ok": true, "okay": true,
}

var negatives = map[string]bool{
	"no": true, "n": true, "nope": true,
}

var resetCommands = map[string]bool{
	"reset": true, "start over": true, "restart": true,
}

func isReset(text string) bool {
	return resetCommands[strings.ToLower(strings.TrimSpace(text))]
}

func isAffirmative(text string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(text))]
}

func isNegative(text string) bool {
	return negatives[strings.ToLower(strings.TrimSpace(text))]
}

func questionFor(topic models.Topic) string {
	return questions[topic]
}

// displaySlots formats the bounded prefix of offers shown to the user.
func displaySlots(slots []time.Time, loc *time.Location) []string {
	n := len(slots)
	if n > maxDisplaySlots {
		n = maxDisplaySlots
	}
	out := make([]string, 0, n)
	for _, slot := range slots[:n] {
		out = append(out, slot.In(loc).Format(slotTimeLayout))
	}
	return out
}

func formatSlotList(slots []time.Time, loc *time.Location) string {
	shown := displaySlots(slots, loc)
	var b strings.Builder
	b.WriteString("📅 Here are the best available time slots I found:\n\n")
	for i, s := range shown {
		fmt.Fprintf(&b, "🕒 Option %d: %s\n", i+1, s)
	}
	fmt.Fprintf(&b, "\nWhich time slot would you prefer? (Just reply with the option number 1-%d)", len(shown))
	return b.String()
}

func formatConfirmation(state *models.MeetingRequest, loc *time.Location) string {
	start := state.SelectedSlot.In(loc)
	var b strings.Builder
	b.WriteString("Here's what I'll book:\n\n")
	fmt.Fprintf(&b, "📝 Purpose: %s\n", purposeOrDefault(state))
	fmt.Fprintf(&b, "📅 Time: %s\n", start.Format(slotTimeLayout))
	fmt.Fprintf(&b, "🕒 Duration: %d minutes\n", state.EffectiveDuration())
	fmt.Fprintf(&b, "📧 Attendees: %s\n", strings.Join(state.Attendees, ", "))
	b.WriteString("\nShall I go ahead? (yes/no)")
	return b.String()
}

func formatBookingSuccess(state *models.MeetingRequest, ref *models.EventRef, loc *time.Location) string {
	start := state.SelectedSlot.In(loc)
	end := start.Add(time.Duration(state.EffectiveDuration()) * time.Minute)
	var b strings.Builder
	b.WriteString("✅ Meeting scheduled successfully!\n\n📝 Details:\n")
	fmt.Fprintf(&b, "• Title: %s\n", purposeOrDefault(state))
	fmt.Fprintf(&b, "• Date: %s\n", start.Format("Monday, January 2, 2006"))
	fmt.Fprintf(&b, "• Time: %s - %s\n", start.Format("3:04 PM"), end.Format("3:04 PM"))
	fmt.Fprintf(&b, "• Duration: %d minutes\n", state.EffectiveDuration())
	fmt.Fprintf(&b, "• Attendees: %s\n", strings.Join(state.Attendees, ", "))
	b.WriteString("\n📧 Email invitations have been sent to all attendees")
	if ref != nil && ref.Link != "" {
		fmt.Fprintf(&b, "\n🔗 View in Calendar: %s", ref.Link)
	}
	return b.String()
}

// formatRecap is the "I didn't catch that" fallback showing what has
// been collected so far.
func formatRecap(state *models.MeetingRequest, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("I'm not sure what information you're providing. Here's what I have so far:\n\n")
	if state.Purpose != "" {
		fmt.Fprintf(&b, "📝 Purpose: %s\n", state.Purpose)
	}
	if state.DurationMinutes > 0 {
		fmt.Fprintf(&b, "🕒 Duration: %d minutes\n", state.DurationMinutes)
	}
	if state.PreferredWindow != nil {
		fmt.Fprintf(&b, "📅 Time: %s\n", state.PreferredWindow.Start.In(loc).Format(slotTimeLayout))
	}
	if len(state.Attendees) > 0 {
		fmt.Fprintf(&b, "📧 Attendees: %s\n", strings.Join(state.Attendees, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func purposeOrDefault(state *models.MeetingRequest) string {
	if state.Purpose != "" {
		return state.Purpose
	}
	return "Scheduled Meeting"
}
