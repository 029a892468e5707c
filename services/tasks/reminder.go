package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeMeetingReminder = "reminder:meeting"

// ReminderPayload identifies the booked meeting a reminder fires for.
// The record itself is loaded at fire time so late deletions cancel
// the reminder naturally.
type ReminderPayload struct {
	MeetingID string `json:"meetingId"`
	SessionID string `json:"sessionId"`
}

// NewMeetingReminderTask builds the queue task and its schedule option.
func NewMeetingReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeMeetingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// Scheduler enqueues one reminder per booked meeting, a fixed lead
// time before the start.
type Scheduler struct {
	client *asynq.Client
	lead   time.Duration
	logger *zap.Logger
}

// NewScheduler wraps an asynq client. A non-positive lead falls back
// to 30 minutes.
func NewScheduler(client *asynq.Client, lead time.Duration, logger *zap.Logger) *Scheduler {
	if lead <= 0 {
		lead = 30 * time.Minute
	}
	return &Scheduler{client: client, lead: lead, logger: logger}
}

// reminderFireAt computes when the reminder should fire. Meetings
// starting inside the lead window get an immediate reminder instead of
// one scheduled in the past.
func reminderFireAt(start time.Time, lead time.Duration, now time.Time) time.Time {
	fireAt := start.Add(-lead)
	if fireAt.Before(now) {
		return now
	}
	return fireAt
}

// ScheduleMeetingReminder queues the reminder for a just-booked meeting.
func (s *Scheduler) ScheduleMeetingReminder(ctx context.Context, meetingID, sessionID string, start time.Time) error {
	payload := ReminderPayload{MeetingID: meetingID, SessionID: sessionID}
	fireAt := reminderFireAt(start, s.lead, time.Now())

	task, opts, err := NewMeetingReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return err
	}

	s.logger.Info("meeting reminder queued",
		zap.String("meetingID", meetingID),
		zap.String("taskID", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}
