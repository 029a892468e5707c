package tasks

import (
	"context"
	"encoding/json"
	"time"

	"schedbot/config"
	meetingRepo "schedbot/database/repository/meeting"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisQueueOpt is the asynq connection shared by the enqueue client
// and the worker.
func RedisQueueOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}

// InitReminderWorker runs the async reminder worker in the background.
func InitReminderWorker(meetings meetingRepo.MeetingRecordRepository, logger *zap.Logger) {
	srv := asynq.NewServer(
		RedisQueueOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeMeetingReminder, HandleMeetingReminder(meetings, logger))

	go func() {
		logger.Sugar().Info("reminder worker starting")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Sugar().Errorf("reminder worker attempt %d/%d failed: %v", attempts, maxAttempts, err)
				if attempts == maxAttempts {
					logger.Sugar().Fatal("reminder worker could not start")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// HandleMeetingReminder fires one reminder. The meeting record is
// loaded fresh; a record deleted since booking means there is nothing
// left to remind about.
func HandleMeetingReminder(meetings meetingRepo.MeetingRecordRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid reminder payload", zap.Error(err))
			return err
		}

		record, err := meetings.GetByID(ctx, p.MeetingID)
		if err != nil {
			logger.Warn("reminder skipped, meeting record gone",
				zap.String("meetingID", p.MeetingID),
				zap.Error(err))
			return nil
		}

		logger.Info("meeting reminder fired",
			zap.String("meetingID", record.ID),
			zap.String("sessionID", record.SessionID),
			zap.String("purpose", record.Purpose),
			zap.Time("start", record.Start),
			zap.Strings("attendees", record.Attendees))
		return nil
	}
}
