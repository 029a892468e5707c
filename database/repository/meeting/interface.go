package meetingRepo

import (
	"context"

	"schedbot/config"
	"schedbot/database"
	"schedbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MeetingRecordRepository stores one document per successfully booked
// meeting.
type MeetingRecordRepository interface {
	Create(ctx context.Context, record models.MeetingRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.MeetingRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]models.MeetingRecord, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoMeetingRepo struct {
	coll *mongo.Collection
}

// NewMongoMeetingRepo returns a MeetingRecordRepository backed by MongoDB.
func NewMongoMeetingRepo() MeetingRecordRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoMeetingRepo{
		coll: db.Collection("meeting_records"),
	}
}
