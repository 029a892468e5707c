package meetingRepo

import (
	"context"
	"errors"
	"time"

	"schedbot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new meeting record and returns its ID.
func (r *mongoMeetingRepo) Create(ctx context.Context, record models.MeetingRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByID returns a meeting record by its ID.
func (r *mongoMeetingRepo) GetByID(ctx context.Context, id string) (*models.MeetingRecord, error) {
	var record models.MeetingRecord
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetBySessionID fetches all meetings booked within a given session.
func (r *mongoMeetingRepo) GetBySessionID(ctx context.Context, sessionID string) ([]models.MeetingRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MeetingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteByID removes a meeting record by ID.
func (r *mongoMeetingRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("meeting record not found")
	}
	return nil
}
