package handlers

import (
	"net/http"

	meetingRepo "schedbot/database/repository/meeting"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MeetingsHandler exposes the booking history of a session.
type MeetingsHandler struct {
	Repo   meetingRepo.MeetingRecordRepository
	Logger *zap.Logger
}

func NewMeetingsHandler(repo meetingRepo.MeetingRecordRepository, logger *zap.Logger) *MeetingsHandler {
	return &MeetingsHandler{Repo: repo, Logger: logger}
}

// List returns every meeting booked within the session.
func (h *MeetingsHandler) List(c *gin.Context) {
	sessionID := resolveSessionID(c, c.Query("sessionId"))

	records, err := h.Repo.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		h.Logger.Error("failed to list meetings", zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"meetings":  records,
	})
}

// Delete removes one meeting record. Only records belonging to the
// caller's session are visible; anything else reads as not found.
func (h *MeetingsHandler) Delete(c *gin.Context) {
	sessionID := resolveSessionID(c, c.Query("sessionId"))
	id := c.Param("id")

	record, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil || record.SessionID != sessionID {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting record not found"})
		return
	}

	if err := h.Repo.DeleteByID(c.Request.Context(), id); err != nil {
		h.Logger.Error("failed to delete meeting record", zap.String("meetingID", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete meeting record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
