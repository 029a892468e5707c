package handlers

import (
	"net/http"

	"schedbot/middleware"
	"schedbot/services/dialogue"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatHandler serves the text conversation endpoint.
type ChatHandler struct {
	Dialogue dialogue.DialogueService
	Logger   *zap.Logger
}

func NewChatHandler(svc dialogue.DialogueService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Dialogue: svc, Logger: logger}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type chatResponse struct {
	SessionID string      `json:"sessionId"`
	Response  string      `json:"response"`
	TimeSlots []string    `json:"timeSlots,omitempty"`
	State     interface{} `json:"state"`
}

// resolveSessionID picks the conversation session for a request. A
// session token on the request wins, then an explicit body field, and
// finally a fresh ID for first contact.
func resolveSessionID(c *gin.Context, bodySessionID string) string {
	if v, ok := c.Get(middleware.ContextSessionIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	if bodySessionID != "" {
		return bodySessionID
	}
	return uuid.New().String()
}

// Handle processes one chat turn.
func (h *ChatHandler) Handle(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	sessionID := resolveSessionID(c, req.SessionID)

	result, err := h.Dialogue.ProcessTurn(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		h.Logger.Error("chat turn failed", zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process message"})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		SessionID: sessionID,
		Response:  result.Message,
		TimeSlots: result.TimeSlots,
		State:     result.State,
	})
}
