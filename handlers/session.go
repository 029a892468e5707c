package handlers

import (
	"net/http"

	"schedbot/config"
	"schedbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateSessionHandler mints a new conversation session and a bearer
// token front ends can attach to subsequent chat requests.
func CreateSessionHandler(c *gin.Context) {
	sessionID := uuid.New().String()

	token, err := utils.GenerateSessionToken(sessionID, config.SessionTTL())
	if err != nil {
		zap.L().Error("failed to sign session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": sessionID,
		"token":     token,
		"expiresIn": int(config.SessionTTL().Seconds()),
		"tokenType": "Bearer",
	})
}
