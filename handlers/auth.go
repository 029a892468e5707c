package handlers

import (
	"net/http"

	"schedbot/services/calendar"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// AuthHandler runs the Google OAuth consent flow that lets the
// assistant read availability and create events on a user's calendar.
// The conversation session ID rides along as the OAuth state parameter
// so the callback can file the token under the right session.
type AuthHandler struct {
	OAuth    *oauth2.Config
	Tokens   calendar.TokenStore
	Calendar calendar.CalendarService
	Logger   *zap.Logger
}

func NewAuthHandler(oauth *oauth2.Config, tokens calendar.TokenStore, cal calendar.CalendarService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{OAuth: oauth, Tokens: tokens, Calendar: cal, Logger: logger}
}

// Authorize redirects the browser to Google's consent screen.
func (h *AuthHandler) Authorize(c *gin.Context) {
	sessionID := resolveSessionID(c, c.Query("sessionId"))

	url := h.OAuth.AuthCodeURL(sessionID,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// Callback exchanges the authorization code and stores the token for
// the session named in the state parameter.
func (h *AuthHandler) Callback(c *gin.Context) {
	if errMsg := c.Query("error"); errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization denied", "details": errMsg})
		return
	}

	sessionID := c.Query("state")
	code := c.Query("code")
	if sessionID == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code parameter"})
		return
	}

	token, err := h.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.Logger.Error("oauth code exchange failed", zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to exchange authorization code"})
		return
	}

	if err := h.Tokens.Save(c.Request.Context(), sessionID, token); err != nil {
		h.Logger.Error("failed to store calendar token", zap.String("sessionID", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store credentials"})
		return
	}

	h.Logger.Info("calendar authorized", zap.String("sessionID", sessionID))
	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"message":   "Calendar connected. You can return to the chat and continue scheduling.",
	})
}

// Status reports whether the session holds a usable calendar credential.
func (h *AuthHandler) Status(c *gin.Context) {
	sessionID := resolveSessionID(c, c.Query("sessionId"))
	c.JSON(http.StatusOK, gin.H{
		"sessionId":  sessionID,
		"authorized": h.Calendar.HasValidCredential(c.Request.Context(), sessionID),
	})
}
