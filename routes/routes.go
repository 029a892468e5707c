package routes

import (
	"net/http"
	"time"

	"schedbot/handlers"
	"schedbot/middleware"
	"schedbot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the conversation endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.SessionTokenMiddleware())
		api.POST("", hb.ChatHandler)
		api.POST("/voice", hb.VoiceChatHandler)
	}
}

// RegisterSessionRoutes registers session issuance.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/session", hb.CreateSessionHandler)
}

// RegisterAuthRoutes registers the Google Calendar consent flow.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.Use(middleware.SessionTokenMiddleware())
		api.GET("/google", hb.GoogleAuthorizeHandler)
		api.GET("/google/callback", hb.GoogleCallbackHandler)
		api.GET("/google/status", hb.AuthStatusHandler)
	}
}

// RegisterMeetingRoutes registers the session's booking history.
func RegisterMeetingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/meetings")
	{
		api.Use(middleware.SessionTokenMiddleware())
		api.GET("", hb.ListMeetingsHandler)
		api.DELETE("/:id", hb.DeleteMeetingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterSessionRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterMeetingRoutes(r, hb)
	RegisterHealthRoute(r)
}
