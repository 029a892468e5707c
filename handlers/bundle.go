package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Conversation endpoints
	ChatHandler      gin.HandlerFunc
	VoiceChatHandler gin.HandlerFunc

	// Session endpoints
	CreateSessionHandler gin.HandlerFunc

	// Calendar authorization endpoints
	GoogleAuthorizeHandler gin.HandlerFunc
	GoogleCallbackHandler  gin.HandlerFunc
	AuthStatusHandler      gin.HandlerFunc

	// Booking history endpoints
	ListMeetingsHandler  gin.HandlerFunc
	DeleteMeetingHandler gin.HandlerFunc
}
