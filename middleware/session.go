package middleware

import (
	"strings"

	"schedbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextSessionIDKey is where the resolved session ID lands in the
// request context.
const ContextSessionIDKey = "sessionID"

// SessionTokenMiddleware resolves the conversation session from a
// Bearer token when one is presented. Absent or invalid tokens are not
// fatal; handlers fall back to an explicit sessionId field.
func SessionTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		sessionID, err := utils.ExtractSessionIDFromToken(tokenString)
		if err != nil {
			zap.L().Debug("ignoring invalid session token", zap.Error(err))
			c.Next()
			return
		}
		c.Set(ContextSessionIDKey, sessionID)
		c.Next()
	}
}
