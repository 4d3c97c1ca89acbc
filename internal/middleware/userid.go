package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "userID"

// UserIDHeader is the header the auth proxy in front of this service sets
// after authenticating the request. This service trusts it as-is.
const UserIDHeader = "X-User-ID"

// RequireUserID rejects requests that arrive without an authenticated user.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    http.StatusUnauthorized,
				"message": "missing " + UserIDHeader + " header",
			})
			c.Abort()
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by RequireUserID.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
