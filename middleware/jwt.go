package middleware

import (
	"net/http"
	"strings"

	"bitwise74/zeropass/security"
	"bitwise74/zeropass/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware guards protected routes. It expects a bearer token
// in the Authorization header, verifies it and confirms the user row
// still exists before letting the request through. Every failure mode
// answers with the same 401 body.
func NewJWTMiddleware(sessions *security.Sessions, ident *service.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "unauthenticated",
				"requestID": requestID,
			})
			return
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "unauthenticated",
				"requestID": requestID,
			})
			return
		}

		exists, err := ident.Exists(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "internal_server_error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "unauthenticated",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}
