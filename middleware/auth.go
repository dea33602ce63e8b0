package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"socialnet/utils"
)

const userIDKey = "user_id"

// TokenParser verifies an access token and returns its claims.
type TokenParser interface {
	ParseAccess(token string) (*utils.Claims, error)
}

func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authRejections.WithLabelValues("missing_header").Inc()
			utils.Unauthorized(c, "Authentication credentials were not provided.")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			authRejections.WithLabelValues("bad_format").Inc()
			utils.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ParseAccess(parts[1])
		if err != nil {
			authRejections.WithLabelValues("invalid_token").Inc()
			utils.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
