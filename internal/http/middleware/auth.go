package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gitgrok.app/api/common/apperr"
	"gitgrok.app/api/common/logger"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer <jwt>" header
// and stores the user id on the request context.
func RequireAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No token provided"})
			return
		}

		userID, err := tokens.ParseToken(token)
		if err != nil {
			message := apperr.MessageOf(err)
			if message == "" {
				message = "Invalid token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDContextKey, userID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &userID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserID returns the authenticated user id, or 0 outside RequireAuth.
func GetUserID(ctx context.Context) int64 {
	userID, _ := ctx.Value(userIDContextKey).(int64)
	return userID
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
