package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pyfast/backend/src/service"
	"github.com/rs/zerolog"
)

const userIDContextKey = "userID"

func SetMiddlewares(ctx context.Context, ginRouter *gin.Engine) {
	ginRouter.Use(LoggerMiddleware(ctx))
}

func LoggerMiddleware(ctx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {

		zlog := zerolog.Ctx(ctx).With().
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Logger()
		ctx = zlog.WithContext(ctx)
		c.Request = c.Request.WithContext(zlog.WithContext(ctx))
		c.Next()
	}
}

// AuthMiddleware resolves the user id from the Authorization bearer token
// and stores it in the gin context. Requests without a valid session token
// are rejected before any handler runs.
func AuthMiddleware(tokenService *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		userID, err := tokenService.VerifyToken(c.Request.Context(), token)
		if err != nil {
			respondWithError(c, err)
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// userIDFromContext returns the user id the auth middleware resolved.
func userIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDContextKey)
	return userID, userID != ""
}
