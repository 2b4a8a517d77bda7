package http

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/privacy/internal/errors"
	"github.com/allisson/privacy/internal/httputil"
)

// AdminAuthMiddleware protects admin routes with a static bearer key.
//
// The key comes from configuration; an empty key rejects every request so the
// admin surface stays closed unless explicitly configured.
//
// Returns:
//   - 401 Unauthorized: Missing, malformed, or wrong Authorization header
//   - Continues: Key matches
func AdminAuthMiddleware(apiKey string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			logger.Warn("admin authentication failed", slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
