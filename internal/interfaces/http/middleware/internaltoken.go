package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stylora-app/stylora/internal/shared/logger"
	"github.com/stylora-app/stylora/internal/shared/utils"
)

// InternalTokenMiddleware guards service-to-service routes (trial grants,
// manual usage resets) with a shared static token.
type InternalTokenMiddleware struct {
	token  string
	logger logger.Interface
}

func NewInternalTokenMiddleware(token string, logger logger.Interface) *InternalTokenMiddleware {
	return &InternalTokenMiddleware{
		token:  token,
		logger: logger,
	}
}

func (m *InternalTokenMiddleware) RequireInternalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.token == "" {
			// Routes stay closed until a token is configured.
			utils.ErrorResponse(c, http.StatusForbidden, "internal routes are disabled")
			c.Abort()
			return
		}

		provided := c.GetHeader("X-Internal-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.token)) != 1 {
			m.logger.Warnw("rejected internal request", "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusForbidden, "invalid internal token")
			c.Abort()
			return
		}

		c.Next()
	}
}
