package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stylora-app/stylora/internal/shared/logger"
)

func setupInternalRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewInternalTokenMiddleware(token, logger.NewLogger())

	engine := gin.New()
	engine.POST("/internal/trial", m.RequireInternalToken(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestInternalTokenMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		configured     string
		provided       string
		expectedStatus int
	}{
		{"valid token", "s3cret", "s3cret", http.StatusOK},
		{"wrong token", "s3cret", "nope", http.StatusForbidden},
		{"missing header", "s3cret", "", http.StatusForbidden},
		{"unconfigured routes stay closed", "", "anything", http.StatusForbidden},
		{"unconfigured with empty header still closed", "", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := setupInternalRouter(tt.configured)

			req := httptest.NewRequest(http.MethodPost, "/internal/trial", nil)
			if tt.provided != "" {
				req.Header.Set("X-Internal-Token", tt.provided)
			}

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
