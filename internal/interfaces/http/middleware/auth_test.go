package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/stylora-app/stylora/internal/infrastructure/auth"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

func setupAuthRouter(jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(jwtService, logger.NewLogger())

	engine := gin.New()
	engine.GET("/protected", m.RequireAuth(), func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return engine
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 60)
	engine := setupAuthRouter(jwtService)

	token, err := jwtService.Generate(42)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 60)
	engine := setupAuthRouter(jwtService)

	otherService := auth.NewJWTService("other-secret", 60)
	foreignToken, _ := otherService.Generate(42)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"bearer without token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong signing secret", "Bearer " + foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
