package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*types.TokenClaims, error) {
	return s.claims, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/", handlers...)
	return r
}

func serve(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	claims := &types.TokenClaims{UserID: uuid.New(), Email: "chef@kitchen.test", Role: models.RoleChef}

	tests := []struct {
		name      string
		header    string
		validator stubValidator
		want      int
	}{
		{"missing header", "", stubValidator{claims: claims}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{claims: claims}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("expired")}, http.StatusUnauthorized},
		{"valid token", "Bearer good", stubValidator{claims: claims}, http.StatusOK},
		{"lowercase scheme", "bearer good", stubValidator{claims: claims}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newRouter(AuthMiddleware(tt.validator)), tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthMiddlewareSetsContext(t *testing.T) {
	claims := &types.TokenClaims{UserID: uuid.New(), Role: models.RoleManager}
	r := gin.New()
	r.GET("/", AuthMiddleware(stubValidator{claims: claims}), func(c *gin.Context) {
		got, ok := Claims(c)
		require.True(t, ok)
		assert.Equal(t, claims.UserID, got.UserID)
		assert.Equal(t, claims.UserID, c.MustGet(ContextUserID))
		assert.Equal(t, models.RoleManager, c.GetString(ContextRole))
		c.Status(http.StatusNoContent)
	})

	w := serve(r, "Bearer token")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireRoles(t *testing.T) {
	chef := stubValidator{claims: &types.TokenClaims{UserID: uuid.New(), Role: models.RoleChef}}
	admin := stubValidator{claims: &types.TokenClaims{UserID: uuid.New(), Role: models.RoleAdmin}}

	w := serve(newRouter(AuthMiddleware(chef), RequireRoles(models.RoleAdmin, models.RoleManager)), "Bearer x")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(newRouter(AuthMiddleware(admin), RequireRoles(models.RoleAdmin, models.RoleManager)), "Bearer x")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(newRouter(RequireRoles(models.RoleAdmin)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=request method=GET path=/ok status=200")
	assert.Contains(t, out, "level=WARN msg=request method=GET path=/missing status=404")
	assert.Contains(t, out, "level=ERROR msg=request method=GET path=/fail status=500")
}

func TestRateLimiterWithoutRedisAllows(t *testing.T) {
	rl := NewLoginRateLimiter(nil)
	r := newRouter(rl.ByClientIP())
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, serve(r, "").Code)
	}
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "test"})
	r := newRouter(rl.ByClientIP())

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
