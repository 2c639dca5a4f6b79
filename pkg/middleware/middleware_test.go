package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepwise/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

func TestJWTAuthMiddleware(t *testing.T) {
	tokens, err := utils.NewTokenIssuer("middleware-secret", time.Hour, time.Hour)
	require.NoError(t, err)
	accountID := uuid.New()
	session, err := tokens.CreateToken(accountID)
	require.NoError(t, err)
	portal, err := tokens.CreatePortalToken(uuid.New())
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, AccountID(c).String())
	})

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+session) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: session}) }, http.StatusOK},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"portal token is not a session", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+portal) }, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, accountID.String(), w.Body.String())
			}
		})
	}
}

func TestTraceIDMiddleware_ReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("trace_id")) })

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Trace-ID"))
}

func TestRateLimiter_RejectsBurstOverflow(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	defer limiter.Stop()

	r := gin.New()
	r.GET("/", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "limits are per client ip")
}

func TestRateLimiter_SweepDropsIdle(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()
	limiter.get("10.0.0.1")

	limiter.sweep(time.Now().Add(time.Hour))
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.limiters)
}
