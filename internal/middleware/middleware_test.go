package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/auth"
	"vidshare-api/internal/models"
	"vidshare-api/internal/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(tokens *auth.TokenManager, limiter *IPRateLimiter) *gin.Engine {
	logger := utils.DiscardLogger()
	r := gin.New()
	r.Use(Recovery(logger), RequestID(), LoggingMiddleware(logger), ErrorHandlingMiddleware(logger), RateLimitMiddleware(limiter))
	r.GET("/public", func(c *gin.Context) {
		utils.Respond(c, http.StatusOK, gin.H{"ok": true}, "fine")
	})
	r.GET("/missing", func(c *gin.Context) {
		Abort(c, apperror.NotFound("Video not found"))
	})
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})
	r.GET("/private", AuthMiddleware(tokens), func(c *gin.Context) {
		utils.Respond(c, http.StatusOK, gin.H{"user": UserID(c), "name": Username(c)}, "")
	})
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return body
}

func TestErrorEnvelope(t *testing.T) {
	r := newEngine(auth.NewTokenManager("s", time.Hour), nil)

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/missing", http.StatusNotFound, "Video not found"},
		{"/boom", http.StatusInternalServerError, "Something went wrong"},
		{"/private", http.StatusUnauthorized, "Unauthorized request"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			body := decode(t, w)
			if body["success"] != false || body["data"] != nil || body["message"] != tt.message {
				t.Errorf("unexpected envelope %v", body)
			}
			if int(body["status_code"].(float64)) != tt.status {
				t.Errorf("status_code mismatch in %v", body)
			}
			if _, ok := body["errors"].([]any); !ok {
				t.Errorf("errors should be a list, got %v", body["errors"])
			}
		})
	}
}

func TestSuccessEnvelope(t *testing.T) {
	r := newEngine(auth.NewTokenManager("s", time.Hour), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))

	body := decode(t, w)
	if body["success"] != true || body["message"] != "fine" || body["status_code"].(float64) != 200 {
		t.Errorf("unexpected envelope %v", body)
	}
	if _, ok := body["errors"]; ok {
		t.Error("success envelope should not carry errors")
	}
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("missing request id header")
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("s", time.Hour)
	r := newEngine(tokens, nil)
	token, err := tokens.Issue(&models.User{ID: "u-1", Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		data := decode(t, w)["data"].(map[string]any)
		if data["user"] != "u-1" || data["name"] != "alice" {
			t.Errorf("identity not propagated: %v", data)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("bad scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("forged", func(t *testing.T) {
		forged, _ := auth.NewTokenManager("other", time.Hour).Issue(&models.User{ID: "u-2"})
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := newEngine(auth.NewTokenManager("s", time.Hour), limiter)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	limiter.Allow("1.1.1.1")

	now = now.Add(time.Hour)
	limiter.Allow("2.2.2.2")

	if removed := limiter.Sweep(); removed != 1 {
		t.Errorf("expected one idle visitor removed, got %d", removed)
	}
}
