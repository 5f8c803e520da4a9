package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showroom/config"
	"showroom/internal/auth"
	"showroom/internal/domain"

	"github.com/gin-gonic/gin"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "test",
	}
}

func testRouter(cfg *config.JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c), "email": GetEmail(c), "role": GetRole(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateAccessToken(cfg, 42, "ada@uni.edu", domain.RoleStudent)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	testRouter(cfg).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body struct {
		UserID uint   `json:"userId"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != 42 || body.Email != "ada@uni.edu" || body.Role != domain.RoleStudent {
		t.Errorf("context values = %+v", body)
	}
}

func TestAuthRequiredRejects(t *testing.T) {
	cfg := testJWTConfig()
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			testRouter(cfg).ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			var env struct {
				IsSuccess bool `json:"isSuccess"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.IsSuccess {
				t.Error("isSuccess should be false")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := auth.GenerateAccessToken(cfg, 7, "g@uni.edu", domain.RoleInstructor)

	cases := []struct {
		name    string
		allowed []string
		want    int
	}{
		{"in allow set", []string{domain.RoleInstructor, domain.RoleAdmin}, http.StatusOK},
		{"not in allow set", []string{domain.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			testRouter(cfg, RequireRole(tc.allowed...)).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	l := NewInMemoryRateLimiter(2, time.Minute)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request within window should be limited")
	}
	if !l.Allow("b") {
		t.Error("other keys are independent")
	}
}
