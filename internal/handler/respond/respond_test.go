package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func record(h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/", h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestOKEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		OK(c, http.StatusOK, gin.H{"id": 1})
	})
	var env struct {
		IsSuccess  bool            `json:"isSuccess"`
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.IsSuccess || env.StatusCode != 200 || len(env.Data) == 0 {
		t.Errorf("envelope = %s", w.Body.String())
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "no such project")
	})
	var env struct {
		IsSuccess bool   `json:"isSuccess"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.IsSuccess || env.Message != "no such project" {
		t.Errorf("envelope = %s", w.Body.String())
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestFieldErrorsTopLevel(t *testing.T) {
	w := record(func(c *gin.Context) {
		FieldErrors(c, http.StatusBadRequest, map[string][]string{"email": {"Invalid"}})
	})
	// The errors map sits next to the envelope fields, not inside data.
	var body struct {
		IsSuccess bool                `json:"isSuccess"`
		Errors    map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.IsSuccess {
		t.Error("isSuccess should be false")
	}
	if got := body.Errors["email"]; len(got) != 1 || got[0] != "Invalid" {
		t.Errorf("errors = %v", body.Errors)
	}
}
