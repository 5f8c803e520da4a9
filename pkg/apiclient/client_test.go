package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"isSuccess":true,"statusCode":200,"data":{"id":7,"fullName":"Ada"},"message":""}`))
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok-1" })
	var out struct {
		ID       uint   `json:"id"`
		FullName string `json:"fullName"`
	}
	err := c.Get(context.Background(), "/User/me", &out)
	require.NoError(t, err)
	assert.Equal(t, uint(7), out.ID)
	assert.Equal(t, "Ada", out.FullName)
}

func TestIsSuccessAuthoritativeOverHTTPStatus(t *testing.T) {
	// HTTP 200 but isSuccess=false must still be an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"isSuccess":false,"statusCode":400,"data":null,"message":"invalid email or password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.Post(context.Background(), "/Authentication/login", map[string]string{}, nil)
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid email or password", apiErr.Message)
}

func TestExtractMessageFieldErrors(t *testing.T) {
	err := &APIError{HTTPStatus: 400, Fields: map[string][]string{"email": {"Invalid"}}}
	msg := ExtractMessage(err)
	assert.Contains(t, msg, "email: Invalid")
}

func TestExtractMessagePlainMessage(t *testing.T) {
	err := &APIError{HTTPStatus: 400, Message: "X"}
	assert.Equal(t, "X", ExtractMessage(err))
}

func TestExtractMessageFallback(t *testing.T) {
	err := &APIError{HTTPStatus: 500}
	assert.Equal(t, FallbackMessage, ExtractMessage(err))
}

func TestExtractMessageFieldErrorsWinOverMessage(t *testing.T) {
	err := &APIError{
		HTTPStatus: 400,
		Message:    "validation failed",
		Fields:     map[string][]string{"email": {"Invalid"}, "name": {"too short"}},
	}
	msg := ExtractMessage(err)
	assert.Contains(t, msg, "email: Invalid")
	assert.Contains(t, msg, "name: too short")
	assert.NotEqual(t, "validation failed", msg)
}

func TestExtractMessageTransportError(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.Equal(t, "dial tcp: connection refused", ExtractMessage(err))
}

func TestFieldErrorsParsedFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"isSuccess":false,"statusCode":400,"data":null,"message":"","errors":{"email":["Invalid"]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.Post(context.Background(), "/Authentication/register", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(ExtractMessage(err), "email: Invalid"))
}

func TestBulkPartialFailure(t *testing.T) {
	fail := errors.New("no such user")
	ops := []func(context.Context) error{
		func(context.Context) error { return nil },
		func(context.Context) error { return fail },
		func(context.Context) error { return nil },
		func(context.Context) error { return fail },
		func(context.Context) error { return nil },
	}
	res := Bulk(context.Background(), ops)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, res.Errors, 2)
}
