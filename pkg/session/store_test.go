package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"showroom/pkg/authz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelopeServer fakes the backend: login issues a fixed pair, /User/me
// answers for that pair only.
func envelopeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Authentication/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret123" {
			w.Write([]byte(`{"isSuccess":false,"statusCode":401,"data":null,"message":"invalid email or password"}`))
			return
		}
		w.Write([]byte(`{"isSuccess":true,"statusCode":200,"data":{"accessToken":"acc-1","refreshToken":"ref-1"},"message":""}`))
	})
	mux.HandleFunc("/Authentication/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":true,"statusCode":200,"data":null,"message":"logged out"}`))
	})
	mux.HandleFunc("/User/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-1" {
			w.Write([]byte(`{"isSuccess":false,"statusCode":401,"data":null,"message":"invalid token"}`))
			return
		}
		w.Write([]byte(`{"isSuccess":true,"statusCode":200,"data":{"id":9,"fullName":"Grace","email":"grace@uni.edu","role":"Instructor"},"message":""}`))
	})
	return httptest.NewServer(mux)
}

func TestLoginRoundTrip(t *testing.T) {
	srv := envelopeServer(t)
	defer srv.Close()

	tokens := NewMemoryTokens()
	store := New(srv.URL, tokens)
	id, err := store.Login(context.Background(), "grace@uni.edu", "secret123")
	require.NoError(t, err)

	assert.Equal(t, authz.RoleInstructor, id.Role)
	assert.Equal(t, "acc-1", tokens.AccessToken())
	assert.Equal(t, "ref-1", tokens.RefreshToken())

	got, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, uint(9), got.ID)
	assert.True(t, store.HasRole(authz.RoleInstructor, authz.RoleAdmin))
	assert.False(t, store.HasRole(authz.RoleStudent))
}

func TestLoginFailureLeavesPriorSession(t *testing.T) {
	srv := envelopeServer(t)
	defer srv.Close()

	tokens := NewMemoryTokens()
	store := New(srv.URL, tokens)
	_, err := store.Login(context.Background(), "grace@uni.edu", "secret123")
	require.NoError(t, err)

	_, err = store.Login(context.Background(), "grace@uni.edu", "wrong")
	require.Error(t, err)
	assert.Equal(t, "acc-1", tokens.AccessToken())
	_, ok := store.Identity()
	assert.True(t, ok)
}

func TestLoginIdentityFailureLeavesStorageUntouched(t *testing.T) {
	// The credential exchange succeeds and issues a new pair, but the
	// follow-up identity call rejects the new token. The prior session,
	// durable tokens included, must survive.
	mux := http.NewServeMux()
	mux.HandleFunc("/Authentication/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":true,"statusCode":200,"data":{"accessToken":"acc-2","refreshToken":"ref-2"},"message":""}`))
	})
	mux.HandleFunc("/User/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer acc-1" {
			w.Write([]byte(`{"isSuccess":false,"statusCode":401,"data":null,"message":"invalid token"}`))
			return
		}
		w.Write([]byte(`{"isSuccess":true,"statusCode":200,"data":{"id":9,"fullName":"Grace","email":"grace@uni.edu","role":"Instructor"},"message":""}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	tokens := NewMemoryTokens()
	tokens.SetTokens("acc-1", "ref-1")
	store := New(srv.URL, tokens)
	store.Boot(context.Background())
	_, ok := store.Identity()
	require.True(t, ok)

	_, err := store.Login(context.Background(), "grace@uni.edu", "whatever")
	require.Error(t, err)

	assert.Equal(t, "acc-1", tokens.AccessToken())
	assert.Equal(t, "ref-1", tokens.RefreshToken())
	id, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, "grace@uni.edu", id.Email)
}

func TestLogoutIdempotent(t *testing.T) {
	srv := envelopeServer(t)
	defer srv.Close()

	tokens := NewMemoryTokens()
	store := New(srv.URL, tokens)
	_, err := store.Login(context.Background(), "grace@uni.edu", "secret123")
	require.NoError(t, err)

	store.Logout(context.Background())
	assert.Empty(t, tokens.AccessToken())
	assert.Empty(t, tokens.RefreshToken())
	_, ok := store.Identity()
	assert.False(t, ok)

	// Second logout with nothing to clear must not blow up.
	store.Logout(context.Background())
	assert.Empty(t, tokens.AccessToken())
}

func TestBootWithoutTokenResolvesEmpty(t *testing.T) {
	srv := envelopeServer(t)
	defer srv.Close()

	store := New(srv.URL, NewMemoryTokens())
	assert.Equal(t, StateLoading, store.State())
	store.Boot(context.Background())
	assert.Equal(t, StateResolved, store.State())
	_, ok := store.Identity()
	assert.False(t, ok)
}

func TestBootWithStaleTokenClearsStorage(t *testing.T) {
	srv := envelopeServer(t)
	defer srv.Close()

	tokens := NewMemoryTokens()
	tokens.SetTokens("expired", "expired-ref")
	store := New(srv.URL, tokens)
	store.Boot(context.Background())

	assert.Equal(t, StateResolved, store.State())
	assert.Empty(t, tokens.AccessToken())
	_, ok := store.Identity()
	assert.False(t, ok)
}

func TestBootWithValidTokenRehydrates(t *testing.T) {
	srv := envelopeServer(t)
	defer srv.Close()

	tokens := NewMemoryTokens()
	tokens.SetTokens("acc-1", "ref-1")
	store := New(srv.URL, tokens)
	store.Boot(context.Background())

	id, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, "grace@uni.edu", id.Email)
}

func TestFileTokensRoundTrip(t *testing.T) {
	path := t.TempDir() + "/tokens.json"
	f := NewFileTokens(path)
	require.NoError(t, f.SetTokens("a", "r"))
	assert.Equal(t, "a", f.AccessToken())
	assert.Equal(t, "r", f.RefreshToken())
	require.NoError(t, f.Clear())
	assert.Empty(t, f.AccessToken())
	require.NoError(t, f.Clear())
}
