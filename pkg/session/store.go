// Package session owns "who is logged in and with what role" and the
// durable lifecycle of the token pair.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"showroom/pkg/apiclient"
	"showroom/pkg/authz"
)

// State is the boot state machine: Loading until identity resolution
// settles, Resolved after, with or without an identity.
type State int

const (
	StateLoading State = iota
	StateResolved
)

// Identity is the resolved actor. A session is either fully present or
// fully absent; authorization never acts on a partial one.
type Identity struct {
	ID        uint       `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      authz.Role `json:"role"`
	AvatarURL string     `json:"avatarUrl"`
	CreatedAt time.Time  `json:"createdAt"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Store is the single source of truth for the current session.
type Store struct {
	api    *apiclient.Client
	tokens TokenStore

	mu       sync.RWMutex
	state    State
	identity *Identity
}

// New builds a Store over the given API base. The returned store feeds
// its own token storage into the API client's bearer injection.
func New(baseURL string, tokens TokenStore) *Store {
	s := &Store{tokens: tokens}
	s.api = apiclient.New(baseURL, tokens.AccessToken)
	return s
}

// API exposes the authenticated client for callers doing their own
// resource calls.
func (s *Store) API() *apiclient.Client { return s.api }

// AccessToken is a token factory for the push connections.
func (s *Store) AccessToken() string { return s.tokens.AccessToken() }

// Boot resolves the stored credentials, if any, into an identity. No
// stored token resolves directly to an empty session; a token that the
// server rejects clears storage. Either way the store ends Resolved.
func (s *Store) Boot(ctx context.Context) {
	if s.tokens.AccessToken() == "" {
		s.setResolved(nil)
		return
	}
	id, err := s.whoAmI(ctx)
	if err != nil {
		log.Printf("[session] boot identity resolution failed: %v", err)
		if cerr := s.tokens.Clear(); cerr != nil {
			log.Printf("[session] clear tokens: %v", cerr)
		}
		s.setResolved(nil)
		return
	}
	s.setResolved(id)
}

// Login exchanges credentials for a token pair, persists it, then
// resolves the full identity. A failed login leaves any prior session
// untouched.
func (s *Store) Login(ctx context.Context, email, password string) (Identity, error) {
	body := map[string]string{"email": email, "password": password}
	return s.exchange(ctx, "/Authentication/login", body)
}

// LoginWithIDToken is the federated variant: an identity-provider token
// is exchanged for the same local pair.
func (s *Store) LoginWithIDToken(ctx context.Context, idToken string) (Identity, error) {
	body := map[string]string{"idToken": idToken}
	return s.exchange(ctx, "/Authentication/google/token", body)
}

func (s *Store) exchange(ctx context.Context, path string, body interface{}) (Identity, error) {
	var pair tokenPair
	if err := s.api.Post(ctx, path, body, &pair); err != nil {
		return Identity{}, err
	}
	// Resolve the identity with the fresh token before touching durable
	// storage: a session is fully present or fully absent, so a failed
	// resolution must leave the prior pair and identity intact.
	fresh := apiclient.New(s.api.BaseURL(), func() string { return pair.AccessToken })
	id, err := whoAmI(ctx, fresh)
	if err != nil {
		return Identity{}, err
	}
	if err := s.tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return Identity{}, err
	}
	s.setResolved(id)
	return *id, nil
}

// Logout invalidates the session server-side on a best-effort basis and
// unconditionally clears local state. Safe to call when already logged
// out.
func (s *Store) Logout(ctx context.Context) {
	if s.tokens.AccessToken() != "" {
		if err := s.api.Post(ctx, "/Authentication/logout", nil, nil); err != nil {
			log.Printf("[session] server logout failed, clearing locally: %v", err)
		}
	}
	if err := s.tokens.Clear(); err != nil {
		log.Printf("[session] clear tokens: %v", err)
	}
	s.setResolved(nil)
}

// Refresh re-resolves the identity from the backend, used after
// profile-affecting actions.
func (s *Store) Refresh(ctx context.Context) error {
	id, err := s.whoAmI(ctx)
	if err != nil {
		return err
	}
	s.setResolved(id)
	return nil
}

// RotateTokens trades the refresh token for a new pair.
func (s *Store) RotateTokens(ctx context.Context) error {
	refresh := s.tokens.RefreshToken()
	if refresh == "" {
		return &apiclient.APIError{HTTPStatus: 401, Message: "no refresh token"}
	}
	var pair tokenPair
	if err := s.api.Post(ctx, "/refresh-token", map[string]string{"refreshToken": refresh}, &pair); err != nil {
		return err
	}
	return s.tokens.SetTokens(pair.AccessToken, pair.RefreshToken)
}

// HasRole reports whether a session exists and its role is in the set.
func (s *Store) HasRole(roles ...authz.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return false
	}
	for _, r := range roles {
		if r == s.identity.Role {
			return true
		}
	}
	return false
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns a copy of the live identity, ok=false when absent.
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Resolved and Role satisfy the authz gate's view of the store.
func (s *Store) Resolved() bool { return s.State() == StateResolved }

func (s *Store) Role() (authz.Role, bool) {
	id, ok := s.Identity()
	if !ok {
		return "", false
	}
	return id.Role, true
}

func (s *Store) whoAmI(ctx context.Context) (*Identity, error) {
	return whoAmI(ctx, s.api)
}

func whoAmI(ctx context.Context, api *apiclient.Client) (*Identity, error) {
	var raw struct {
		ID        uint      `json:"id"`
		FullName  string    `json:"fullName"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		AvatarURL string    `json:"avatarUrl"`
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := api.Get(ctx, "/User/me", &raw); err != nil {
		return nil, err
	}
	role, ok := authz.ParseRole(raw.Role)
	if !ok {
		// Unknown roles still authenticate; routing falls back to the
		// default landing path.
		role = authz.Role(raw.Role)
	}
	return &Identity{
		ID:        raw.ID,
		FullName:  raw.FullName,
		Email:     raw.Email,
		Role:      role,
		AvatarURL: raw.AvatarURL,
		CreatedAt: raw.CreatedAt,
	}, nil
}

func (s *Store) setResolved(id *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateResolved
	s.identity = id
}
