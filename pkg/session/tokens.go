package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore is the durable home of the two credential strings. Their
// presence at boot is the sole signal that a prior login exists.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string) error
	Clear() error
}

// MemoryTokens keeps tokens for the process lifetime only.
type MemoryTokens struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func NewMemoryTokens() *MemoryTokens { return &MemoryTokens{} }

func (m *MemoryTokens) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *MemoryTokens) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh
}

func (m *MemoryTokens) SetTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
	return nil
}

func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	return nil
}

// FileTokens persists the pair as a small JSON file, so a CLI session
// survives process restarts the way browser storage survives reloads.
type FileTokens struct {
	mu   sync.Mutex
	path string
}

func NewFileTokens(path string) *FileTokens { return &FileTokens{path: path} }

type tokenFile struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (f *FileTokens) read() tokenFile {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return tokenFile{}
	}
	var t tokenFile
	if json.Unmarshal(raw, &t) != nil {
		return tokenFile{}
	}
	return t
}

func (f *FileTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read().AccessToken
}

func (f *FileTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read().RefreshToken
}

func (f *FileTokens) SetTokens(access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(tokenFile{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(f.path, raw, 0o600)
}

func (f *FileTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
