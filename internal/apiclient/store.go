package apiclient

import "sync"

// TokenStore holds the bearer token of one operator. The console stores it in
// the server-side session; the worker keeps it in memory.
type TokenStore interface {
	AccessToken() string
	SetAccessToken(token string)
	ClearAccessToken()
}

// MemoryStore is a TokenStore kept in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store primed with token, which may be empty.
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// AccessToken returns the stored token.
func (m *MemoryStore) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// SetAccessToken replaces the stored token.
func (m *MemoryStore) SetAccessToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

// ClearAccessToken forgets the stored token.
func (m *MemoryStore) ClearAccessToken() {
	m.SetAccessToken("")
}
