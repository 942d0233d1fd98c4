package http

import (
	"sync"
	"time"
)

// Session carries the credentials for one authenticated upstream.
// It is safe for concurrent use and is shared by the client and the login flow.
type Session struct {
	mu       sync.RWMutex
	token    string
	username string
	issuedAt time.Time
}

// SessionInfo is a read-only view of a session.
type SessionInfo struct {
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"`
	IssuedAt      time.Time `json:"issued_at,omitempty"`
}

func NewSession() *Session {
	return &Session{}
}

// Set stores a freshly issued token.
func (s *Session) Set(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.token = token
	s.issuedAt = time.Now()
}

// Token returns the bearer token or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear logs the session out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.username = ""
	s.issuedAt = time.Time{}
}

func (s *Session) Info() SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionInfo{
		Authenticated: s.token != "",
		Username:      s.username,
		IssuedAt:      s.issuedAt,
	}
}
