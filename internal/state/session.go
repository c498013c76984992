// Package state holds the client-side containers the presentation layer renders
// from. Controllers mutate them only through their action methods.
package state

import (
	"sync"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/sdk"
)

// SessionSnapshot is a copy of the session state at a point in time.
type SessionSnapshot struct {
	User    *sdk.User
	Loading bool
}

// SessionState tracks the signed-in user. Loading starts true until the first check completes.
type SessionState struct {
	mu      sync.RWMutex
	user    *sdk.User
	loading bool
}

func NewSessionState() *SessionState {
	return &SessionState{loading: true}
}

func (s *SessionState) SetUser(user *sdk.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	copied := *user
	s.user = &copied
}

func (s *SessionState) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// User returns a copy of the current user, or nil when signed out.
func (s *SessionState) User() *sdk.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

// UserID returns "" when nobody is signed in.
func (s *SessionState) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *SessionState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionState) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := SessionSnapshot{Loading: s.loading}
	if s.user != nil {
		copied := *s.user
		snapshot.User = &copied
	}
	return snapshot
}
