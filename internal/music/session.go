package music

import (
	"errors"
	"sync"
)

// OutputMode controls what the play command produces
type OutputMode string

const (
	// ModeWidget embeds the track as a room widget
	ModeWidget OutputMode = "widget"
	// ModeLink replies with a plain link message
	ModeLink OutputMode = "link"
)

// ErrInvalidMode is returned when setting a mode outside widget|link
var ErrInvalidMode = errors.New("invalid output mode")

// userSession holds the per-user search state. Results are replaced
// wholesale on every search; there is no history.
type userSession struct {
	results []Track
	mode    OutputMode
}

// SessionStore keeps per-user search results and output mode preferences
// in memory for the lifetime of the process. It is safe for concurrent
// use by commands from different users.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*userSession
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*userSession),
	}
}

// RecordResults unconditionally replaces the stored result list for the user
func (s *SessionStore) RecordResults(userID string, results []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[userID]
	if session == nil {
		session = &userSession{}
		s.sessions[userID] = session
	}
	session.results = results
}

// Results returns the user's last search results, nil when none stored
func (s *SessionStore) Results(userID string) []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session := s.sessions[userID]; session != nil {
		return session.results
	}
	return nil
}

// SetMode stores the user's output mode preference. Values outside
// widget|link return ErrInvalidMode and leave the stored preference
// unchanged.
func (s *SessionStore) SetMode(userID string, mode OutputMode) error {
	if mode != ModeWidget && mode != ModeLink {
		return ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session := s.sessions[userID]
	if session == nil {
		session = &userSession{}
		s.sessions[userID] = session
	}
	session.mode = mode
	return nil
}

// Mode returns the user's output mode preference, defaulting to widget
func (s *SessionStore) Mode(userID string) OutputMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session := s.sessions[userID]; session != nil && session.mode != "" {
		return session.mode
	}
	return ModeWidget
}
