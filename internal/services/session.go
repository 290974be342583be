package services

import (
	"log"
	"sync"
	"time"

	"github.com/amitgupta-exe/microlearn-backend/internal/models"
)

// SessionState marks where a registration dialogue currently is
type SessionState string

const (
	StateAwaitingBegin SessionState = "awaiting_begin"
	StateRegistration  SessionState = "registration"
)

// Session holds the transient state of one registration dialogue. It carries
// no course-delivery state; delivery is fully re-derivable from the progress
// record, so losing a session only restarts registration.
type Session struct {
	Phone      string                 `json:"phone"`
	State      SessionState           `json:"state"`
	Profile    *models.LearnerProfile `json:"profile"`
	CreatedAt  time.Time              `json:"created_at"`
	LastActive time.Time              `json:"last_active"`
	ExpiresAt  time.Time              `json:"expires_at"`
}

// SessionStore abstracts registration-session storage by canonical phone key
type SessionStore interface {
	Get(phone string) (*Session, bool)
	Set(phone string, session *Session)
	Delete(phone string)
}

// SessionManager is an in-memory SessionStore with a TTL and a periodic
// eviction sweep, so abandoned registrations do not accumulate for the
// lifetime of the process.
type SessionManager struct {
	sessions   map[string]*Session
	mu         sync.RWMutex
	sessionTTL time.Duration
	stop       chan struct{}
}

// NewSessionManager creates a session manager and starts its cleanup routine
func NewSessionManager() *SessionManager {
	sm := &SessionManager{
		sessions:   make(map[string]*Session),
		sessionTTL: 30 * time.Minute,
		stop:       make(chan struct{}),
	}

	go sm.cleanupExpiredSessions()

	return sm
}

// Get returns the live session for a phone, refreshing its expiry
func (sm *SessionManager) Get(phone string) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[phone]
	if !exists {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(sm.sessions, phone)
		return nil, false
	}

	session.LastActive = time.Now()
	session.ExpiresAt = time.Now().Add(sm.sessionTTL)
	return session, true
}

// Set stores a session under the phone key
func (sm *SessionManager) Set(phone string, session *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	session.Phone = phone
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.LastActive = now
	session.ExpiresAt = now.Add(sm.sessionTTL)
	sm.sessions[phone] = session
}

// Delete drops a session
func (sm *SessionManager) Delete(phone string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, phone)
}

// ActiveCount returns the number of live sessions (for monitoring)
func (sm *SessionManager) ActiveCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	count := 0
	now := time.Now()
	for _, session := range sm.sessions {
		if now.Before(session.ExpiresAt) {
			count++
		}
	}
	return count
}

// Stop halts the cleanup routine
func (sm *SessionManager) Stop() {
	close(sm.stop)
}

// cleanupExpiredSessions runs periodically to clean up expired sessions
func (sm *SessionManager) cleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-sm.stop:
			return
		case <-ticker.C:
			sm.mu.Lock()
			for phone, session := range sm.sessions {
				if time.Now().After(session.ExpiresAt) {
					delete(sm.sessions, phone)
					log.Printf("Cleaned up expired registration session for %s", phone)
				}
			}
			sm.mu.Unlock()
		}
	}
}
