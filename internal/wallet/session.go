package wallet

import (
	"context"
	"sync"
	"time"
)

type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusExpiring SessionStatus = "expiring"
	SessionStatusLocked   SessionStatus = "locked"
)

// expiringWindow is how long before the lock a session reports itself as expiring.
const expiringWindow = time.Minute

type SessionConfig struct {
	InactivityLimit time.Duration
	CleanupInterval time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		InactivityLimit: 5 * time.Minute,
		CleanupInterval: 15 * time.Second,
	}
}

// Session locks the keyring again after a period without user activity.
type Session struct {
	keyring *Keyring
	config  SessionConfig

	mu           sync.Mutex
	lastActivity time.Time
	now          func() time.Time
}

func NewSession(keyring *Keyring, config SessionConfig) *Session {
	defaults := DefaultSessionConfig()
	if config.InactivityLimit <= 0 {
		config.InactivityLimit = defaults.InactivityLimit
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}

	return &Session{
		keyring:      keyring,
		config:       config,
		lastActivity: time.Now(),
		now:          time.Now,
	}
}

func (s *Session) RecordActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
}

// TimeRemaining is how long until the keyring locks; zero if it is locked.
func (s *Session) TimeRemaining() time.Duration {
	if s.keyring.IsLocked() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.lastActivity.Add(s.config.InactivityLimit).Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *Session) Status() SessionStatus {
	if s.keyring.IsLocked() {
		return SessionStatusLocked
	}
	if s.TimeRemaining() < expiringWindow {
		return SessionStatusExpiring
	}
	return SessionStatusActive
}

// Run locks the keyring once the inactivity limit passes. It blocks until ctx is done.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.expire()
		}
	}
}

// expire locks an idle keyring and reports whether it did.
func (s *Session) expire() bool {
	if s.keyring.IsLocked() || s.TimeRemaining() > 0 {
		return false
	}

	s.keyring.Lock()
	s.keyring.log.Info("wallet locked after inactivity", "limit", s.config.InactivityLimit)
	return true
}
