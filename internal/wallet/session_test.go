package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession(t *testing.T) (*Session, *Keyring, *fakeClock) {
	t.Helper()
	k, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSession(k, SessionConfig{InactivityLimit: 5 * time.Minute})
	s.now = clock.now
	s.RecordActivity()
	return s, k, clock
}

func TestSessionStatus(t *testing.T) {
	s, k, clock := newTestSession(t)

	assert.Equal(t, SessionStatusActive, s.Status())
	assert.Equal(t, 5*time.Minute, s.TimeRemaining())

	clock.advance(4*time.Minute + 30*time.Second)
	assert.Equal(t, SessionStatusExpiring, s.Status())

	k.Lock()
	assert.Equal(t, SessionStatusLocked, s.Status())
	assert.Equal(t, time.Duration(0), s.TimeRemaining())
}

func TestSessionExpireLocksIdleKeyring(t *testing.T) {
	s, k, clock := newTestSession(t)

	clock.advance(4 * time.Minute)
	assert.False(t, s.expire())
	assert.False(t, k.IsLocked())

	s.RecordActivity()
	clock.advance(4 * time.Minute)
	assert.False(t, s.expire(), "activity extends the session")

	clock.advance(2 * time.Minute)
	assert.True(t, s.expire())
	assert.True(t, k.IsLocked())

	assert.False(t, s.expire(), "already locked")
}

func TestSessionDefaults(t *testing.T) {
	k, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)

	s := NewSession(k, SessionConfig{})
	assert.Equal(t, DefaultSessionConfig(), s.config)
}

func TestSessionRunStopsWithContext(t *testing.T) {
	k, err := ImportKeyring("", testMnemonic, "pw", nil)
	require.NoError(t, err)
	s := NewSession(k, SessionConfig{InactivityLimit: time.Millisecond, CleanupInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, k.IsLocked, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
