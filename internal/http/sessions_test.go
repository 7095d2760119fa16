package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRegistry_CreateGet(t *testing.T) {
	reg := NewSessionRegistry(time.Hour, 1, 1)

	sess := reg.Create()
	got, ok := reg.Get(sess.ID)

	require.True(t, ok)
	assert.Same(t, sess, got)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestSessionRegistry_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewSessionRegistry(30*time.Minute, 1, 1)
	reg.now = func() time.Time { return now }

	stale := reg.Create()
	now = now.Add(20 * time.Minute)
	fresh := reg.Create()
	now = now.Add(15 * time.Minute)

	assert.Equal(t, 1, reg.Sweep())
	_, ok := reg.Get(stale.ID)
	assert.False(t, ok)
	_, ok = reg.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSessionRegistry_GetKeepsSessionAlive(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	reg := NewSessionRegistry(30*time.Minute, 1, 1)
	reg.now = func() time.Time { return now }

	sess := reg.Create()
	now = now.Add(25 * time.Minute)
	_, _ = reg.Get(sess.ID)
	now = now.Add(25 * time.Minute)

	assert.Equal(t, 0, reg.Sweep())
	assert.Equal(t, 1, reg.Len())
}

func TestSessionRegistry_Allow(t *testing.T) {
	reg := NewSessionRegistry(time.Hour, 0.001, 2)
	sess := reg.Create()

	assert.True(t, reg.Allow(sess.ID))
	assert.True(t, reg.Allow(sess.ID))
	assert.False(t, reg.Allow(sess.ID))
	assert.False(t, reg.Allow("unknown"))
}
