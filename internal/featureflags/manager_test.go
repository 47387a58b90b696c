package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, 1), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, 1), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	assert.True(t, m.Enabled("always", 1))
	assert.True(t, m.Enabled("always", 0))
	assert.False(t, m.Enabled("never", 1))

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", 42), "rollout must be deterministic per user")
	}
	assert.False(t, m.Enabled("canary", 0), "anonymous callers are outside partial rollouts")

	enabled := 0
	for uid := uint(1); uid <= 1000; uid++ {
		if m.Enabled("canary", uid) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestEnabledOrDefault(t *testing.T) {
	m := NewManager("google_signin=off")
	assert.False(t, m.EnabledOrDefault(GoogleSignIn, true))
	assert.True(t, m.EnabledOrDefault(LiveNotifications, true))

	var nilManager *Manager
	assert.True(t, nilManager.EnabledOrDefault(GoogleSignIn, true))
	assert.False(t, nilManager.Enabled(GoogleSignIn, 1))
}

func TestEnabledForOrDefault(t *testing.T) {
	m := NewManager("live_notifications=100%")
	assert.True(t, m.EnabledForOrDefault(LiveNotifications, 7, false))
	assert.False(t, m.EnabledForOrDefault(GoogleSignIn, 7, false))

	off := NewManager("live_notifications=0%")
	assert.False(t, off.EnabledForOrDefault(LiveNotifications, 7, true))
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,X=on, y = 20% ,z=off,w=maybe,v=abc% ")

	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, m.Raw())
	assert.Equal(t, []string{"x", "y", "z"}, m.Names())

	snap := m.Snapshot(123)
	assert.Len(t, snap, 3)
	assert.True(t, snap["x"])
	assert.False(t, snap["z"])
}
