package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowDrainsAndRefills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1", 2, 1))
	assert.True(t, l.Allow("10.0.0.1", 2, 1))
	assert.False(t, l.Allow("10.0.0.1", 2, 1))
	assert.True(t, l.Allow("10.0.0.2", 2, 1), "keys are independent")

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, l.Allow("10.0.0.1", 2, 1))
	assert.False(t, l.Allow("10.0.0.1", 2, 1))
}

func TestSweep(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New()
	l.now = func() time.Time { return now }

	l.Allow("a", 1, 1)
	now = now.Add(time.Minute)
	l.Allow("b", 1, 1)

	assert.Equal(t, 1, l.Sweep(30*time.Second))
	assert.Len(t, l.m, 1)
}
