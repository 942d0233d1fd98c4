package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequencerLatestWins(t *testing.T) {
	s := NewSequencer()
	ctx1, t1 := s.Begin(context.Background(), "k")
	ctx2, t2 := s.Begin(context.Background(), "k")
	_, other := s.Begin(context.Background(), "other")

	assert.Error(t, ctx1.Err(), "older request is cancelled")
	assert.False(t, t1.Current())
	assert.True(t, t2.Current())
	assert.True(t, other.Current())

	t1.Done()
	assert.NoError(t, ctx2.Err(), "finishing a stale ticket leaves the newer one alone")

	t2.Done()
	assert.Error(t, ctx2.Err())
	other.Done()
}
