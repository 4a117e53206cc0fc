package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionReaper_DefaultConfig(t *testing.T) {
	config := DefaultSessionReaperConfig()

	assert.Equal(t, 1*time.Minute, config.Interval)
	assert.Equal(t, 30*time.Minute, config.IdleTTL)
}

func TestSessionReaper_Sweep(t *testing.T) {
	f := newSessionFixture(t)
	reaper := NewSessionReaper(f.manager, zerolog.Nop(), SessionReaperConfig{})
	assert.Equal(t, 30*time.Minute, reaper.idleTTL)

	_, err := f.manager.Open(context.Background(), credFor("u-1"))
	require.NoError(t, err)

	assert.Equal(t, 0, reaper.Sweep())
	f.scheduler.Advance(31 * time.Minute)
	assert.Equal(t, 1, reaper.Sweep())
	assert.Equal(t, 0, f.manager.Count())
}

func TestSessionReaper_StartStop(t *testing.T) {
	f := newSessionFixture(t)
	reaper := NewSessionReaper(f.manager, zerolog.Nop(), SessionReaperConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reaper.Start(ctx)
	reaper.Start(ctx)
	assert.True(t, reaper.IsRunning())

	reaper.Stop()
	assert.False(t, reaper.IsRunning())
	assert.NotPanics(t, reaper.Stop)
}

func TestSessionReaper_StopsOnContextCancel(t *testing.T) {
	f := newSessionFixture(t)
	reaper := NewSessionReaper(f.manager, zerolog.Nop(), SessionReaperConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	reaper.Start(ctx)
	cancel()

	require.Eventually(t, func() bool { return !reaper.IsRunning() }, time.Second, 5*time.Millisecond)
}
