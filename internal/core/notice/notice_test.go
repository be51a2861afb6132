package notice

import (
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCenter(t *testing.T) (*Center, *clockwork.FakeClock) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewCenter(clock, 3*time.Second, log), clock
}

func TestCenter_ActiveUntilExpiry(t *testing.T) {
	t.Parallel()

	c, clock := newTestCenter(t)

	c.Success("Employee created successfully")
	clock.Advance(2 * time.Second)
	c.Error("Failed to fetch employees")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, LevelSuccess, active[0].Level)
	assert.Equal(t, LevelError, active[1].Level)

	clock.Advance(time.Second)
	active = c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Failed to fetch employees", active[0].Message)

	clock.Advance(2 * time.Second)
	assert.Empty(t, c.Active())
}

func TestCenter_Drain(t *testing.T) {
	t.Parallel()

	c, _ := newTestCenter(t)
	c.Info("You have been logged out")

	drained := c.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, LevelInfo, drained[0].Level)
	assert.Empty(t, c.Active())
}

func TestNewCenter_DefaultTTL(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	c := NewCenter(clock, 0, nil)
	c.Success("ok")

	n := c.Active()[0]
	assert.Equal(t, DefaultTTL, n.ExpiresAt.Sub(n.CreatedAt))
}
