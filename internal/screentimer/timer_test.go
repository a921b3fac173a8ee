package screentimer

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopReturnsTruncatedDuration(t *testing.T) {
	mock := clock.NewMock()
	tm := New(mock)

	tm.Start("Home")
	mock.Add(5*time.Second + 900*time.Millisecond)

	d, err := tm.Stop("Home")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
	assert.Empty(t, tm.Active())
}

func TestStopWithoutStart(t *testing.T) {
	tm := New(clock.NewMock())
	tm.Start("Home")

	_, err := tm.Stop("Detail")
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.Equal(t, []string{"Home"}, tm.Active())
}

func TestStartOverwritesRunningTimer(t *testing.T) {
	mock := clock.NewMock()
	tm := New(mock)

	tm.Start("Home")
	mock.Add(10 * time.Second)
	tm.Start("Home")
	mock.Add(2 * time.Second)

	d, err := tm.Stop("Home")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	_, err = tm.Stop("Home")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestActive(t *testing.T) {
	tm := New(clock.NewMock())
	tm.Start("b")
	tm.Start("a")
	assert.Equal(t, []string{"a", "b"}, tm.Active())

	_, err := tm.Stop("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, tm.Active())
}
