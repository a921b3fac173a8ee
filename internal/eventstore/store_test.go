package eventstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/trk/internal/domain"
)

func TestAppendKeepsOrderAndDuplicates(t *testing.T) {
	s := New()
	s.Append(domain.NewEvent("A"))
	s.Append(domain.NewEvent("B"))
	s.Append(domain.NewEvent("A"))

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "A", snap[0].Name)
	assert.Equal(t, "B", snap[1].Name)
	assert.Equal(t, "A", snap[2].Name)
	assert.Equal(t, 3, s.Len())
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := New()
	s.Append(domain.NewEvent("A", "k", "v"))

	snap := s.Snapshot()
	snap[0].Name = "changed"
	snap[0].Properties.Set("k", "changed")

	again := s.Snapshot()
	assert.Equal(t, "A", again[0].Name)
	v, _ := again[0].Properties.Get("k")
	assert.Equal(t, "v", v)
}

func TestAppendCopiesCallerEvent(t *testing.T) {
	s := New()
	e := domain.NewEvent("A", "k", "v")
	s.Append(e)
	e.Properties.Set("k", "changed")

	v, _ := s.Snapshot()[0].Properties.Get("k")
	assert.Equal(t, "v", v)
}

func TestClearAndReplace(t *testing.T) {
	s := New()
	s.Append(domain.NewEvent("A"))
	s.Clear()
	assert.Empty(t, s.Snapshot())
	assert.Equal(t, 0, s.Len())

	s.Replace([]domain.Event{domain.NewEvent("X"), domain.NewEvent("Y")})
	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "X", snap[0].Name)
}
