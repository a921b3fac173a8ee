package tracker

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/trk/internal/domain"
	"github.com/vburojevic/trk/internal/kv"
)

var testNow = time.Date(2025, 12, 14, 22, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, store kv.Store) (*Manager, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(testNow)
	m, err := New(store, WithClock(mock))
	require.NoError(t, err)
	return m, mock
}

func prop(t *testing.T, e domain.Event, key string) string {
	t.Helper()
	v, ok := e.Properties.Get(key)
	require.True(t, ok, "missing property %s", key)
	return v
}

func TestTrackEventWithoutSession(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)

	_, err := m.TrackEvent(domain.NewEvent("Click"))
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, m.Events())

	_, ok, _ := store.ReadString(KeyEvents)
	assert.False(t, ok, "nothing should be persisted")
}

func TestStartSessionPersistsEmptyBlob(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)

	id, err := m.StartSession("A")
	require.NoError(t, err)
	assert.Equal(t, "A", id)

	current, ok := m.CurrentSession()
	assert.True(t, ok)
	assert.Equal(t, "A", current)

	v, _, _ := store.ReadString(KeySessionID)
	assert.Equal(t, "A", v)
	blob, ok, _ := store.ReadString(KeyEvents)
	assert.True(t, ok)
	assert.Equal(t, "", blob)
}

func TestStartSessionGeneratesID(t *testing.T) {
	m, _ := newTestManager(t, kv.NewMemory())

	id, err := m.StartSession("")
	require.NoError(t, err)
	assert.Len(t, id, 36)

	current, _ := m.CurrentSession()
	assert.Equal(t, id, current)
}

func TestTrackEventStampsAndPersists(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)
	_, err := m.StartSession("A")
	require.NoError(t, err)

	in := domain.NewEvent("ButtonClicked", "screen", "MainActivity", "action", "TrackEvent")
	msg, err := m.TrackEvent(in)
	require.NoError(t, err)
	assert.Equal(t, "Event tracked: ButtonClicked with properties: {screen=MainActivity, action=TrackEvent, eventTime=2025-12-14 22.00.00}", msg)

	_, stamped := in.Properties.Get(domain.PropEventTime)
	assert.False(t, stamped, "caller's event must not be mutated")

	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "2025-12-14 22.00.00", prop(t, events[0], domain.PropEventTime))

	blob, err := m.PersistedBlob()
	require.NoError(t, err)
	assert.Equal(t, "ButtonClicked:screen=MainActivity,action=TrackEvent,eventTime=2025-12-14 22.00.00", blob)
}

func TestTrackEventRejectsEmptyName(t *testing.T) {
	m, _ := newTestManager(t, kv.NewMemory())
	m.StartSession("A")

	_, err := m.TrackEvent(domain.Event{})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Empty(t, m.Events())
}

func TestStartSessionResetsEvents(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)

	m.StartSession("A")
	_, err := m.TrackEvent(domain.NewEvent("Click", "a", "1"))
	require.NoError(t, err)

	blob, _ := m.PersistedBlob()
	assert.NotEmpty(t, blob, "first session's event is persisted before the switch")

	m.StartSession("B")
	assert.Empty(t, m.Events())
	blob, _ = m.PersistedBlob()
	assert.Equal(t, "", blob)
	current, _ := m.CurrentSession()
	assert.Equal(t, "B", current)
}

func TestScreenTracking(t *testing.T) {
	m, mock := newTestManager(t, kv.NewMemory())
	m.StartSession("A")

	_, err := m.StartScreenTracking("X")
	require.NoError(t, err)
	assert.Empty(t, m.Events(), "starting a screen does not record an event")
	assert.Equal(t, []string{"X"}, m.ActiveScreens())

	mock.Add(5 * time.Second)
	msg, err := m.EndScreenTracking("X")
	require.NoError(t, err)
	assert.Contains(t, msg, "Event tracked: ScreenTime")

	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.ScreenTimeEvent, events[0].Name)
	assert.Equal(t, "X", prop(t, events[0], domain.PropScreenName))
	assert.Equal(t, "5", prop(t, events[0], domain.PropDurationInSeconds))
	assert.Equal(t, "2025-12-14 22.00.05", prop(t, events[0], domain.PropEventTime))
	assert.Equal(t, []string{domain.PropScreenName, domain.PropDurationInSeconds, domain.PropEventTime}, events[0].Properties.Keys())
	assert.Empty(t, m.ActiveScreens())
}

func TestEndScreenTrackingNotStarted(t *testing.T) {
	m, _ := newTestManager(t, kv.NewMemory())
	m.StartSession("A")

	_, err := m.EndScreenTracking("Y")
	assert.ErrorIs(t, err, ErrScreenTrackingNotStarted)
	assert.Contains(t, err.Error(), "Y")
	assert.Empty(t, m.Events())
}

func TestStartScreenTrackingWithoutSession(t *testing.T) {
	m, _ := newTestManager(t, kv.NewMemory())

	_, err := m.StartScreenTracking("X")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, m.ActiveScreens())
}

func TestEndScreenTrackingAfterSessionEnded(t *testing.T) {
	m, mock := newTestManager(t, kv.NewMemory())
	m.StartSession("A")
	m.StartScreenTracking("X")
	m.EndSession()
	mock.Add(time.Second)

	_, err := m.EndScreenTracking("X")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, m.ActiveScreens(), "the timer is consumed even though tracking failed")
}

func TestEndSession(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)
	m.StartSession("A")
	m.TrackEvent(domain.NewEvent("Click", "a", "1"))

	msg, err := m.EndSession()
	require.NoError(t, err)
	assert.Equal(t, "Session ended: A", msg)

	_, ok := m.CurrentSession()
	assert.False(t, ok)
	_, ok, _ = store.ReadString(KeySessionID)
	assert.False(t, ok)

	blob, _ := m.PersistedBlob()
	assert.Contains(t, blob, "Click:a=1", "blob outlives the ended session")

	_, err = m.TrackEvent(domain.NewEvent("Late"))
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestEndSessionWithoutSession(t *testing.T) {
	m, _ := newTestManager(t, kv.NewMemory())

	_, err := m.EndSession()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, ok := m.CurrentSession()
	assert.False(t, ok)
}

func TestRestoreFromStore(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)
	m.StartSession("A")
	m.TrackEvent(domain.NewEvent("Click", "a", "1"))
	m.TrackEvent(domain.NewEvent("View", "b", "2"))

	restored, _ := newTestManager(t, store)
	id, ok := restored.CurrentSession()
	assert.True(t, ok)
	assert.Equal(t, "A", id)
	assert.Equal(t, m.Events(), restored.Events())

	_, err := restored.TrackEvent(domain.NewEvent("More"))
	require.NoError(t, err)
	assert.Len(t, restored.Events(), 3)
}

func TestRestoreDropsMalformedRecords(t *testing.T) {
	store := kv.NewMemory()
	store.WriteString(KeyEvents, "Click:a=1;Broken;View:b=2,bad")

	m, _ := newTestManager(t, store)
	_, ok := m.CurrentSession()
	assert.False(t, ok)

	events := m.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Click", events[0].Name)
}

func TestConcurrentTrackingLosesNothing(t *testing.T) {
	store := kv.NewMemory()
	m, _ := newTestManager(t, store)
	m.StartSession("A")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.TrackEvent(domain.NewEvent(fmt.Sprintf("E%d", i)))
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.Events(), 50)
	restored, _ := newTestManager(t, store)
	assert.Len(t, restored.Events(), 50)
}

// failingStore fails every write after armed is set
type failingStore struct {
	*kv.Memory
	armed bool
}

func (f *failingStore) WriteString(key, value string) error {
	if f.armed {
		return errors.New("disk full")
	}
	return f.Memory.WriteString(key, value)
}

func (f *failingStore) RemoveKey(key string) error {
	if f.armed {
		return errors.New("disk full")
	}
	return f.Memory.RemoveKey(key)
}

func TestPersistFailureIsReported(t *testing.T) {
	// noBatch hides the promoted WriteBatch so Apply falls back to single writes.
	store := &failingStore{Memory: kv.NewMemory()}
	m, _ := newTestManager(t, noBatch{store})
	m.StartSession("A")

	store.armed = true
	_, err := m.TrackEvent(domain.NewEvent("Click"))
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorContains(t, err, "disk full")
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	store := &failingStore{Memory: kv.NewMemory()}
	m, _ := newTestManager(t, noBatch{store})
	_, err := m.StartSession("A")
	require.NoError(t, err)
	_, err = m.TrackEvent(domain.NewEvent("First"))
	require.NoError(t, err)

	store.armed = true
	_, err = m.TrackEvent(domain.NewEvent("Click"))
	require.ErrorIs(t, err, ErrPersist)
	require.Len(t, m.Events(), 1)

	_, err = m.StartSession("B")
	require.ErrorIs(t, err, ErrPersist)
	id, active := m.CurrentSession()
	assert.True(t, active)
	assert.Equal(t, "A", id)
	require.Len(t, m.Events(), 1)

	store.armed = false
	_, err = m.TrackEvent(domain.NewEvent("Retry"))
	require.NoError(t, err)

	names := make([]string, 0, 2)
	for _, e := range m.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"First", "Retry"}, names)

	blob, err := m.PersistedBlob()
	require.NoError(t, err)
	assert.NotContains(t, blob, "Click")
	assert.Contains(t, blob, "First:")
	assert.Contains(t, blob, "Retry:")
}

// noBatch hides the BatchWriter implementation of the wrapped store
type noBatch struct {
	s kv.Store
}

func (n noBatch) ReadString(key string) (string, bool, error) { return n.s.ReadString(key) }
func (n noBatch) WriteString(key, value string) error         { return n.s.WriteString(key, value) }
func (n noBatch) RemoveKey(key string) error                  { return n.s.RemoveKey(key) }

func TestWithTimeLayout(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(testNow)
	m, err := New(kv.NewMemory(), WithClock(mock), WithTimeLayout("20060102T150405"))
	require.NoError(t, err)
	m.StartSession("A")
	m.TrackEvent(domain.NewEvent("Click"))

	assert.Equal(t, "20251214T220000", prop(t, m.Events()[0], domain.PropEventTime))
}
