// Package tracker implements the analytics session manager: session
// lifecycle, event tracking, screen timing and write-through persistence.
package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vburojevic/trk/internal/codec"
	"github.com/vburojevic/trk/internal/config"
	"github.com/vburojevic/trk/internal/domain"
	"github.com/vburojevic/trk/internal/eventstore"
	"github.com/vburojevic/trk/internal/kv"
	"github.com/vburojevic/trk/internal/screentimer"
)

// Persisted keys
const (
	KeySessionID = "SessionId"
	KeyEvents    = "Events"
)

var (
	// ErrNoActiveSession is returned by mutating calls made without a session
	ErrNoActiveSession = errors.New("no active session")
	// ErrScreenTrackingNotStarted is returned when ending a screen that was never started
	ErrScreenTrackingNotStarted = errors.New("screen tracking not started")
	// ErrInvalidEvent is returned for an event without a name
	ErrInvalidEvent = errors.New("invalid event")
	// ErrPersist wraps a failure of the underlying store
	ErrPersist = errors.New("persisting session data")
)

// Manager owns the active session, its events and screen timers. All
// operations are safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	store      kv.Store
	codec      *codec.Codec
	events     *eventstore.Store
	screens    *screentimer.Timer
	clock      clock.Clock
	logger     *zap.Logger
	timeLayout string
	sessionID  string
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock sets the clock used for screen timing and eventTime stamps
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithTimeLayout sets the eventTime layout
func WithTimeLayout(layout string) Option {
	return func(m *Manager) {
		if layout != "" {
			m.timeLayout = layout
		}
	}
}

// WithCodec sets the blob codec
func WithCodec(c *codec.Codec) Option {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// New creates a Manager on store and restores any persisted session
func New(store kv.Store, opts ...Option) (*Manager, error) {
	m := &Manager{
		store:      store,
		events:     eventstore.New(),
		clock:      clock.New(),
		logger:     zap.NewNop(),
		timeLayout: config.DefaultTimeLayout,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.codec == nil {
		m.codec = codec.New(m.logger)
	}
	m.screens = screentimer.New(m.clock)

	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// load restores the session id and events from the store
func (m *Manager) load() error {
	id, _, err := m.store.ReadString(KeySessionID)
	if err != nil {
		return fmt.Errorf("loading session id: %w", err)
	}
	blob, _, err := m.store.ReadString(KeyEvents)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	m.sessionID = id
	if blob != "" {
		m.events.Replace(m.codec.Decode(blob))
	}
	m.logger.Debug("loaded persisted session",
		zap.String("session_id", id),
		zap.Int("events", m.events.Len()),
	)
	return nil
}

// StartSession makes id the active session and discards the in-memory events.
// An empty id starts a session with a random UUID. Previous state needs no
// flush since every mutation is already persisted. On a store failure the
// previous session stays active.
func (m *Manager) StartSession(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	previous := m.sessionID
	if err := m.persist(id, nil); err != nil {
		return "", err
	}
	m.sessionID = id
	m.events.Clear()

	m.logger.Debug("session started", zap.String("session_id", id), zap.String("previous_session_id", previous))
	return id, nil
}

// EndSession persists the final state and clears the active session. The
// event blob stays in the store until the next StartSession.
func (m *Manager) EndSession() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionID == "" {
		m.logger.Warn("no active session to end")
		return "", fmt.Errorf("%w to end", ErrNoActiveSession)
	}

	id := m.sessionID
	blob := m.codec.Encode(m.events.Snapshot())
	err := kv.Apply(m.store,
		kv.Put(KeyEvents, blob),
		kv.Delete(KeySessionID),
	)
	m.sessionID = ""
	if err != nil {
		m.logger.Error("persisting final session state failed", zap.String("session_id", id), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}

	m.logger.Debug("session ended", zap.String("session_id", id), zap.Int("events", m.events.Len()))
	return "Session ended: " + id, nil
}

// TrackEvent stamps event with the capture time and records it
func (m *Manager) TrackEvent(event domain.Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackLocked(event)
}

func (m *Manager) trackLocked(event domain.Event) (string, error) {
	if m.sessionID == "" {
		m.logger.Warn("event dropped without active session", zap.String("event", event.Name))
		return "", fmt.Errorf("%w: start a session first", ErrNoActiveSession)
	}
	if event.Name == "" {
		return "", fmt.Errorf("%w: name is empty", ErrInvalidEvent)
	}

	event = event.Clone()
	event.Properties.Set(domain.PropEventTime, m.clock.Now().Format(m.timeLayout))
	if err := codec.Validate(event); err != nil {
		m.logger.Warn("event will not round-trip through the stored blob",
			zap.String("session_id", m.sessionID),
			zap.String("event", event.Name),
			zap.Error(err),
		)
	}

	if err := m.persist(m.sessionID, append(m.events.Snapshot(), event)); err != nil {
		return "", err
	}
	m.events.Append(event)

	msg := fmt.Sprintf("Event tracked: %s with properties: %s", event.Name, event.Properties)
	m.logger.Debug("event tracked", zap.String("session_id", m.sessionID), zap.String("event", event.Name))
	return msg, nil
}

// StartScreenTracking starts the dwell timer for screen
func (m *Manager) StartScreenTracking(screen string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionID == "" {
		m.logger.Warn("screen tracking refused without active session", zap.String("screen", screen))
		return "", fmt.Errorf("%w: start a session first", ErrNoActiveSession)
	}
	m.screens.Start(screen)

	m.logger.Debug("screen entered", zap.String("session_id", m.sessionID), zap.String("screen", screen))
	return "Screen Time Recorded Successfully for " + screen, nil
}

// EndScreenTracking stops the timer for screen and tracks a ScreenTime event
func (m *Manager) EndScreenTracking(screen string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed, err := m.screens.Stop(screen)
	if err != nil {
		m.logger.Warn("screen tracking not started", zap.String("screen", screen))
		return "", fmt.Errorf("%w for %s", ErrScreenTrackingNotStarted, screen)
	}

	event := domain.NewEvent(domain.ScreenTimeEvent,
		domain.PropScreenName, screen,
		domain.PropDurationInSeconds, strconv.FormatInt(int64(elapsed.Seconds()), 10),
		domain.PropEventTime, m.clock.Now().Format(m.timeLayout),
	)
	return m.trackLocked(event)
}

// CurrentSession returns the active session id
func (m *Manager) CurrentSession() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID, m.sessionID != ""
}

// Events returns a snapshot of the session's events
func (m *Manager) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events.Snapshot()
}

// ActiveScreens returns screens with a running timer
func (m *Manager) ActiveScreens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.screens.Active()
}

// PersistedBlob returns the raw stored event blob
func (m *Manager) PersistedBlob() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, _, err := m.store.ReadString(KeyEvents)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return blob, nil
}

// persist writes id and events as one unit. Callers hold mu and apply the
// new state in memory only after persist succeeds.
func (m *Manager) persist(id string, events []domain.Event) error {
	blob := m.codec.Encode(events)
	idOp := kv.Put(KeySessionID, id)
	if id == "" {
		idOp = kv.Delete(KeySessionID)
	}
	if err := kv.Apply(m.store, idOp, kv.Put(KeyEvents, blob)); err != nil {
		m.logger.Error("persisting session data failed", zap.String("session_id", id), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
