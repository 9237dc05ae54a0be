package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/models"
)

// Manager derives work sessions from the event stream. It holds at
// most one open session in memory, mirrored by the single row with
// status=active in storage. All transitions are serialized: an event's
// storage writes complete before the next event is applied, and the
// in-memory state only advances after the corresponding write
// succeeds.
type Manager struct {
	mu            sync.Mutex
	store         *db.Store
	idleThreshold time.Duration
	logger        *slog.Logger
	now           func() time.Time

	current *models.Session
}

// NewManager creates a manager with no open session.
func NewManager(store *db.Store, idleThreshold time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		store:         store,
		idleThreshold: idleThreshold,
		logger:        logger,
		now:           time.Now,
	}
}

// Process feeds one event through the state machine: it either opens a
// new session, extends the current one, or closes the current one and
// opens a replacement, depending on the time gap and context match.
func (m *Manager) Process(event *models.Event) error {
	eventTime, err := time.Parse(time.RFC3339, event.Timestamp)
	if err != nil {
		return fmt.Errorf("invalid event timestamp %q: %w", event.Timestamp, err)
	}
	context := deriveContext(event)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return m.startSession(event.Timestamp, context)
	}

	lastActive, err := time.Parse(time.RFC3339, m.current.LastActiveTime)
	if err != nil {
		return fmt.Errorf("invalid session last active time %q: %w", m.current.LastActiveTime, err)
	}

	gap := eventTime.Sub(lastActive)
	if gap > m.idleThreshold || !m.current.Context.Matches(context) {
		if err := m.completeSession(event.Timestamp); err != nil {
			return err
		}
		return m.startSession(event.Timestamp, context)
	}
	return m.extendSession(eventTime, event.Timestamp, context)
}

// Flush force-closes the current session, if any, using the present
// wall-clock time as the end time. Called on daemon shutdown.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return m.completeSession(m.now().UTC().Format(time.RFC3339))
}

// Current returns a copy of the open session, or nil.
func (m *Manager) Current() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	snapshot := *m.current
	return &snapshot
}

func (m *Manager) startSession(timestamp string, context models.SessionContext) error {
	session := models.Session{
		StartTime:      timestamp,
		LastActiveTime: timestamp,
		Status:         models.SessionActive,
		Context:        context,
	}
	if err := m.store.CreateSession(&session); err != nil {
		return err
	}
	m.current = &session
	m.logger.Info("started new session", "id", session.ID, "context", context.Label())
	return nil
}

func (m *Manager) extendSession(eventTime time.Time, timestamp string, context models.SessionContext) error {
	startTime, err := time.Parse(time.RFC3339, m.current.StartTime)
	if err != nil {
		return fmt.Errorf("invalid session start time %q: %w", m.current.StartTime, err)
	}
	duration := eventTime.Sub(startTime).Milliseconds() / 1000
	merged := m.current.Context.Merge(context)

	if err := m.store.ExtendSession(m.current.ID, timestamp, duration, merged); err != nil {
		return err
	}
	m.current.LastActiveTime = timestamp
	m.current.DurationSeconds = duration
	m.current.Context = merged
	return nil
}

func (m *Manager) completeSession(timestamp string) error {
	if err := m.store.CompleteSession(m.current.ID, timestamp); err != nil {
		return err
	}
	m.logger.Info("completed session",
		"id", m.current.ID,
		"duration_seconds", m.current.DurationSeconds,
	)
	m.current = nil
	return nil
}

// deriveContext extracts the continuity context from an event.
// App-focus events carry the application name; anything with a file
// path carries the file fields with the app name defaulted, since
// file events come from editors that rarely name themselves. Idle,
// shutdown and close events carry nothing, and an empty context
// matches any session.
func deriveContext(event *models.Event) models.SessionContext {
	if event.Type == models.EventAppActive {
		return models.SessionContext{AppName: event.Payload.AppName}
	}
	if event.Payload.FilePath != "" {
		return models.SessionContext{
			FilePath:    event.Payload.FilePath,
			ProjectPath: event.Payload.ProjectPath,
			Language:    event.Payload.Language,
			AppName:     "Editor",
		}
	}
	return models.SessionContext{}
}
