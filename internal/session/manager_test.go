package session_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/balkashynov/tempo/internal/config"
	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/models"
	"github.com/balkashynov/tempo/internal/session"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "tempo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestManager(t *testing.T) (*session.Manager, *db.Store) {
	store := newTestStore(t)
	return session.NewManager(store, config.DefaultIdleThreshold, nil), store
}

func appEvent(offset time.Duration, app string) *models.Event {
	return &models.Event{
		Type:      models.EventAppActive,
		Timestamp: baseTime.Add(offset).Format(time.RFC3339),
		Source:    "test",
		Payload:   models.EventPayload{AppName: app},
	}
}

func fileEvent(offset time.Duration, eventType models.EventType, file, project string) *models.Event {
	return &models.Event{
		Type:      eventType,
		Timestamp: baseTime.Add(offset).Format(time.RFC3339),
		Source:    "test",
		Payload:   models.EventPayload{FilePath: file, ProjectPath: project, Language: "go"},
	}
}

func allSessions(t *testing.T, store *db.Store) []models.Session {
	t.Helper()
	sessions, err := store.RecentSessions(1000, "", "")
	require.NoError(t, err)
	return sessions
}

func countActive(sessions []models.Session) int {
	active := 0
	for _, s := range sessions {
		if s.Status == models.SessionActive {
			active++
		}
	}
	return active
}

func TestEventsWithinThresholdMergeIntoOneSession(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(appEvent(0, "X")))
	require.NoError(t, manager.Process(appEvent(120*time.Second, "X")))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 1)
	require.Equal(t, models.SessionActive, sessions[0].Status)
	require.Equal(t, int64(120), sessions[0].DurationSeconds)
}

func TestEventsBeyondThresholdSplitSessions(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(appEvent(0, "X")))
	require.NoError(t, manager.Process(appEvent(121*time.Second, "X")))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 2)
	require.Equal(t, 1, countActive(sessions))
}

func TestProjectChangeAlwaysSplits(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(fileEvent(0, models.EventFileOpen, "a.go", "/proj/a")))
	require.NoError(t, manager.Process(fileEvent(time.Second, models.EventFileOpen, "b.go", "/proj/b")))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 2)
}

func TestMissingProjectNeverSplitsAndMergesContext(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(fileEvent(0, models.EventFileOpen, "a.go", "/proj/a")))

	// No project on the follow-up event: must extend, not split.
	noProject := fileEvent(10*time.Second, models.EventFileEdit, "b.go", "")
	require.NoError(t, manager.Process(noProject))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 1)
	require.Equal(t, "/proj/a", sessions[0].Context.ProjectPath)
	require.Equal(t, "b.go", sessions[0].Context.FilePath)
}

func TestEmptyContextEventsExtendAnySession(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(appEvent(0, "Chrome")))
	idle := &models.Event{
		Type:      models.EventIdleEnd,
		Timestamp: baseTime.Add(30 * time.Second).Format(time.RFC3339),
		Source:    "test",
	}
	require.NoError(t, manager.Process(idle))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 1)
	require.Equal(t, "Chrome", sessions[0].Context.AppName)
	require.Equal(t, int64(30), sessions[0].DurationSeconds)
}

func TestDurationRecomputedFromStartTime(t *testing.T) {
	manager, _ := newTestManager(t)

	require.NoError(t, manager.Process(appEvent(0, "X")))
	require.NoError(t, manager.Process(appEvent(45*time.Second, "X")))
	require.NoError(t, manager.Process(appEvent(90*time.Second, "X")))

	current := manager.Current()
	require.NotNil(t, current)
	require.Equal(t, int64(90), current.DurationSeconds)
}

// The concrete scenario: two file events in project A, a quick switch
// to project B, then a long gap into Chrome. Three sessions.
func TestProjectSwitchAndIdleScenario(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(fileEvent(0, models.EventFileOpen, "a.go", "/proj/a")))
	require.NoError(t, manager.Process(fileEvent(5*time.Second, models.EventFileEdit, "a.go", "/proj/a")))
	require.NoError(t, manager.Process(fileEvent(9*time.Second, models.EventFileOpen, "b.go", "/proj/b")))
	require.NoError(t, manager.Process(appEvent(309*time.Second, "Chrome")))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 3)
	require.Equal(t, 1, countActive(sessions))

	// RecentSessions is newest-first.
	require.Equal(t, "Chrome", sessions[0].Context.AppName)
	require.Equal(t, models.SessionActive, sessions[0].Status)
	require.Equal(t, "/proj/b", sessions[1].Context.ProjectPath)
	require.Equal(t, "/proj/a", sessions[2].Context.ProjectPath)
	require.Equal(t, int64(5), sessions[2].DurationSeconds)
}

func TestFlushClosesOpenSession(t *testing.T) {
	manager, store := newTestManager(t)

	require.NoError(t, manager.Process(appEvent(0, "X")))
	require.NoError(t, manager.Flush())
	require.Nil(t, manager.Current())

	sessions := allSessions(t, store)
	require.Len(t, sessions, 1)
	require.Equal(t, models.SessionCompleted, sessions[0].Status)
	require.NotNil(t, sessions[0].EndTime)

	// Flushing again is a no-op.
	require.NoError(t, manager.Flush())
}

// Property: whatever sequence of events arrives, storage never holds
// more than one active session, and an open session's duration always
// equals the elapsed seconds since its start.
func TestAtMostOneActiveSessionProperty(t *testing.T) {
	tempDir := t.TempDir()
	counter := 0

	rapid.Check(t, func(rt *rapid.T) {
		counter++
		store, err := db.Open(filepath.Join(tempDir, fmt.Sprintf("prop-%d.db", counter)))
		if err != nil {
			rt.Fatalf("open store: %v", err)
		}
		defer store.Close()

		manager := session.NewManager(store, config.DefaultIdleThreshold, nil)

		eventTypes := []models.EventType{
			models.EventAppActive, models.EventFileOpen, models.EventFileEdit,
			models.EventFileClose, models.EventIdleStart, models.EventIdleEnd,
			models.EventUserActivity,
		}

		offset := time.Duration(0)
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			offset += time.Duration(rapid.IntRange(0, 300).Draw(rt, "gap_seconds")) * time.Second
			eventType := eventTypes[rapid.IntRange(0, len(eventTypes)-1).Draw(rt, "event_type")]

			event := &models.Event{
				Type:      eventType,
				Timestamp: baseTime.Add(offset).Format(time.RFC3339),
				Source:    "prop",
			}
			switch eventType {
			case models.EventAppActive:
				event.Payload.AppName = rapid.SampledFrom([]string{"Chrome", "Slack", "Terminal"}).Draw(rt, "app")
			case models.EventFileOpen, models.EventFileEdit, models.EventFileClose:
				event.Payload.FilePath = rapid.SampledFrom([]string{"a.go", "b.go"}).Draw(rt, "file")
				event.Payload.ProjectPath = rapid.SampledFrom([]string{"/p1", "/p2", ""}).Draw(rt, "project")
			}

			if err := manager.Process(event); err != nil {
				rt.Fatalf("process: %v", err)
			}

			sessions, err := store.RecentSessions(1000, "", "")
			if err != nil {
				rt.Fatalf("query sessions: %v", err)
			}
			if active := countActive(sessions); active > 1 {
				rt.Fatalf("found %d active sessions after step %d", active, i)
			}

			if current := manager.Current(); current != nil {
				start, _ := time.Parse(time.RFC3339, current.StartTime)
				last, _ := time.Parse(time.RFC3339, current.LastActiveTime)
				want := last.Sub(start).Milliseconds() / 1000
				if current.DurationSeconds != want {
					rt.Fatalf("duration %d, want %d", current.DurationSeconds, want)
				}
			}
		}
	})
}
