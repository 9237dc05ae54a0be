package db_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/models"
)

var baseTime = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "tempo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func stamp(offset time.Duration) string {
	return baseTime.Add(offset).Format(time.RFC3339)
}

func TestEventRoundTrip(t *testing.T) {
	store := newTestStore(t)

	original := models.Event{
		Type:      models.EventFileEdit,
		Timestamp: stamp(0),
		Source:    "vscode",
		Payload: models.EventPayload{
			FilePath:    "/src/main.go",
			Language:    "go",
			ProjectPath: "/src",
		},
	}
	require.NoError(t, store.InsertEvent(&original))
	require.NotZero(t, original.ID)

	events, err := store.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, original, events[0])
}

func TestRecentEventsNewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		event := models.Event{
			Type:      models.EventUserActivity,
			Timestamp: stamp(time.Duration(i) * time.Minute),
			Source:    "test",
			Payload:   models.EventPayload{Kind: "cursor"},
		}
		require.NoError(t, store.InsertEvent(&event))
	}

	events, err := store.RecentEvents(3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, stamp(4*time.Minute), events[0].Timestamp)
	require.Equal(t, stamp(3*time.Minute), events[1].Timestamp)
	require.Equal(t, stamp(2*time.Minute), events[2].Timestamp)
}

func TestRecentSessionsBounds(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		session := models.Session{
			StartTime:       stamp(time.Duration(i) * time.Hour),
			LastActiveTime:  stamp(time.Duration(i)*time.Hour + time.Minute),
			DurationSeconds: 60,
			Status:          models.SessionCompleted,
			Context:         models.SessionContext{AppName: "Editor"},
		}
		require.NoError(t, store.CreateSession(&session))
	}

	all, err := store.RecentSessions(0, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, stamp(2*time.Hour), all[0].StartTime) // newest first

	bounded, err := store.RecentSessions(10, stamp(30*time.Minute), stamp(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	require.Equal(t, stamp(time.Hour), bounded[0].StartTime)
}

func TestExtendAndCompleteSession(t *testing.T) {
	store := newTestStore(t)

	session := models.Session{
		StartTime:      stamp(0),
		LastActiveTime: stamp(0),
		Status:         models.SessionActive,
		Context:        models.SessionContext{AppName: "Chrome"},
	}
	require.NoError(t, store.CreateSession(&session))

	merged := models.SessionContext{AppName: "Chrome", ProjectPath: "/src"}
	require.NoError(t, store.ExtendSession(session.ID, stamp(time.Minute), 60, merged))

	active, err := store.ActiveSession()
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, int64(60), active.DurationSeconds)
	require.Equal(t, merged, active.Context)

	require.NoError(t, store.CompleteSession(session.ID, stamp(2*time.Minute)))
	active, err = store.ActiveSession()
	require.NoError(t, err)
	require.Nil(t, active)

	sessions, err := store.RecentSessions(10, "", "")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, models.SessionCompleted, sessions[0].Status)
	require.NotNil(t, sessions[0].EndTime)
	require.Equal(t, stamp(2*time.Minute), *sessions[0].EndTime)
}

func TestCloseOrphanedSessions(t *testing.T) {
	store := newTestStore(t)

	orphan := models.Session{
		StartTime:      stamp(0),
		LastActiveTime: stamp(10 * time.Minute),
		Status:         models.SessionActive,
	}
	require.NoError(t, store.CreateSession(&orphan))
	done := models.Session{
		StartTime:      stamp(time.Hour),
		LastActiveTime: stamp(time.Hour),
		Status:         models.SessionCompleted,
	}
	require.NoError(t, store.CreateSession(&done))

	closed, err := store.CloseOrphanedSessions()
	require.NoError(t, err)
	require.Equal(t, int64(1), closed)

	sessions, err := store.RecentSessions(10, "", "")
	require.NoError(t, err)
	for _, session := range sessions {
		require.Equal(t, models.SessionCompleted, session.Status)
	}

	// The orphan's end time is its last recorded activity.
	require.Equal(t, stamp(10*time.Minute), *sessions[1].EndTime)
}
