package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tempo/internal/config"
	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/models"
)

func addSession(t *testing.T, store *db.Store, start time.Time, durationSeconds int64, context models.SessionContext) {
	t.Helper()
	session := models.Session{
		StartTime:       start.Format(time.RFC3339),
		LastActiveTime:  start.Add(time.Duration(durationSeconds) * time.Second).Format(time.RFC3339),
		DurationSeconds: durationSeconds,
		Status:          models.SessionCompleted,
		Context:         context,
	}
	require.NoError(t, store.CreateSession(&session))
}

func TestAnalyticsByProject(t *testing.T) {
	store := newTestStore(t)

	addSession(t, store, baseTime, 100, models.SessionContext{ProjectPath: "/p1", Language: "go"})
	addSession(t, store, baseTime.Add(time.Hour), 200, models.SessionContext{ProjectPath: "/p1", Language: "go"})
	addSession(t, store, baseTime.Add(2*time.Hour), 50, models.SessionContext{ProjectPath: "/p2"})
	// No project: excluded from project grouping.
	addSession(t, store, baseTime.Add(3*time.Hour), 999, models.SessionContext{AppName: "Chrome"})

	rows, err := store.Analytics("project", "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ordered by total duration, largest first.
	assert.Equal(t, "/p1", rows[0].Key)
	assert.Equal(t, int64(300), rows[0].TotalDurationSeconds)
	assert.Equal(t, int64(2), rows[0].SessionCount)
	assert.Equal(t, "/p2", rows[1].Key)
	assert.Equal(t, int64(50), rows[1].TotalDurationSeconds)
}

func TestAnalyticsByHourAndTimeBounds(t *testing.T) {
	store := newTestStore(t)

	addSession(t, store, baseTime, 60, models.SessionContext{})                    // 09:xx
	addSession(t, store, baseTime.Add(15*time.Minute), 60, models.SessionContext{}) // 09:xx
	addSession(t, store, baseTime.Add(2*time.Hour), 60, models.SessionContext{})    // 11:xx

	rows, err := store.Analytics("hour", "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "09", rows[0].Key)
	assert.Equal(t, int64(120), rows[0].TotalDurationSeconds)
	assert.Equal(t, "11", rows[1].Key)

	bounded, err := store.Analytics("hour", baseTime.Add(time.Hour).Format(time.RFC3339), "")
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "11", bounded[0].Key)
}

func TestAnalyticsUnknownGroupBy(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Analytics("minute", "", "")
	require.Error(t, err)
}

func TestTrendSparsePivot(t *testing.T) {
	store := newTestStore(t)

	today := time.Now().UTC().Truncate(24 * time.Hour).Add(12 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	addSession(t, store, yesterday, 100, models.SessionContext{Language: "go"})
	addSession(t, store, yesterday.Add(time.Hour), 40, models.SessionContext{Language: "rust"})
	addSession(t, store, today, 25, models.SessionContext{Language: "go"})
	// No language: never appears in the pivot.
	addSession(t, store, today.Add(time.Hour), 999, models.SessionContext{AppName: "Chrome"})

	points, err := store.Trend("language", 7)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, yesterday.Format("2006-01-02"), points[0].Date)
	assert.Equal(t, map[string]int64{"go": 100, "rust": 40}, points[0].Values)

	// rust has no entry today: sparse, not zero.
	assert.Equal(t, today.Format("2006-01-02"), points[1].Date)
	assert.Equal(t, map[string]int64{"go": 25}, points[1].Values)
}

func TestWorkPatternAttributesGapsByLaterEvent(t *testing.T) {
	store := newTestStore(t)

	t0 := time.Now().UTC().Add(-time.Hour)
	insert := func(offset time.Duration, eventType models.EventType) {
		event := models.Event{
			Type:      eventType,
			Timestamp: t0.Add(offset).Format(time.RFC3339),
			Source:    "test",
		}
		require.NoError(t, store.InsertEvent(&event))
	}

	insert(0, models.EventFileOpen)
	insert(30*time.Second, models.EventFileEdit)  // 30s gap -> writing
	insert(400*time.Second, models.EventAppActive) // 370s gap > threshold -> idle, nothing

	rows, err := store.WorkPattern(7, config.DefaultIdleThreshold)
	require.NoError(t, err)
	require.Len(t, rows, 7) // every day in the window, zeros included

	var reading, writing int64
	for _, row := range rows {
		reading += row.ReadingSeconds
		writing += row.WritingSeconds
	}
	assert.Equal(t, int64(30), writing)
	assert.Equal(t, int64(0), reading)
}

func TestWorkPatternReadingGaps(t *testing.T) {
	store := newTestStore(t)

	t0 := time.Now().UTC().Add(-30 * time.Minute)
	events := []struct {
		offset time.Duration
		kind   models.EventType
	}{
		{0, models.EventFileOpen},
		{60 * time.Second, models.EventUserActivity}, // 60s -> reading
		{90 * time.Second, models.EventFileEdit},     // 30s -> writing
		{150 * time.Second, models.EventFileClose},   // 60s -> reading
	}
	for _, e := range events {
		event := models.Event{Type: e.kind, Timestamp: t0.Add(e.offset).Format(time.RFC3339), Source: "test"}
		require.NoError(t, store.InsertEvent(&event))
	}

	rows, err := store.WorkPattern(2, config.DefaultIdleThreshold)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var reading, writing int64
	for _, row := range rows {
		reading += row.ReadingSeconds
		writing += row.WritingSeconds
	}
	assert.Equal(t, int64(120), reading)
	assert.Equal(t, int64(30), writing)
}

func TestProjectFilesBreakdown(t *testing.T) {
	store := newTestStore(t)

	today := time.Now().UTC().Add(-2 * time.Hour)
	addSession(t, store, today, 120, models.SessionContext{ProjectPath: "/p1", FilePath: "main.go"})
	addSession(t, store, today.Add(10*time.Minute), 60, models.SessionContext{ProjectPath: "/p1", FilePath: "main.go"})
	addSession(t, store, today.Add(20*time.Minute), 30, models.SessionContext{ProjectPath: "/p1", FilePath: "util.go"})
	addSession(t, store, today.Add(30*time.Minute), 500, models.SessionContext{ProjectPath: "/p2", FilePath: "other.go"})

	rows, err := store.ProjectFiles("/p1", 7)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "main.go", rows[0].FilePath)
	assert.Equal(t, int64(180), rows[0].DurationSeconds)
	assert.Equal(t, today.Add(10*time.Minute+60*time.Second).Format(time.RFC3339), rows[0].LastActive)
	assert.Equal(t, "util.go", rows[1].FilePath)
}
