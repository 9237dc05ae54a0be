package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/balkashynov/tempo/internal/models"
)

// AnalyticsRow is one bucket of grouped session totals.
type AnalyticsRow struct {
	Key                  string `json:"key"`
	TotalDurationSeconds int64  `json:"total_duration_seconds"`
	SessionCount         int64  `json:"session_count"`
}

// TrendPoint is one day of the per-key duration pivot. Values is
// sparse: a key with no activity that day is simply absent.
type TrendPoint struct {
	Date   string
	Values map[string]int64
}

// MarshalJSON flattens the point into {"date": ..., "<key>": seconds}.
func (p TrendPoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(p.Values)+1)
	for key, seconds := range p.Values {
		flat[key] = seconds
	}
	flat["date"] = p.Date
	return json.Marshal(flat)
}

// WorkPatternRow is one day's split of reading vs writing time.
type WorkPatternRow struct {
	Date           string `json:"date"`
	ReadingSeconds int64  `json:"reading_seconds"`
	WritingSeconds int64  `json:"writing_seconds"`
}

// ProjectFileRow is one file's accumulated time within a project.
type ProjectFileRow struct {
	FilePath        string `json:"file_path"`
	DurationSeconds int64  `json:"duration_seconds"`
	LastActive      string `json:"last_active"`
}

// analyticsGroupExpr maps a group-by dimension to the SQL expression
// producing its bucket key. Time dimensions truncate the session start
// time; context dimensions pull from the context JSON and exclude
// sessions where the field is absent.
func analyticsGroupExpr(groupBy string) (expr string, contextField bool, err error) {
	switch groupBy {
	case "hour":
		return "strftime('%H', start_time)", false, nil
	case "day":
		return "strftime('%Y-%m-%d', start_time)", false, nil
	case "month":
		return "strftime('%Y-%m', start_time)", false, nil
	case "project":
		return "json_extract(context, '$.project_path')", true, nil
	case "language":
		return "json_extract(context, '$.language')", true, nil
	default:
		return "", false, fmt.Errorf("unknown analytics group-by %q", groupBy)
	}
}

// Analytics returns total duration and session count grouped by the
// given dimension, optionally bounded to sessions starting within
// [startTime, endTime].
func (s *Store) Analytics(groupBy, startTime, endTime string) ([]AnalyticsRow, error) {
	expr, contextField, err := analyticsGroupExpr(groupBy)
	if err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Session{}).
		Select(expr + " AS key, SUM(duration_seconds) AS total_duration_seconds, COUNT(*) AS session_count")
	if contextField {
		query = query.Where(expr + " IS NOT NULL")
	}
	if startTime != "" {
		query = query.Where("datetime(start_time) >= datetime(?)", startTime)
	}
	if endTime != "" {
		query = query.Where("datetime(start_time) <= datetime(?)", endTime)
	}
	query = query.Group("key")
	if contextField {
		query = query.Order("total_duration_seconds DESC")
	} else {
		query = query.Order("key ASC")
	}

	rows := []AnalyticsRow{}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// trendGroupExpr maps a trend dimension to its context JSON path.
func trendGroupExpr(groupBy string) (string, error) {
	switch groupBy {
	case "project":
		return "json_extract(context, '$.project_path')", nil
	case "language":
		return "json_extract(context, '$.language')", nil
	case "app":
		return "json_extract(context, '$.app_name')", nil
	default:
		return "", fmt.Errorf("unknown trend group-by %q", groupBy)
	}
}

// Trend returns a per-day, per-key duration pivot over the last days
// days. Days with no matching sessions produce no point at all; keys
// with no activity on a day are absent from that day's values.
func (s *Store) Trend(groupBy string, days int) ([]TrendPoint, error) {
	expr, err := trendGroupExpr(groupBy)
	if err != nil {
		return nil, err
	}

	type trendRow struct {
		Day     string
		Key     string
		Seconds int64
	}
	var rows []trendRow
	err = s.db.Model(&models.Session{}).
		Select("strftime('%Y-%m-%d', start_time) AS day, "+expr+" AS key, SUM(duration_seconds) AS seconds").
		Where(expr+" IS NOT NULL").
		Where("datetime(start_time) >= datetime(?)", windowStart(days)).
		Group("day, key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Accumulate into a map keyed by day, then materialize in date
	// order.
	byDay := make(map[string]map[string]int64)
	for _, row := range rows {
		if byDay[row.Day] == nil {
			byDay[row.Day] = make(map[string]int64)
		}
		byDay[row.Day][row.Key] += row.Seconds
	}

	dates := make([]string, 0, len(byDay))
	for date := range byDay {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]TrendPoint, 0, len(dates))
	for _, date := range dates {
		points = append(points, TrendPoint{Date: date, Values: byDay[date]})
	}
	return points, nil
}

// WorkPattern splits activity over the last days days into reading and
// writing time. Consecutive raw events no further apart than the idle
// threshold contribute their gap to the calendar day of the later
// event: to writing when that event is a file edit, to reading
// otherwise. Larger gaps are idle and contribute nothing. Every day in
// the window appears in the result, with zeros if nothing contributed.
func (s *Store) WorkPattern(days int, idleThreshold time.Duration) ([]WorkPatternRow, error) {
	start := windowStartTime(days)
	events, err := s.EventsSince(start.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*WorkPatternRow)
	order := make([]string, 0, days)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")
		byDay[date] = &WorkPatternRow{Date: date}
		order = append(order, date)
	}

	var prev *time.Time
	for i := range events {
		t, err := time.Parse(time.RFC3339, events[i].Timestamp)
		if err != nil {
			continue // producers own timestamp quality; skip the unparseable
		}
		if prev != nil {
			gap := t.Sub(*prev)
			if gap >= 0 && gap <= idleThreshold {
				row, ok := byDay[t.UTC().Format("2006-01-02")]
				if ok {
					if events[i].Type == models.EventFileEdit {
						row.WritingSeconds += int64(gap.Seconds())
					} else {
						row.ReadingSeconds += int64(gap.Seconds())
					}
				}
			}
		}
		prev = &t
	}

	rows := make([]WorkPatternRow, 0, len(order))
	for _, date := range order {
		rows = append(rows, *byDay[date])
	}
	return rows, nil
}

// ProjectFiles sums session time per file within one project over the
// last days days, with each file's most recent activity timestamp.
func (s *Store) ProjectFiles(projectPath string, days int) ([]ProjectFileRow, error) {
	rows := []ProjectFileRow{}
	err := s.db.Model(&models.Session{}).
		Select("json_extract(context, '$.file_path') AS file_path, SUM(duration_seconds) AS duration_seconds, MAX(last_active_time) AS last_active").
		Where("json_extract(context, '$.project_path') = ?", projectPath).
		Where("json_extract(context, '$.file_path') IS NOT NULL").
		Where("datetime(start_time) >= datetime(?)", windowStart(days)).
		Group("file_path").
		Order("duration_seconds DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// windowStartTime returns midnight UTC of the first day of an
// inclusive days-long window ending today.
func windowStartTime(days int) time.Time {
	if days <= 0 {
		days = 1
	}
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -(days - 1))
}

func windowStart(days int) string {
	return windowStartTime(days).Format(time.RFC3339)
}
