package db

import (
	"github.com/balkashynov/tempo/internal/models"
)

// DefaultQueryLimit caps event and session reads when the caller does
// not specify a limit.
const DefaultQueryLimit = 50

// InsertEvent appends one event. Events are never mutated or deleted.
func (s *Store) InsertEvent(event *models.Event) error {
	return s.db.Create(event).Error
}

// RecentEvents returns the limit most recent events, newest first.
func (s *Store) RecentEvents(limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	events := []models.Event{}
	err := s.db.
		Order("datetime(timestamp) DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// EventsSince returns all events at or after the cutoff timestamp,
// oldest first. Used by the work-pattern walk.
func (s *Store) EventsSince(cutoff string) ([]models.Event, error) {
	events := []models.Event{}
	err := s.db.
		Where("datetime(timestamp) >= datetime(?)", cutoff).
		Order("datetime(timestamp) ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
