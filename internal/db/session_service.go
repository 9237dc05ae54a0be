package db

import (
	"gorm.io/gorm"

	"github.com/balkashynov/tempo/internal/models"
)

// CreateSession inserts a new session row and fills in its assigned id.
func (s *Store) CreateSession(session *models.Session) error {
	return s.db.Create(session).Error
}

// ExtendSession updates the mutable fields of an open session in one
// atomic statement.
func (s *Store) ExtendSession(id uint, lastActive string, durationSeconds int64, context models.SessionContext) error {
	return s.db.Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_active_time": lastActive,
			"duration_seconds": durationSeconds,
			"context":          context,
		}).Error
}

// CompleteSession closes a session, setting its end time and status.
func (s *Store) CompleteSession(id uint, endTime string) error {
	return s.db.Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"end_time": endTime,
			"status":   models.SessionCompleted,
		}).Error
}

// RecentSessions returns sessions ordered by start time descending,
// optionally bounded to [startTime, endTime].
func (s *Store) RecentSessions(limit int, startTime, endTime string) ([]models.Session, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	query := s.db.Model(&models.Session{})
	if startTime != "" {
		query = query.Where("datetime(start_time) >= datetime(?)", startTime)
	}
	if endTime != "" {
		query = query.Where("datetime(start_time) <= datetime(?)", endTime)
	}

	sessions := []models.Session{}
	err := query.
		Order("datetime(start_time) DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// ActiveSession returns the session currently marked active, or nil.
func (s *Store) ActiveSession() (*models.Session, error) {
	var session models.Session
	err := s.db.Where("status = ?", models.SessionActive).First(&session).Error
	if err != nil {
		return nil, nil // no active session is not an error
	}
	return &session, nil
}

// CloseOrphanedSessions completes any session left active by an
// unclean shutdown, using its last active time as the end time.
// Returns the number of sessions closed.
func (s *Store) CloseOrphanedSessions() (int64, error) {
	result := s.db.Model(&models.Session{}).
		Where("status = ?", models.SessionActive).
		Updates(map[string]any{
			"end_time": gorm.Expr("last_active_time"),
			"status":   models.SessionCompleted,
		})
	return result.RowsAffected, result.Error
}
