package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// SessionContext is the subset of activity attributes a session is
// matched and extended on. Fields only ever grow more specific over a
// session's lifetime: merging never clears a field. Stored as a JSON
// text column.
type SessionContext struct {
	ProjectPath string `json:"project_path,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	Language    string `json:"language,omitempty"`
	AppName     string `json:"app_name,omitempty"`
}

// Merge returns c with the non-empty fields of other applied on top.
// Empty fields in other never erase existing values.
func (c SessionContext) Merge(other SessionContext) SessionContext {
	if other.ProjectPath != "" {
		c.ProjectPath = other.ProjectPath
	}
	if other.FilePath != "" {
		c.FilePath = other.FilePath
	}
	if other.Language != "" {
		c.Language = other.Language
	}
	if other.AppName != "" {
		c.AppName = other.AppName
	}
	return c
}

// Matches reports whether two contexts belong to the same block of
// activity. Deliberately permissive: only a field present on both
// sides can conflict, so a context becoming more specific still
// matches, but an actual change of project or application does not.
func (c SessionContext) Matches(other SessionContext) bool {
	if c.ProjectPath != "" && other.ProjectPath != "" && c.ProjectPath != other.ProjectPath {
		return false
	}
	if c.AppName != "" && other.AppName != "" && c.AppName != other.AppName {
		return false
	}
	return true
}

// Label returns a short human-readable identifier for logs.
func (c SessionContext) Label() string {
	if c.AppName != "" {
		return c.AppName
	}
	if c.ProjectPath != "" {
		return c.ProjectPath
	}
	return "unknown"
}

// Value serializes the context for storage.
func (c SessionContext) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan deserializes the context from storage.
func (c *SessionContext) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = SessionContext{}
		return nil
	default:
		return fmt.Errorf("unsupported context column type %T", value)
	}
}

// Session is a derived, mutable record of one contiguous block of
// matching activity. At most one session is active at any time.
type Session struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	StartTime       string         `gorm:"not null;index" json:"start_time"`
	LastActiveTime  string         `gorm:"not null" json:"last_active_time"`
	EndTime         *string        `json:"end_time,omitempty"` // set when completed
	DurationSeconds int64          `json:"duration_seconds"`
	Status          SessionStatus  `gorm:"not null;index" json:"status"`
	Context         SessionContext `gorm:"type:text" json:"context"`
}
