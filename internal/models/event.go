package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// EventType identifies what kind of activity an event reports.
type EventType string

const (
	EventAppActive    EventType = "app_active"    // app became active/focused
	EventFileOpen     EventType = "file_open"     // file opened in editor
	EventFileEdit     EventType = "file_edit"     // file modified
	EventFileClose    EventType = "file_close"    // file closed
	EventIdleStart    EventType = "idle_start"    // user went idle
	EventIdleEnd      EventType = "idle_end"      // user returned
	EventShutdown     EventType = "shutdown"      // agent or system shutting down
	EventUserActivity EventType = "user_activity" // scrolling, cursor movement
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventAppActive, EventFileOpen, EventFileEdit, EventFileClose,
		EventIdleStart, EventIdleEnd, EventShutdown, EventUserActivity:
		return true
	}
	return false
}

// EventPayload carries the type-dependent data of an event. Which
// fields are meaningful depends on the event type: app_active events
// use AppName/WindowTitle, file events use FilePath/Language/
// ProjectPath, user_activity events use Kind plus the optional file
// fields. Stored as a JSON text column.
type EventPayload struct {
	AppName     string `json:"app_name,omitempty"`
	WindowTitle string `json:"window_title,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
	Language    string `json:"language,omitempty"`
	ProjectPath string `json:"project_path,omitempty"`
	Kind        string `json:"kind,omitempty"` // "scroll" or "cursor"
}

// Value serializes the payload for storage.
func (p EventPayload) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan deserializes the payload from storage.
func (p *EventPayload) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = EventPayload{}
		return nil
	default:
		return fmt.Errorf("unsupported payload column type %T", value)
	}
}

// Event is an immutable, producer-supplied fact about activity at an
// instant. Events are append-only; the daemon never mutates or deletes
// them.
type Event struct {
	ID        uint         `gorm:"primarykey" json:"id"`
	Type      EventType    `gorm:"not null;index" json:"type"`
	Timestamp string       `gorm:"not null;index" json:"timestamp"` // RFC 3339, producer-supplied
	Source    string       `gorm:"not null" json:"source"`
	Payload   EventPayload `gorm:"type:text" json:"payload"`
}
