// Package protocol defines the newline-delimited JSON request and
// response shapes spoken over the daemon's socket. Requests are a
// tagged union discriminated by the "type" field; every request frame
// receives exactly one response frame.
package protocol

import (
	"fmt"
	"time"

	"github.com/balkashynov/tempo/internal/models"
)

// Request types.
const (
	TypePing              = "ping"
	TypeEmitEvent         = "emit_event"
	TypeQueryEvents       = "query_events"
	TypeQuerySessions     = "query_sessions"
	TypeQueryAnalytics    = "query_analytics"
	TypeQueryTrend        = "query_trend"
	TypeQueryWorkPattern  = "query_work_pattern"
	TypeQueryProjectFiles = "query_project_files"
)

// Defaults applied when a request omits the field.
const (
	DefaultLimit = 50
	DefaultDays  = 7
)

// Request is one decoded frame. Which fields are meaningful depends on
// Type; Validate enforces the per-variant shape before any field is
// acted on.
type Request struct {
	Type string `json:"type"`

	// emit_event
	Event *models.Event `json:"event,omitempty"`

	// query_events, query_sessions
	Limit *int `json:"limit,omitempty"`

	// query_sessions, query_analytics
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`

	// query_analytics, query_trend
	GroupBy string `json:"groupBy,omitempty"`

	// query_trend, query_work_pattern, query_project_files
	Days *int `json:"days,omitempty"`

	// query_project_files
	ProjectPath string `json:"projectPath,omitempty"`
}

// LimitOrDefault returns the requested limit, or DefaultLimit.
func (r *Request) LimitOrDefault() int {
	if r.Limit == nil || *r.Limit <= 0 {
		return DefaultLimit
	}
	return *r.Limit
}

// DaysOrDefault returns the requested day window, or DefaultDays.
func (r *Request) DaysOrDefault() int {
	if r.Days == nil || *r.Days <= 0 {
		return DefaultDays
	}
	return *r.Days
}

// FieldError describes one schema violation, returned to the caller
// in the response's data field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the request against its variant's schema and
// returns all violations found.
func (r *Request) Validate() []FieldError {
	switch r.Type {
	case TypePing:
		return nil
	case TypeEmitEvent:
		return r.validateEvent()
	case TypeQueryEvents, TypeQuerySessions, TypeQueryWorkPattern:
		return nil
	case TypeQueryAnalytics:
		return validateGroupBy(r.GroupBy, "hour", "day", "month", "project", "language")
	case TypeQueryTrend:
		return validateGroupBy(r.GroupBy, "project", "language", "app")
	case TypeQueryProjectFiles:
		if r.ProjectPath == "" {
			return []FieldError{{Field: "projectPath", Message: "required"}}
		}
		return nil
	default:
		return []FieldError{{Field: "type", Message: fmt.Sprintf("unknown request type %q", r.Type)}}
	}
}

func (r *Request) validateEvent() []FieldError {
	if r.Event == nil {
		return []FieldError{{Field: "event", Message: "required"}}
	}

	var errs []FieldError
	if !r.Event.Type.Valid() {
		errs = append(errs, FieldError{Field: "event.type", Message: fmt.Sprintf("unknown event type %q", r.Event.Type)})
	}
	if _, err := time.Parse(time.RFC3339, r.Event.Timestamp); err != nil {
		errs = append(errs, FieldError{Field: "event.timestamp", Message: "must be an RFC 3339 timestamp"})
	}
	if r.Event.Source == "" {
		errs = append(errs, FieldError{Field: "event.source", Message: "required"})
	}

	switch r.Event.Type {
	case models.EventAppActive:
		if r.Event.Payload.AppName == "" {
			errs = append(errs, FieldError{Field: "event.payload.app_name", Message: "required for app_active events"})
		}
	case models.EventFileOpen, models.EventFileEdit, models.EventFileClose:
		if r.Event.Payload.FilePath == "" {
			errs = append(errs, FieldError{Field: "event.payload.file_path", Message: "required for file events"})
		}
	case models.EventUserActivity:
		if r.Event.Payload.Kind != "scroll" && r.Event.Payload.Kind != "cursor" {
			errs = append(errs, FieldError{Field: "event.payload.kind", Message: `must be "scroll" or "cursor"`})
		}
	}
	return errs
}

func validateGroupBy(value string, allowed ...string) []FieldError {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return []FieldError{{Field: "groupBy", Message: fmt.Sprintf("must be one of %v", allowed)}}
}

// Response is the envelope written back for every request frame.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK builds a success response carrying data (which may be nil).
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Fail builds a failure response with a message.
func Fail(message string) Response {
	return Response{Success: false, Error: message}
}

// FailWith builds a failure response carrying detail data, such as
// schema validation errors.
func FailWith(message string, data any) Response {
	return Response{Success: false, Error: message, Data: data}
}
