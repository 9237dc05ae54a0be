package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/protocol"
	"github.com/balkashynov/tempo/internal/session"
)

// Dispatcher turns one request line into one response: decode,
// validate, execute against the store and session manager. Failures
// of any kind become {success:false} responses; nothing here
// terminates a connection.
type Dispatcher struct {
	store         *db.Store
	sessions      *session.Manager
	idleThreshold time.Duration
	logger        *slog.Logger
}

// NewDispatcher wires the dispatcher to its collaborators.
func NewDispatcher(store *db.Store, sessions *session.Manager, idleThreshold time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:         store,
		sessions:      sessions,
		idleThreshold: idleThreshold,
		logger:        logger,
	}
}

// Handle processes one raw request frame and always returns a
// response to write back.
func (d *Dispatcher) Handle(line []byte) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("request handler panicked", "panic", r)
			resp = protocol.Fail(fmt.Sprintf("internal error: %v", r))
		}
	}()

	var req protocol.Request
	if err := json.Unmarshal(line, &req); err != nil {
		return protocol.Fail("Invalid JSON")
	}

	if errs := req.Validate(); len(errs) > 0 {
		d.logger.Warn("invalid request", "type", req.Type, "errors", len(errs))
		return protocol.FailWith("Schema validation failed", errs)
	}

	switch req.Type {
	case protocol.TypePing:
		return protocol.OK("pong")

	case protocol.TypeEmitEvent:
		d.logger.Info("received event", "type", req.Event.Type, "source", req.Event.Source)
		if err := d.store.InsertEvent(req.Event); err != nil {
			d.logger.Error("failed to insert event", "error", err)
			return protocol.Fail(err.Error())
		}
		if err := d.sessions.Process(req.Event); err != nil {
			d.logger.Error("failed to update session", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(nil)

	case protocol.TypeQueryEvents:
		events, err := d.store.RecentEvents(req.LimitOrDefault())
		if err != nil {
			d.logger.Error("failed to query events", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(events)

	case protocol.TypeQuerySessions:
		sessions, err := d.store.RecentSessions(req.LimitOrDefault(), req.StartTime, req.EndTime)
		if err != nil {
			d.logger.Error("failed to query sessions", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(sessions)

	case protocol.TypeQueryAnalytics:
		rows, err := d.store.Analytics(req.GroupBy, req.StartTime, req.EndTime)
		if err != nil {
			d.logger.Error("failed to query analytics", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(rows)

	case protocol.TypeQueryTrend:
		points, err := d.store.Trend(req.GroupBy, req.DaysOrDefault())
		if err != nil {
			d.logger.Error("failed to query trend", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(points)

	case protocol.TypeQueryWorkPattern:
		rows, err := d.store.WorkPattern(req.DaysOrDefault(), d.idleThreshold)
		if err != nil {
			d.logger.Error("failed to query work pattern", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(rows)

	case protocol.TypeQueryProjectFiles:
		rows, err := d.store.ProjectFiles(req.ProjectPath, req.DaysOrDefault())
		if err != nil {
			d.logger.Error("failed to query project files", "error", err)
			return protocol.Fail(err.Error())
		}
		return protocol.OK(rows)
	}

	// Validate rejects unknown types; this is unreachable.
	return protocol.Fail(fmt.Sprintf("unhandled request type %q", req.Type))
}
