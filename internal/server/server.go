package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/tempo/internal/db"
	"github.com/balkashynov/tempo/internal/protocol"
	"github.com/balkashynov/tempo/internal/session"
)

// ErrAlreadyRunning is returned by Listen when another daemon holds
// the socket. The caller should exit without removing anything.
var ErrAlreadyRunning = errors.New("tempo daemon is already running")

// maxFrameSize bounds a single request line. 1 MB is generous for any
// event or query frame.
const maxFrameSize = 1024 * 1024

// probeTimeout bounds the liveness dial against an existing socket.
const probeTimeout = time.Second

// Server owns the local socket endpoint. It frames each connection's
// byte stream into newline-delimited requests, dispatches them in
// arrival order, and writes one response frame per request. Multiple
// connections are served concurrently; requests within a connection
// are strictly sequential.
type Server struct {
	socketPath string
	dispatcher *Dispatcher
	sessions   *session.Manager
	store      *db.Store
	logger     *slog.Logger

	listener net.Listener
	conns    sync.WaitGroup

	mu     sync.Mutex
	active map[net.Conn]struct{}
}

// New assembles a server around its collaborators. Call Listen, then
// Serve.
func New(socketPath string, store *db.Store, sessions *session.Manager, idleThreshold time.Duration, logger *slog.Logger) *Server {
	return &Server{
		socketPath: socketPath,
		dispatcher: NewDispatcher(store, sessions, idleThreshold, logger),
		sessions:   sessions,
		store:      store,
		logger:     logger,
		active:     make(map[net.Conn]struct{}),
	}
}

// Listen binds the socket. If the path is already bound it probes for
// a live daemon: a successful connect means one is running
// (ErrAlreadyRunning); a refused connect means the file is stale from
// a crashed instance, so it is removed and the bind retried exactly
// once.
func (s *Server) Listen() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err == nil {
		s.listener = listener
		return nil
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		return fmt.Errorf("binding %s: %w", s.socketPath, err)
	}

	conn, dialErr := net.DialTimeout("unix", s.socketPath, probeTimeout)
	if dialErr == nil {
		conn.Close()
		return ErrAlreadyRunning
	}
	if !errors.Is(dialErr, syscall.ECONNREFUSED) {
		return fmt.Errorf("probing %s: %w", s.socketPath, dialErr)
	}

	s.logger.Info("removing stale socket", "path", s.socketPath)
	if err := os.Remove(s.socketPath); err != nil {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}
	listener, err = net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("binding %s after stale removal: %w", s.socketPath, err)
	}
	s.listener = listener
	return nil
}

// Serve accepts connections until ctx is cancelled, then drains:
// open connections are closed so idle readers unblock, their handlers
// finish, the session manager is flushed so no session is left active,
// the store is closed, and the socket file is removed so the next
// start does not misdetect staleness.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("server is not listening; call Listen first")
	}

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	s.logger.Info("daemon listening", "path", s.socketPath)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.conns.Add(1)
		s.track(conn)
		go func() {
			defer s.conns.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}

	// Producers keep their connection open between events, so waiting
	// for peers to hang up would block shutdown forever. Close them;
	// handlers drain out of scanner.Scan with a closed-network error.
	s.closeConnections()
	s.conns.Wait()
	return s.shutdown()
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, conn)
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.active {
		conn.Close()
	}
}

// shutdown runs the drain sequence after the accept loop has stopped.
func (s *Server) shutdown() error {
	var firstErr error
	if err := s.sessions.Flush(); err != nil {
		s.logger.Error("failed to flush session manager", "error", err)
		firstErr = err
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close store", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("failed to remove socket", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	s.logger.Info("daemon stopped")
	return firstErr
}

// handleConnection reads request lines until the peer closes,
// dispatching each in order. A failure on this connection never
// affects others or the accept loop.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With("conn", uuid.NewString())
	logger.Debug("connection opened")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		response := s.dispatcher.Handle(line)
		if err := writeResponse(conn, response); err != nil {
			logger.Debug("failed to write response", "error", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("connection read error", "error", err)
	}
	logger.Debug("connection closed")
}

// writeResponse encodes one response frame, newline-terminated.
func writeResponse(conn net.Conn, response protocol.Response) error {
	data, err := json.Marshal(response)
	if err != nil {
		data, _ = json.Marshal(protocol.Fail(fmt.Sprintf("failed to encode response: %v", err)))
	}
	_, err = conn.Write(append(data, '\n'))
	return err
}
