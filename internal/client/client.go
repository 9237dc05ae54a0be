// Package client connects to the daemon's socket on behalf of CLI
// consumers and event producers. It speaks the same newline-delimited
// JSON protocol as the daemon, one response per request.
package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/balkashynov/tempo/internal/models"
	"github.com/balkashynov/tempo/internal/protocol"
)

// dialTimeout bounds the initial connect. The daemon is local, so
// anything slower than this means it is not running.
const dialTimeout = 2 * time.Second

// Client is a single connection to the daemon. Not safe for
// concurrent use; each goroutine should dial its own.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the daemon at socketPath.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to daemon at %s: %w (is 'tempo daemon' running?)", socketPath, err)
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one request and reads its response frame.
func (c *Client) Do(req protocol.Request) (*protocol.Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}

	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	var resp protocol.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}

// Ping checks daemon liveness.
func (c *Client) Ping() error {
	resp, err := c.Do(protocol.Request{Type: protocol.TypePing})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("ping failed: %s", resp.Error)
	}
	return nil
}

// EmitEvent sends one activity event.
func (c *Client) EmitEvent(event *models.Event) error {
	resp, err := c.Do(protocol.Request{Type: protocol.TypeEmitEvent, Event: event})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("emit failed: %s", resp.Error)
	}
	return nil
}

// Query sends a query request and decodes the data payload into out
// (a pointer to the expected result slice).
func (c *Client) Query(req protocol.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("query failed: %s", resp.Error)
	}
	// Data arrives as decoded JSON (maps and slices); round-trip it
	// into the caller's concrete type.
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("re-encoding response data: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
