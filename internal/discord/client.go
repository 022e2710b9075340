// Package discord publishes Rich Presence through Discord's local IPC
// socket.
//
// [Client] speaks the wire protocol: handshake, SET_ACTIVITY with the
// response read back, and close. [Sink] sits on top of it and owns the
// connection lifecycle the poll loop sees: connect with backoff, skip
// duplicate frames, reconnect after a dropped socket. Platform-specific
// socket discovery lives in conn_unix.go and conn_windows.go.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
)

// ///////////////////////////////////////////////
// Sentinel Errors
// ///////////////////////////////////////////////

var (
	// ErrNotConnected is returned when an operation requires an active connection.
	ErrNotConnected = errors.New("not connected")
	// ErrInvalidClientID is returned when Discord rejects the application ID
	// during the handshake.
	ErrInvalidClientID = errors.New("invalid client id")
)

// closeInvalidClientID is the CLOSE code Discord sends for an unknown
// application ID.
const closeInvalidClientID = 4000

// ioTimeout bounds each request/response exchange on the socket.
const ioTimeout = 5 * time.Second

// CommandError is an ERROR event returned for a command. The connection
// stays usable.
type CommandError struct {
	Code    int
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("discord command failed (code %d): %s", e.Code, e.Message)
}

// ///////////////////////////////////////////////
// Data Types
// ///////////////////////////////////////////////

// Timestamps holds the start timestamp for an activity.
type Timestamps struct {
	Start int64 `json:"start,omitempty"`
}

// Assets holds image keys and tooltip text for an activity.
type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

// Activity represents a Discord Rich Presence activity.
type Activity struct {
	Details    string      `json:"details,omitempty"`
	State      string      `json:"state,omitempty"`
	Timestamps *Timestamps `json:"timestamps,omitempty"`
	Assets     *Assets     `json:"assets,omitempty"`
}

// message is the envelope of every FRAME payload in either direction.
type message struct {
	Cmd   string          `json:"cmd,omitempty"`
	Evt   string          `json:"evt,omitempty"`
	Nonce string          `json:"nonce,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// errorData is the data of an ERROR event and the payload of a CLOSE frame.
type errorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client manages a connection to Discord's IPC socket.
type Client struct {
	// appID is the Discord application (OAuth2 client) identifier.
	appID string
	// dial opens the IPC socket.
	dial func() (net.Conn, error)

	// mu protects conn and nonce from concurrent access.
	mu sync.Mutex
	// conn is the active IPC socket connection, or nil when disconnected.
	conn net.Conn
	// nonce is a monotonically increasing counter used to tag each command frame.
	nonce uint64
}

// NewClient creates a new Discord IPC client for the given application ID.
func NewClient(appID string) *Client {
	return &Client{appID: appID, dial: connectToDiscord}
}

// Connect establishes a connection to Discord via IPC and sends the
// handshake. Cancelling ctx aborts a handshake Discord has not answered.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drop()
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := c.dial()
	if err != nil {
		return err
	}
	c.conn = conn

	defer c.interruptOn(ctx)()
	if err := c.handshake(); err != nil {
		c.drop()
		return interrupted(ctx, err)
	}
	return nil
}

// SetActivity publishes activity and waits for Discord's reply. An ERROR
// reply is returned as a *CommandError; any other failure drops the
// connection, including ctx being cancelled while the reply is pending.
func (c *Client) SetActivity(ctx context.Context, activity *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer c.interruptOn(ctx)()
	return interrupted(ctx, c.command("SET_ACTIVITY", map[string]any{
		"pid":      os.Getpid(),
		"activity": activity,
	}))
}

// Close clears the activity and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	// Best-effort clear before closing.
	_ = c.command("SET_ACTIVITY", map[string]any{
		"pid":      os.Getpid(),
		"activity": nil,
	})
	if c.conn == nil {
		return nil
	}

	if frame, err := EncodeFrame(OpClose, []byte("{}")); err == nil {
		c.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
		c.conn.Write(frame)
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// drop closes the socket after a protocol or transport failure. The caller
// must hold c.mu.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// interruptOn expires the socket deadline when ctx is cancelled, failing
// the pending read or write at once. Calling the returned func disarms it.
// The caller must hold c.mu.
func (c *Client) interruptOn(ctx context.Context) func() bool {
	conn := c.conn
	if conn == nil {
		return func() bool { return false }
	}
	return context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
}

// interrupted reports ctx's error in place of the I/O error its
// cancellation caused.
func interrupted(ctx context.Context, err error) error {
	if err == nil || ctx.Err() == nil {
		return err
	}
	return fmt.Errorf("%w: %v", ctx.Err(), err)
}

// handshake sends the initial handshake frame to Discord and validates the
// response. The caller must hold c.mu.
func (c *Client) handshake() error {
	payload, err := json.Marshal(map[string]any{
		"v":         1,
		"client_id": c.appID,
	})
	if err != nil {
		return fmt.Errorf("marshaling handshake: %w", err)
	}

	frame, err := EncodeFrame(OpHandshake, payload)
	if err != nil {
		return fmt.Errorf("encoding handshake: %w", err)
	}
	c.conn.SetDeadline(time.Now().Add(ioTimeout))
	defer c.conn.SetDeadline(time.Time{})

	if _, err = c.conn.Write(frame); err != nil {
		return fmt.Errorf("writing handshake: %w", err)
	}

	opcode, respData, err := DecodeFrame(c.conn)
	if err != nil {
		return fmt.Errorf("reading handshake response: %w", err)
	}

	switch opcode {
	case OpFrame:
	case OpClose:
		var data errorData
		json.Unmarshal(respData, &data)
		if data.Code == closeInvalidClientID {
			return fmt.Errorf("%w: %s", ErrInvalidClientID, data.Message)
		}
		return fmt.Errorf("handshake closed (code %d): %s", data.Code, data.Message)
	default:
		return fmt.Errorf("unexpected handshake response opcode: %s", opcode)
	}

	var resp message
	if err := json.Unmarshal(respData, &resp); err != nil {
		return fmt.Errorf("parsing handshake response: %w", err)
	}
	if resp.Evt == "ERROR" {
		var data errorData
		json.Unmarshal(resp.Data, &data)
		return fmt.Errorf("%w: %s", ErrInvalidClientID, data.Message)
	}

	return nil
}

// command writes a command frame and reads frames until the reply with the
// same nonce arrives. The caller must hold c.mu.
func (c *Client) command(cmd string, args map[string]any) error {
	nonce, err := c.sendCommand(cmd, args)
	if err != nil {
		c.drop()
		return err
	}

	for {
		opcode, payload, err := DecodeFrame(c.conn)
		if err != nil {
			c.drop()
			return fmt.Errorf("reading %s response: %w", cmd, err)
		}

		switch opcode {
		case OpFrame:
		case OpPing:
			pong, _ := EncodeFrame(OpPong, payload)
			if _, err := c.conn.Write(pong); err != nil {
				c.drop()
				return fmt.Errorf("writing pong: %w", err)
			}
			continue
		case OpClose:
			var data errorData
			json.Unmarshal(payload, &data)
			c.drop()
			return fmt.Errorf("connection closed by discord (code %d): %s", data.Code, data.Message)
		default:
			continue
		}

		var resp message
		if err := json.Unmarshal(payload, &resp); err != nil {
			c.drop()
			return fmt.Errorf("parsing %s response: %w", cmd, err)
		}
		if resp.Nonce != nonce {
			continue
		}
		c.conn.SetDeadline(time.Time{})
		if resp.Evt == "ERROR" {
			var data errorData
			json.Unmarshal(resp.Data, &data)
			return &CommandError{Code: data.Code, Message: data.Message}
		}
		return nil
	}
}

// sendCommand writes a command frame to the IPC connection and returns its
// nonce. The caller must hold c.mu.
func (c *Client) sendCommand(cmd string, args map[string]any) (string, error) {
	if c.conn == nil {
		return "", ErrNotConnected
	}

	c.nonce++
	nonce := strconv.FormatUint(c.nonce, 10)

	payload, err := json.Marshal(map[string]any{
		"cmd":   cmd,
		"args":  args,
		"nonce": nonce,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling command: %w", err)
	}

	frame, err := EncodeFrame(OpFrame, payload)
	if err != nil {
		return "", fmt.Errorf("encoding command: %w", err)
	}
	c.conn.SetDeadline(time.Now().Add(ioTimeout))
	if _, err = c.conn.Write(frame); err != nil {
		return "", fmt.Errorf("writing command: %w", err)
	}
	return nonce, nil
}
