// Package wsconn provides a WebSocket client with automatic reconnection.
package wsconn

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	PingInterval   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0, // infinite
		PingInterval:   30 * time.Second,
	}
}

// Client is a reconnecting WebSocket client. Received messages are delivered
// on the Messages channel; the channel is closed when the client gives up
// reconnecting or Close is called.
type Client struct {
	config Config

	conn   *websocket.Conn
	connMu sync.RWMutex

	state   State
	stateMu sync.RWMutex

	// onConnect runs after every successful (re)connect, before the read
	// loop starts. Used to re-subscribe streams.
	onConnect func(ctx context.Context) error

	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new WebSocket client.
func New(config Config) *Client {
	return &Client{
		config:   config,
		state:    StateDisconnected,
		messages: make(chan []byte, 100),
		done:     make(chan struct{}),
	}
}

// OnConnect registers a hook that runs after every successful (re)connect.
func (c *Client) OnConnect(fn func(ctx context.Context) error) {
	c.onConnect = fn
}

// Connect establishes the WebSocket connection and starts the read and
// keep-alive loops. It returns once the first connection attempt succeeds.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.setState(StateConnected)
	go c.readLoop(ctx)
	go c.pingLoop(ctx)
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		return err
	}
	// Feed messages can exceed the 32 KiB default.
	conn.SetReadLimit(1 << 20)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	if c.onConnect != nil {
		if err := c.onConnect(ctx); err != nil {
			conn.Close(websocket.StatusInternalError, "subscribe failed")
			return err
		}
	}
	return nil
}

// Send sends a text message through the WebSocket.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()
	if conn == nil {
		return websocket.CloseError{Code: websocket.StatusAbnormalClosure, Reason: "not connected"}
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Messages returns the channel for receiving messages.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Close gracefully closes the WebSocket connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	c.setState(StateDisconnected)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client closed")
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context) {
	defer close(c.messages)

	reconnects := 0
	for {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()
		if conn == nil {
			return
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-c.done:
				return
			case <-ctx.Done():
				return
			default:
			}

			if c.config.MaxReconnects > 0 && reconnects >= c.config.MaxReconnects {
				return
			}
			reconnects++
			if !c.reconnect(ctx, reconnects) {
				return
			}
			continue
		}

		select {
		case c.messages <- data:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// reconnect retries dialing with exponential backoff. Returns false when the
// client is closed or the context is cancelled.
func (c *Client) reconnect(ctx context.Context, attempt int) bool {
	c.setState(StateReconnecting)

	backoff := c.config.InitialBackoff
	for i := 1; i < attempt && backoff < c.config.MaxBackoff; i++ {
		backoff *= 2
	}
	if backoff > c.config.MaxBackoff {
		backoff = c.config.MaxBackoff
	}

	select {
	case <-time.After(backoff):
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}

	if err := c.dial(ctx); err != nil {
		return c.reconnect(ctx, attempt+1)
	}
	c.setState(StateConnected)
	return true
}

func (c *Client) pingLoop(ctx context.Context) {
	if c.config.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()
			if conn != nil {
				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				_ = conn.Ping(pingCtx)
				cancel()
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
}
