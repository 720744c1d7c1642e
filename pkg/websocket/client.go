package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tabl/pkg/logger"
)

const (
	maxMessageSize = 512

	defaultPingInterval = 54 * time.Second
	defaultPongTimeout  = 60 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

var (
	ErrClosed       = errors.New("websocket connection closed")
	ErrSlowConsumer = errors.New("websocket send buffer full")
)

type Config struct {
	ReadBufferSize    int
	WriteBufferSize   int
	HandshakeTimeout  time.Duration
	PingInterval      time.Duration
	PongTimeout       time.Duration
	WriteTimeout      time.Duration
	EnableCompression bool
	// AllowedOrigins of "*" accepts every origin. Requests without an Origin header are always accepted.
	AllowedOrigins []string
}

type Message struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

func NewMessage(msgType string, data interface{}) Message {
	return Message{Type: msgType, Timestamp: time.Now().Unix(), Data: data}
}

type Upgrader struct {
	upgrader websocket.Upgrader
	config   Config
	logger   *logger.Logger
}

// NewUpgrader fills zero timeouts with defaults.
func NewUpgrader(config Config, log *logger.Logger) *Upgrader {
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
	if config.PongTimeout <= 0 {
		config.PongTimeout = defaultPongTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultWriteTimeout
	}

	u := &Upgrader{config: config, logger: log.WithField("component", "websocket")}
	u.upgrader = websocket.Upgrader{
		ReadBufferSize:    config.ReadBufferSize,
		WriteBufferSize:   config.WriteBufferSize,
		HandshakeTimeout:  config.HandshakeTimeout,
		EnableCompression: config.EnableCompression,
		CheckOrigin:       u.checkOrigin,
	}
	return u
}

func (u *Upgrader) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(u.config.AllowedOrigins, "*") || slices.Contains(u.config.AllowedOrigins, origin)
}

// Upgrade switches the request to a websocket and starts the read and write pumps. The upgrader
// has already replied to the client when an error is returned.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Client, error) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		u.logger.WithError(err).Warn("WebSocket upgrade failed")
		return nil, err
	}

	c := &Client{
		conn:   conn,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
		config: u.config,
		logger: u.logger,
	}
	go c.writePump()
	go c.readPump()
	return c, nil
}

// Client is a server-push connection; anything the peer sends is read and dropped.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	logger    *logger.Logger
}

func (c *Client) Send(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSlowConsumer
	}
}

// Done is closed once the connection is going away, from either side.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("WebSocket read failed")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
