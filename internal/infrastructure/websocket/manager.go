package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"agrimarket/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Conn is the part of *websocket.Conn the pumps use.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one live connection. A user may hold several.
type Client struct {
	UserID string
	Conn   Conn
	Send   chan []byte

	// OnRefresh runs when the client asks for a fresh order list.
	OnRefresh func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewClient(userID string, conn Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}
}

// Done is closed once the manager has dropped the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	close(c.Send)
}

// Manager fans events out to every connection of a user.
type Manager struct {
	clients    map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	stopped    chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Start runs the registration loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	for {
		select {
		case client := <-m.Register:
			m.mutex.Lock()
			if m.clients[client.UserID] == nil {
				m.clients[client.UserID] = make(map[*Client]struct{})
			}
			m.clients[client.UserID][client] = struct{}{}
			m.mutex.Unlock()
			logger.Debug("websocket client registered: %s", client.UserID)

		case client := <-m.Unregister:
			m.remove(client)
			logger.Debug("websocket client unregistered: %s", client.UserID)

		case <-ctx.Done():
			close(m.stopped)
			m.mutex.Lock()
			for _, set := range m.clients {
				for c := range set {
					c.close()
				}
			}
			m.clients = make(map[string]map[*Client]struct{})
			m.mutex.Unlock()
			return
		}
	}
}

// Add registers client. It reports false once the manager has stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.stopped:
		return false
	}
}

// Drop unregisters client; safe to call after the manager has stopped.
func (m *Manager) Drop(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.stopped:
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if set, ok := m.clients[client.UserID]; ok {
		if _, ok := set[client]; ok {
			delete(set, client)
			client.close()
		}
		if len(set) == 0 {
			delete(m.clients, client.UserID)
		}
	}
}

// SendToUser delivers message to every connection of userID. Slow
// connections drop the message rather than block the caller.
func (m *Manager) SendToUser(userID string, message []byte) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	delivered := 0
	for c := range m.clients[userID] {
		if c.trySend(message) {
			delivered++
		}
	}
	return delivered
}

// Publish encodes an event and sends it to userID.
func (m *Manager) Publish(userID, eventType string, data interface{}) {
	payload, err := Encode(eventType, data)
	if err != nil {
		logger.Error("failed to encode %s event: %v", eventType, err)
		return
	}
	m.SendToUser(userID, payload)
}

func (m *Manager) Connections(userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID])
}

// ReadPump reads until the connection fails, then unregisters the client.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Drop(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
		c.handleIncoming(message)
	}
}

// WritePump drains Send and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
