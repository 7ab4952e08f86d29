package websocket

import (
	"encoding/json"
	"time"

	"agrimarket/pkg/logger"
)

const (
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
	MessageTypeRefresh        = "refresh"
	MessageTypeOrdersSnapshot = "orders.snapshot"
	MessageTypeOrderCreated   = "order.created"
	MessageTypeOrderStatus    = "order.status"
	MessageTypeError          = "error"
)

type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

func Encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleIncoming answers pings and forwards refresh requests to the
// connection's refresh hook.
func (c *Client) handleIncoming(raw []byte) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(MessageTypeError, map[string]string{"message": "invalid message format"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.reply(MessageTypePong, nil)
	case MessageTypeRefresh:
		if c.OnRefresh != nil {
			c.OnRefresh()
		}
	default:
		logger.Debug("ignoring websocket message %q from %s", msg.Type, c.UserID)
	}
}

func (c *Client) reply(msgType string, data interface{}) {
	c.Push(msgType, data)
}

// Push queues a message for this connection only. It reports false when the
// connection is closed or its buffer is full.
func (c *Client) Push(msgType string, data interface{}) bool {
	payload, err := Encode(msgType, data)
	if err != nil {
		logger.Error("failed to encode websocket %s message: %v", msgType, err)
		return false
	}
	return c.trySend(payload)
}
