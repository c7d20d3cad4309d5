package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"hackmate-backend/application/services"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxMessageSize = 4 * 1024

	// Send buffer size
	sendBufferSize = 64
)

// ClientFrame is the inbound control frame
type ClientFrame struct {
	Action    string `json:"action"`              // subscribe or unsubscribe
	Stream    string `json:"stream"`              // messages or conversations
	PartnerID string `json:"partnerId,omitempty"` // required for the messages stream
}

// ServerFrame is the outbound frame wrapping a snapshot or an error
type ServerFrame struct {
	Type      string      `json:"type"` // snapshot, error, ack
	Stream    string      `json:"stream,omitempty"`
	PartnerID string      `json:"partnerId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// subscriptionMetrics records stream open/close churn; delta is +1 on
// subscribe and -1 on unsubscribe
type subscriptionMetrics interface {
	RecordSubscription(ctx context.Context, stream string, delta float64)
}

// Client is one WebSocket connection. Each subscribe frame opens a live
// query whose snapshots are forwarded as frames; everything is torn down
// when the connection drops.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	chats         *services.ChatService
	conversations *services.ConversationService
	metrics       subscriptionMetrics

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	streams map[string]func() // stream key -> cancel
	onClose func()
}

// NewClient creates a client for an upgraded connection
func NewClient(
	userID string,
	conn *websocket.Conn,
	chats *services.ChatService,
	conversations *services.ConversationService,
	metrics subscriptionMetrics,
	onClose func(),
	logger *zap.Logger,
) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()
	return &Client{
		id:            id,
		userID:        userID,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		chats:         chats,
		conversations: conversations,
		metrics:       metrics,
		ctx:           ctx,
		cancel:        cancel,
		streams:       make(map[string]func()),
		onClose:       onClose,
		logger: logger.With(
			zap.String("user_id", userID),
			zap.String("connection_id", id),
		),
	}
}

// Start begins the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("", "", "invalid frame")
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) handleFrame(frame ClientFrame) {
	key, err := streamKey(frame)
	if err != "" {
		c.sendError(frame.Stream, frame.PartnerID, err)
		return
	}

	switch frame.Action {
	case "subscribe":
		c.subscribe(key, frame)
	case "unsubscribe":
		c.unsubscribe(key)
		c.sendFrame(ServerFrame{Type: "ack", Stream: frame.Stream, PartnerID: frame.PartnerID})
	default:
		c.sendError(frame.Stream, frame.PartnerID, "action must be subscribe or unsubscribe")
	}
}

func streamKey(frame ClientFrame) (string, string) {
	switch frame.Stream {
	case "messages":
		if frame.PartnerID == "" {
			return "", "partnerId is required for the messages stream"
		}
		return "messages:" + frame.PartnerID, ""
	case "conversations":
		return "conversations", ""
	default:
		return "", "stream must be messages or conversations"
	}
}

// subscribe opens the live query for a stream. Subscribing to an already
// subscribed stream replaces the old subscription, which re-delivers the
// current snapshot.
func (c *Client) subscribe(key string, frame ClientFrame) {
	c.unsubscribe(key)

	switch frame.Stream {
	case "messages":
		sub := c.chats.Subscribe(c.ctx, c.userID, frame.PartnerID)
		c.track(key, sub.Cancel)
		go forwardLoop(c, key, frame, sub.Updates, sub.Err)
	case "conversations":
		sub := c.conversations.Subscribe(c.ctx, c.userID)
		c.track(key, sub.Cancel)
		go forwardLoop(c, key, frame, sub.Updates, sub.Err)
	}
	c.metrics.RecordSubscription(c.ctx, frame.Stream, 1)
}

func (c *Client) unsubscribe(key string) {
	c.mu.Lock()
	cancel, ok := c.streams[key]
	if ok {
		delete(c.streams, key)
	}
	c.mu.Unlock()
	if ok {
		cancel()
		c.metrics.RecordSubscription(context.Background(), streamOf(key), -1)
	}
}

// streamOf maps a stream key back to the stream name used in metrics
func streamOf(key string) string {
	if strings.HasPrefix(key, "messages:") {
		return "messages"
	}
	return key
}

func (c *Client) track(key string, cancel func()) {
	c.mu.Lock()
	c.streams[key] = cancel
	c.mu.Unlock()
}

// forwardLoop relays snapshots from a subscription until it ends. A terminal
// query error is surfaced to the peer; the stream is then dead until the
// client re-subscribes.
func forwardLoop[T any](c *Client, key string, frame ClientFrame, updates <-chan T, errc <-chan error) {
	for {
		select {
		case snapshot, ok := <-updates:
			if !ok {
				return
			}
			c.sendFrame(ServerFrame{
				Type:      "snapshot",
				Stream:    frame.Stream,
				PartnerID: frame.PartnerID,
				Data:      snapshot,
			})
		case err, ok := <-errc:
			if !ok {
				return
			}
			if err != nil {
				c.sendError(frame.Stream, frame.PartnerID, "stream failed, re-subscribe to retry")
				c.unsubscribe(key)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) sendFrame(frame ServerFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error("Failed to marshal frame", zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("Send buffer full, dropping frame",
			zap.String("stream", frame.Stream),
		)
	}
}

func (c *Client) sendError(stream, partnerID, message string) {
	c.sendFrame(ServerFrame{
		Type:      "error",
		Stream:    stream,
		PartnerID: partnerID,
		Message:   message,
	})
}

// teardown cancels every live subscription and closes the connection
func (c *Client) teardown() {
	c.cancel()

	c.mu.Lock()
	streams := c.streams
	c.streams = make(map[string]func())
	c.mu.Unlock()

	for key, cancel := range streams {
		cancel()
		c.metrics.RecordSubscription(context.Background(), streamOf(key), -1)
	}
	c.conn.Close()
	if c.onClose != nil {
		c.onClose()
	}
	c.logger.Info("WebSocket connection closed")
}
