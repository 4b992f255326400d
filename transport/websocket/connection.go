package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBufferSize = 64
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// Connection is one player's socket. Outbound frames go through a buffered
// channel so Send never blocks the caller.
type Connection struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newConnection(id string, conn *websocket.Conn, logger *slog.Logger) *Connection {
	return &Connection{
		id:     id,
		conn:   conn,
		logger: logger.With("connectionID", id),
		send:   make(chan []byte, sendBufferSize),
	}
}

func (that *Connection) ID() string {
	return that.id
}

// Send queues msg for delivery.
func (that *Connection) Send(msg protocol.ServerMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return ErrConnectionClosed
	}

	select {
	case that.send <- data:
		return nil
	default:
		that.logger.Warn("send buffer full, closing connection")
		that.closeLocked()

		return ErrSendBufferFull
	}
}

// Close flushes queued frames, sends a close frame and drops the socket.
func (that *Connection) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closeLocked()

	return nil
}

func (that *Connection) closeLocked() {
	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}

// readPump delivers inbound frames to onMessage until the socket fails.
func (that *Connection) readPump(ctx context.Context, onMessage func(ctx context.Context, data []byte)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				that.logger.Warn("unexpected close", "error", err)
			}

			return
		}

		if msgType != websocket.TextMessage {
			that.logger.Debug("ignoring non-text frame", "type", msgType)
			continue
		}

		onMessage(ctx, data)
	}
}

// writePump drains the send channel and keeps the peer alive with pings.
func (that *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Debug("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
