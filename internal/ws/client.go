package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/binhminh-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client представляет одно подключение WebSocket администратора.
type Client struct {
	id      uuid.UUID
	conn    *websocket.Conn
	hub     *Hub
	adminID int64
	send    chan []byte
	closed  chan struct{}
	once    sync.Once
}

// NewClient создаёт нового клиента.
func NewClient(conn *websocket.Conn, hub *Hub, adminID int64) *Client {
	return &Client{
		id:      uuid.New(),
		conn:    conn,
		hub:     hub,
		adminID: adminID,
		send:    make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

// Run запускает обработку входящих и исходящих сообщений. Возвращается,
// когда соединение закрыто.
func (c *Client) Run(ctx context.Context) {
	go c.writePumpSafe()
	c.readPump(ctx)
}

// Close отключает клиента от хаба и закрывает соединение.
func (c *Client) Close() {
	c.hub.Unregister(c)
	c.shutdown()
}

func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{"admin_id": c.adminID, "conn_id": c.id})
}

func (c *Client) writePumpSafe() {
	defer func() {
		if r := recover(); r != nil {
			c.log().Errorf("ws: panic в writePump: %v", r)
			c.Close()
		}
	}()
	c.writePump()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.log().Errorf("ws: panic в readPump: %v", r)
		}
		c.Close()
	}()

	// Клиент только получает события, входящие сообщения не обрабатываются
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		default:
		}
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log().WithError(err).Debug("ws: соединение прервано")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}
