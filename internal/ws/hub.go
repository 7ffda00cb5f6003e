package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/binhminh-backend/internal/goroutine"
	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/metrics"
)

// События, которые получают администраторы.
const (
	EventContactSubmitted     = "contact.submitted"
	EventTestimonialSubmitted = "testimonial.submitted"
)

// Event — сообщение клиенту: поле "type" содержит имя события, "data" — полезную нагрузку.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub управляет WebSocket клиентами администраторов.
type Hub struct {
	mu         sync.RWMutex
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run запускает главный цикл хаба до отмены ctx.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case payload := <-h.broadcast:
			h.send(payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish рассылает событие всем подключённым администраторам. Не блокирует:
// при переполненной очереди событие отбрасывается.
func (h *Hub) Publish(eventType string, data any) error {
	raw, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- raw:
	default:
		metrics.LiveEventsDropped.Inc()
		logger.Log.WithField("event", eventType).Warn("ws: очередь событий переполнена")
	}
	return nil
}

// ClientCount возвращает число активных подключений.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.adminID]; !ok {
		h.clients[client.adminID] = make(map[*Client]struct{})
	}
	h.clients[client.adminID][client] = struct{}{}

	logger.Log.WithFields(logrus.Fields{
		"admin_id": client.adminID,
		"conn_id":  client.id,
	}).Debug("ws: клиент подключён")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.adminID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.adminID)
		}
	}
}

func (h *Hub) send(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.clients {
		for client := range set {
			select {
			case client.send <- payload:
			default:
				// медленный клиент: закрываем асинхронно
				metrics.LiveEventsDropped.Inc()
				c := client
				goroutine.SafeGo(c.Close)
			}
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, set := range h.clients {
		for client := range set {
			client.shutdown()
		}
		delete(h.clients, id)
	}
}
