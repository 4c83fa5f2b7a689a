package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ignatzorin/roastblame-backend/internal/goroutine"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
	"github.com/ignatzorin/roastblame-backend/internal/metrics"
)

// Hub управляет всеми WebSocket клиентами.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context
}

// message адресуется пользователю, роли или всем сразу.
type message struct {
	userID  string
	role    string
	all     bool
	payload []byte
}

// Frame - контракт WebSocket API: type содержит имя события, data - полезную нагрузку.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewHub создаёт новый хаб. Хаб живёт, пока не отменён ctx.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// BroadcastToUser отправляет событие всем подключениям пользователя.
func (h *Hub) BroadcastToUser(userID, event string, data any) error {
	return h.enqueue(message{userID: userID}, event, data)
}

// BroadcastToRole отправляет событие подключениям с указанной ролью.
func (h *Hub) BroadcastToRole(role, event string, data any) error {
	return h.enqueue(message{role: role}, event, data)
}

// BroadcastAll отправляет событие всем подключениям.
func (h *Hub) BroadcastAll(event string, data any) error {
	return h.enqueue(message{all: true}, event, data)
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

func (h *Hub) enqueue(msg message, event string, data any) error {
	if err := h.ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(Frame{Type: event, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}
	msg.payload = raw

	select {
	case h.broadcast <- msg:
		return nil
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
	metrics.WebSocketConnections.Inc()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, ok := clients[client]; !ok {
			return
		}
		delete(clients, client)
		close(client.send)
		metrics.WebSocketConnections.Dec()
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
			metrics.WebSocketConnections.Dec()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) send(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(client *Client) {
		select {
		case client.send <- msg.payload:
		default:
			// Медленный клиент отключается
			c := client
			goroutine.SafeGo(func() {
				logger.L().WithField("user_id", c.userID).Warn("ws: буфер клиента переполнен, отключаем")
				c.Close()
			})
		}
	}

	if !msg.all && msg.role == "" {
		for client := range h.clients[msg.userID] {
			deliver(client)
		}
		return
	}

	for _, clients := range h.clients {
		for client := range clients {
			if msg.all || client.role == msg.role {
				deliver(client)
			}
		}
	}
}
