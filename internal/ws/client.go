package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ignatzorin/roastblame-backend/internal/goroutine"
	"github.com/ignatzorin/roastblame-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 4 * 1024
	sendBuffer     = 16
)

// Типы кадров, которые клиент может прислать серверу.
const (
	FramePing = "ping"
	FramePong = "pong"
)

// Client - одно WebSocket подключение пользователя.
type Client struct {
	conn      *websocket.Conn
	hub       *Hub
	userID    string
	role      string
	send      chan []byte
	closeOnce sync.Once
}

// NewClient создаёт клиента для уже установленного соединения.
func NewClient(conn *websocket.Conn, hub *Hub, userID, role string) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		userID: userID,
		role:   role,
		send:   make(chan []byte, sendBuffer),
	}
}

// Run блокируется, пока соединение не закроется или не отменится ctx.
func (c *Client) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	goroutine.SafeGo(c.writeLoop)
	c.readLoop()
}

// Close закрывает соединение. Повторные вызовы ничего не делают.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	})
}

// readLoop разбирает входящие кадры. Лента только для чтения, поэтому
// из клиентских кадров обрабатывается лишь ping.
func (c *Client) readLoop() {
	defer c.Close()

	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.L().WithField("user_id", c.userID).WithError(err).Debug("ws: соединение оборвано")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Type == FramePing {
			c.reply(Frame{Type: FramePong})
		}
	}
}

// reply кладёт ответ в очередь клиента, не блокируясь на переполненном буфере.
func (c *Client) reply(frame Frame) {
	raw, err := json.Marshal(frame)
	if err != nil {
		return
	}
	defer func() {
		// send мог быть закрыт хабом между чтением и ответом
		_ = recover()
	}()
	select {
	case c.send <- raw:
	default:
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.write(payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// write отправляет кадр и всё, что успело накопиться в очереди,
// отдельными текстовыми сообщениями.
func (c *Client) write(payload []byte) error {
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}
	for n := len(c.send); n > 0; n-- {
		next, ok := <-c.send
		if !ok {
			return nil
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, next); err != nil {
			return err
		}
	}
	return nil
}
