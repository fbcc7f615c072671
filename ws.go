/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan ServerMessage
	limiter *rate.Limiter
}

// Hub tracks open websocket clients and implements Outbox for the
// coordinator.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	log     *logrus.Logger
}

func newHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
}

// remove closes the client's send queue, which in turn stops its write pump.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.id] == c {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// Send never blocks: a client whose queue is full is dropped, and its read
// pump then reports the disconnect.
func (h *Hub) Send(connID string, msg ServerMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(h.clients, connID)
		close(c.send)

		h.log.WithField("conn", connID).Warn("CONNS: Send queue full, dropping client")
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func serveWS(cfg *Config, hub *Hub, coord *Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.WithField("remote", realIP(r)).Debugf("CONNS: Upgrade failed: %v", err)

			return
		}

		client := &Client{
			id:      uuid.NewString(),
			conn:    conn,
			send:    make(chan ServerMessage, sendBuffer),
			limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst),
		}

		hub.add(client)
		coord.Connect(client.id)

		hub.log.WithFields(logrus.Fields{"conn": client.id, "remote": realIP(r)}).Info("CONNS: Connected")

		go client.writePump()
		client.readPump(hub, coord)
	}
}

func (c *Client) readPump(h *Hub, coord *Coordinator) {
	defer func() {
		h.remove(c)
		coord.Disconnect(c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			h.Send(c.id, ServerMessage{Type: evError, Data: ErrorMessage{Message: ErrRateLimited.Error()}})

			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.Send(c.id, ServerMessage{Type: evError, Data: ErrorMessage{Message: ErrValidation.Error() + ": malformed message"}})

			continue
		}

		coord.Receive(c.id, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
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
