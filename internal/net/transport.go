// Package net publishes the live annotation set to read-only viewers on the
// local network over websockets and advertises it with mDNS.
package net

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"MarkupBoard/internal/export"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 8
)

// Message is one published state of the board.
type Message struct {
	Session  string          `json:"session"`
	Revision uint64          `json:"revision"`
	Document export.Document `json:"document"`
}

// Peer is one connected viewer.
type Peer struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans published board states out to every viewer. Viewers only
// receive; anything they send is discarded.
type Hub struct {
	session  string
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	peers    map[string]*Peer
	latest   []byte
	log      *zap.Logger
}

// NewHub returns an empty hub for the given session id.
func NewHub(session string) *Hub {
	return &Hub{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		peers: make(map[string]*Peer),
		log:   zap.L().Named("hub"),
	}
}

// Len is the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Latest returns the last published message, or nil.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Publish encodes the board state and sends it to every viewer. A viewer
// whose buffer is full is dropped.
func (h *Hub) Publish(rev uint64, doc export.Document) error {
	data, err := json.Marshal(Message{Session: h.session, Revision: rev, Document: doc})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = data
	for id, p := range h.peers {
		select {
		case p.send <- data:
		default:
			h.log.Warn("viewer too slow, dropping", zap.String("peer", id))
			h.removeLocked(p)
		}
	}
	return nil
}

// ServeHTTP upgrades a viewer connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("upgrade failed", zap.Error(err))
		return
	}
	p := &Peer{ID: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.peers[p.ID] = p
	if h.latest != nil {
		p.send <- h.latest
	}
	h.mu.Unlock()
	h.log.Info("viewer connected", zap.String("peer", p.ID), zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(p)
	h.readPump(p)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.peers {
		h.removeLocked(p)
	}
}

func (h *Hub) remove(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(p)
}

func (h *Hub) removeLocked(p *Peer) {
	if _, ok := h.peers[p.ID]; !ok {
		return
	}
	delete(h.peers, p.ID)
	close(p.send)
}

func (h *Hub) readPump(p *Peer) {
	defer func() {
		h.remove(p)
		p.conn.Close()
		h.log.Info("viewer disconnected", zap.String("peer", p.ID))
	}()
	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("viewer read failed", zap.String("peer", p.ID), zap.Error(err))
			}
			return
		}
	}
}

// writePump sends queued states. Only the newest queued state is written;
// older ones are superseded.
func (h *Hub) writePump(p *Peer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			for n := len(p.send); n > 0; n-- {
				next, ok := <-p.send
				if !ok {
					break
				}
				msg = next
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
