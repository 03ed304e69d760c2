package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/desertthunder/reload/internal/playback"
	"github.com/desertthunder/reload/internal/shared"
)

// Message types sent to browser widgets.
const (
	MsgLoad     = "load"
	MsgPlay     = "play"
	MsgPause    = "pause"
	MsgVolume   = "volume"
	MsgSnapshot = "snapshot"
	MsgNotice   = "notice"
)

const (
	sendBuffer  = 64
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxEventLen = 4096
)

// Message is one frame on the player websocket.
type Message struct {
	Type     string             `json:"type"`
	Seq      uint64             `json:"seq,omitempty"`
	VideoID  string             `json:"video_id,omitempty"`
	Volume   int                `json:"volume"`
	Snapshot *playback.Snapshot `json:"snapshot,omitempty"`
	Notice   *shared.Notice     `json:"notice,omitempty"`
}

// Client is a connected player widget.
type Client struct {
	Send chan []byte
	conn *websocket.Conn
}

// Hub fans player directives, snapshots and notices out to every connected widget.
//
// It implements [playback.Player] and [shared.Notifier]. Sends never block: a client whose
// buffer is full is dropped.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	events     func(playback.Event) error
	logger     *log.Logger

	mu      sync.Mutex
	clients map[*Client]bool
	last    []byte // latest load directive, replayed to new clients
	volume  []byte
}

// NewHub creates a hub. Events read from widgets are passed to onEvent.
func NewHub(onEvent func(playback.Event) error, logger *log.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
		events:     onEvent,
		logger:     shared.WithLogger(logger, "component", "hub"),
		clients:    make(map[*Client]bool),
	}
}

// Run delivers messages until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			for _, replay := range [][]byte{h.last, h.volume} {
				if replay != nil {
					c.Send <- replay
				}
			}
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					h.logger.Warn("dropping slow client")
					delete(h.clients, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected widgets.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) publish(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.logger.Error("failed to encode message", "type", m.Type, "error", err)
		return
	}

	switch m.Type {
	case MsgLoad:
		h.mu.Lock()
		h.last = data
		h.mu.Unlock()
	case MsgVolume:
		h.mu.Lock()
		h.volume = data
		h.mu.Unlock()
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full", "type", m.Type)
	}
}

func (h *Hub) Load(seq uint64, videoID string) {
	h.publish(Message{Type: MsgLoad, Seq: seq, VideoID: videoID})
}

func (h *Hub) Play() { h.publish(Message{Type: MsgPlay}) }

func (h *Hub) Pause() { h.publish(Message{Type: MsgPause}) }

func (h *Hub) SetVolume(percent int) {
	h.publish(Message{Type: MsgVolume, Volume: percent})
}

// Notify broadcasts a notice to every widget.
func (h *Hub) Notify(n shared.Notice) {
	h.publish(Message{Type: MsgNotice, Notice: &n})
}

// Watch broadcasts every snapshot published by c until ctx is cancelled.
func (h *Hub) Watch(ctx context.Context, c *playback.Controller) {
	snaps, cancel := c.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-snaps:
			if !ok {
				return
			}
			h.publish(Message{Type: MsgSnapshot, Snapshot: &s})
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeHTTP upgrades the request and pumps messages in both directions.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{Send: make(chan []byte, sendBuffer), conn: conn}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxEventLen)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev playback.Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		if h.events == nil {
			continue
		}
		if err := h.events(ev); err != nil {
			h.logger.Warn("rejected player event", "kind", ev.Kind, "error", err)
		}
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
