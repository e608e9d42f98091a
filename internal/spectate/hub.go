// Package spectate streams live games to WebSocket clients.
package spectate

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-2048/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Event names carried by Message.
const (
	EventBoard    = "board"
	EventWin      = "win"
	EventGameOver = "game_over"
)

// BoardState is the JSON form of a game snapshot.
type BoardState struct {
	Grid     [][]int `json:"grid"`
	Size     int     `json:"size"`
	Score    int     `json:"score"`
	MaxTile  int     `json:"max_tile"`
	Moves    int     `json:"moves"`
	WinScore int     `json:"win_score"`
	State    string  `json:"state"`
	Won      bool    `json:"won"`
}

// Message is one update pushed to spectators.
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	Board     *BoardState `json:"board,omitempty"`
	Score     int         `json:"score"`
}

// NewBoardState converts a snapshot for the wire.
func NewBoardState(s game.Snapshot) *BoardState {
	return &BoardState{
		Grid:     s.Grid,
		Size:     s.Size,
		Score:    s.Score,
		MaxTile:  s.MaxTile,
		Moves:    s.Moves,
		WinScore: s.WinScore,
		State:    string(s.State),
		Won:      s.Won,
	}
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string // Empty follows every session
}

// Hub tracks spectators and fans game updates out to them.
// It is safe for concurrent use by many game sessions.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// ServeHTTP upgrades the request to a WebSocket. The optional "session"
// query parameter limits the stream to one game.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: r.URL.Query().Get("session"),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// Publish sends msg to every matching spectator. It never blocks; a client
// whose buffer is full is disconnected.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal spectator message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.sessionID != "" && c.sessionID != msg.SessionID {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// Session returns a renderer that publishes one game's updates.
func (h *Hub) Session(id string) *SessionRenderer {
	return &SessionRenderer{hub: h, id: id}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug("Spectator connected", "session", c.sessionID, "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Debug("Spectator disconnected", "session", c.sessionID, "clients", len(h.clients))
}

// readPump keeps the connection alive; spectators never send commands.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("WebSocket error", "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
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
		}
	}
}

// SessionRenderer adapts the hub to game.Renderer for one session.
type SessionRenderer struct {
	hub *Hub
	id  string
}

// RenderBoard publishes the board to spectators.
func (s *SessionRenderer) RenderBoard(snap game.Snapshot) {
	s.hub.Publish(Message{SessionID: s.id, Event: EventBoard, Board: NewBoardState(snap), Score: snap.Score})
}

// RenderWin publishes a win event.
func (s *SessionRenderer) RenderWin(score int) {
	s.hub.Publish(Message{SessionID: s.id, Event: EventWin, Score: score})
}

// RenderGameOver publishes a game-over event.
func (s *SessionRenderer) RenderGameOver(score int) {
	s.hub.Publish(Message{SessionID: s.id, Event: EventGameOver, Score: score})
}

var _ game.Renderer = (*SessionRenderer)(nil)
