package chat

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

// RoomID derives the room key from the sorted pair of participant IDs, so
// both sides of a conversation land in the same room.
func RoomID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return strconv.FormatInt(a, 10) + ":" + strconv.FormatInt(b, 10)
}

// Client is one websocket connection joined to a room. Writes are serialized
// per connection.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) send(msg domain.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub relays chat messages between the members of a room, persisting each
// message before broadcasting it.
type Hub struct {
	messages repository.MessageRepository

	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub(messages repository.MessageRepository) *Hub {
	return &Hub{
		messages: messages,
		rooms:    make(map[string]map[*Client]bool),
	}
}

func (h *Hub) join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.rooms[room]
	if clients == nil {
		clients = make(map[*Client]bool)
		h.rooms[room] = clients
	}
	clients[c] = true
}

func (h *Hub) leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.rooms[room]
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) broadcast(room string, msg domain.ChatMessage) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		if err := c.send(msg); err != nil {
			log.Debug().Err(err).Str("room", room).Msg("chat write failed")
		}
	}
}

type inbound struct {
	Body string `json:"body"`
}

// Serve joins the connection to the room shared with peer and pumps messages
// until the connection drops or the context is cancelled. Each inbound message
// is persisted first; a message that cannot be stored is not relayed.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, senderID, peerID int64) {
	room := RoomID(senderID, peerID)
	client := &Client{conn: conn}
	h.join(room, client)
	defer func() {
		h.leave(room, client)
		conn.Close()
	}()

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("room", room).Msg("chat read failed")
			}
			return
		}
		if in.Body == "" {
			continue
		}
		msg := domain.ChatMessage{
			ID:         uuid.NewString(),
			RoomID:     room,
			SenderID:   senderID,
			ReceiverID: peerID,
			Body:       in.Body,
			SentAt:     time.Now().UTC(),
		}
		if err := h.messages.Create(ctx, &msg); err != nil {
			log.Error().Err(err).Str("room", room).Msg("chat message not stored")
			continue
		}
		h.broadcast(room, msg)
	}
}

// History returns up to limit most recent messages of the conversation, oldest
// first.
func (h *Hub) History(ctx context.Context, a, b int64, limit int) ([]domain.ChatMessage, error) {
	return h.messages.ListRoom(ctx, RoomID(a, b), limit)
}
