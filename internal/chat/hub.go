// Package chat keeps process-local chat rooms with bounded history and live fan-out.
package chat

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

const (
	// HistoryLimit bounds the messages kept per room.
	HistoryLimit = 200
	// MaxRooms caps how many rooms, defaults included, a hub will create.
	MaxRooms   = 64
	maxBodyLen = 2000
	subBuffer  = 16
)

var roomName = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)

// DefaultRooms always exist.
var DefaultRooms = []string{"general", "code-review", "random"}

// Message is one chat line.
type Message struct {
	ID     string    `json:"id"`
	Room   string    `json:"room"`
	UserID string    `json:"user_id"`
	Login  string    `json:"login"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// RoomInfo summarises a room for listings.
type RoomInfo struct {
	Name        string `json:"name"`
	Messages    int    `json:"messages"`
	Subscribers int    `json:"subscribers"`
}

type room struct {
	history []Message
	subs    map[chan Message]struct{}
}

// Hub owns every room. It is safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]*room
	limit    int
	maxRooms int
	now      func() time.Time
}

// NewHub creates a hub with the default rooms.
func NewHub() *Hub {
	h := &Hub{rooms: make(map[string]*room), limit: HistoryLimit, maxRooms: MaxRooms, now: time.Now}
	for _, name := range DefaultRooms {
		h.rooms[name] = newRoom()
	}
	return h
}

func newRoom() *room {
	return &room{subs: make(map[chan Message]struct{})}
}

// roomLocked returns the named room, creating it while under the cap. h.mu must be held.
func (h *Hub) roomLocked(roomID string) (*room, error) {
	if r, ok := h.rooms[roomID]; ok {
		return r, nil
	}
	if len(h.rooms) >= h.maxRooms {
		return nil, fmt.Errorf("%w: room limit of %d reached", domain.ErrValidation, h.maxRooms)
	}
	r := newRoom()
	h.rooms[roomID] = r
	return r, nil
}

// Rooms lists rooms alphabetically.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RoomInfo, 0, len(h.rooms))
	for name, r := range h.rooms {
		out = append(out, RoomInfo{Name: name, Messages: len(r.history), Subscribers: len(r.subs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Post appends a message, creating the room on first use, and fans it out to subscribers.
// Slow subscribers miss messages rather than block the poster.
func (h *Hub) Post(roomID, userID, login, body string) (Message, error) {
	body = strings.TrimSpace(body)
	if !roomName.MatchString(roomID) {
		return Message{}, fmt.Errorf("%w: invalid room name", domain.ErrValidation)
	}
	if body == "" {
		return Message{}, fmt.Errorf("%w: message body is required", domain.ErrValidation)
	}
	if len(body) > maxBodyLen {
		return Message{}, fmt.Errorf("%w: message exceeds %d characters", domain.ErrValidation, maxBodyLen)
	}

	msg := Message{
		ID:     uuid.NewString(),
		Room:   roomID,
		UserID: userID,
		Login:  login,
		Body:   body,
		SentAt: h.now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.roomLocked(roomID)
	if err != nil {
		return Message{}, err
	}
	r.history = append(r.history, msg)
	if over := len(r.history) - h.limit; over > 0 {
		r.history = append([]Message(nil), r.history[over:]...)
	}
	for ch := range r.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return msg, nil
}

// History returns up to limit of the most recent messages, oldest first.
// Unknown rooms yield an empty slice.
func (h *Hub) History(roomID string, limit int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[roomID]
	if !ok {
		return []Message{}
	}
	msgs := r.history
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]Message{}, msgs...)
}

// Subscribe registers a live listener on a room. The returned cancel func must be called.
func (h *Hub) Subscribe(roomID string) (<-chan Message, func(), error) {
	_, ch, cancel, err := h.Join(roomID, 0)
	return ch, cancel, err
}

// Join snapshots up to backlog recent messages and subscribes in one step, so every
// message is either in the snapshot or delivered on the channel, never both.
// The returned cancel func must be called.
func (h *Hub) Join(roomID string, backlog int) ([]Message, <-chan Message, func(), error) {
	if !roomName.MatchString(roomID) {
		return nil, nil, nil, fmt.Errorf("%w: invalid room name", domain.ErrValidation)
	}
	ch := make(chan Message, subBuffer)

	h.mu.Lock()
	r, err := h.roomLocked(roomID)
	if err != nil {
		h.mu.Unlock()
		return nil, nil, nil, err
	}
	history := []Message{}
	if backlog > 0 {
		msgs := r.history
		if len(msgs) > backlog {
			msgs = msgs[len(msgs)-backlog:]
		}
		history = append(history, msgs...)
	}
	r.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(r.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return history, ch, cancel, nil
}
