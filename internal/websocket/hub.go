package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when sending to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface is what the hub needs from a connection
type ClientInterface interface {
	ID() string
	Subject() string
	Send(data []byte) error
	Close() error
}

// Hub routes events to the open sockets of each user. One user may hold a
// socket per tab or device; events never cross subjects.
type Hub struct {
	mu       sync.RWMutex
	users    map[string]map[string]ClientInterface
	commands CommandHandler
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{users: make(map[string]map[string]ClientInterface)}
}

// Register adds client under its subject
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	sockets, ok := h.users[client.Subject()]
	if !ok {
		sockets = make(map[string]ClientInterface)
		h.users[client.Subject()] = sockets
	}
	sockets[client.ID()] = client
	open := len(sockets)
	h.mu.Unlock()

	log.Debug().
		Str("subject", client.Subject()).
		Str("client_id", client.ID()).
		Int("open", open).
		Msg("WebSocket client registered")
}

// Unregister removes client. Unknown clients are ignored.
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sockets := h.users[client.Subject()]
	if _, ok := sockets[client.ID()]; !ok {
		return
	}
	delete(sockets, client.ID())
	if len(sockets) == 0 {
		delete(h.users, client.Subject())
	}
	log.Debug().
		Str("subject", client.Subject()).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

func (h *Hub) socketsOf(subject string) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ClientInterface, 0, len(h.users[subject]))
	for _, c := range h.users[subject] {
		out = append(out, c)
	}
	return out
}

// Broadcast serializes event once and queues it on every socket of subject.
// Client.Send never blocks, so delivery happens inline.
func (h *Hub) Broadcast(subject string, event Event) {
	sockets := h.socketsOf(subject)
	if len(sockets) == 0 {
		return
	}

	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("subject", subject).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	delivered := 0
	for _, c := range sockets {
		if err := c.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("subject", subject).
				Str("client_id", c.ID()).
				Msg("Failed to send to client")
			continue
		}
		delivered++
	}

	log.Debug().
		Str("subject", subject).
		Str("event_type", event.Type).
		Int("delivered", delivered).
		Msg("Broadcast event")
}

// ClientCount returns the number of open sockets of subject
func (h *Hub) ClientCount(subject string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[subject])
}

// TotalClientCount returns the number of open sockets across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, sockets := range h.users {
		total += len(sockets)
	}
	return total
}

// CloseAll closes every socket and empties the hub. The HTTP server does not
// track hijacked connections, so shutdown has to close them here.
func (h *Hub) CloseAll() int {
	h.mu.Lock()
	users := h.users
	h.users = make(map[string]map[string]ClientInterface)
	h.mu.Unlock()

	closed := 0
	for subject, sockets := range users {
		for _, c := range sockets {
			if err := c.Close(); err != nil {
				log.Debug().Err(err).Str("subject", subject).Str("client_id", c.ID()).Msg("WebSocket close error")
			}
			closed++
		}
	}
	return closed
}
