package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Commands a client may send over its socket
const (
	// CommandFlush asks for the pending edits to be saved now, typically on page exit
	CommandFlush = "flush"
	// CommandStatus asks for the current sync status
	CommandStatus = "status"
)

var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrUnknownCommand   = errors.New("unknown command")
)

// Command is one inbound frame: {"type": "flush"}
type Command struct {
	Type string `json:"type"`
}

// CommandHandler answers a command for one user. A nil event means no reply.
// Returning ErrUnknownCommand makes the hub reject the frame.
type CommandHandler func(subject string, cmd Command) (*Event, error)

// SetCommandHandler installs the handler for inbound frames. Without one every frame is ignored.
func (h *Hub) SetCommandHandler(handler CommandHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = handler
}

// Dispatch decodes an inbound frame from client and sends the reply, if any, to that client only
func (h *Hub) Dispatch(client ClientInterface, data []byte) {
	h.mu.RLock()
	handler := h.commands
	h.mu.RUnlock()
	if handler == nil {
		return
	}

	reply, err := h.answer(handler, client.Subject(), data)
	if err != nil {
		log.Debug().
			Err(err).
			Str("subject", client.Subject()).
			Str("client_id", client.ID()).
			Msg("WebSocket command rejected")
		rejected := CommandRejected(err)
		reply = &rejected
	}
	if reply == nil {
		return
	}

	out, err := reply.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", reply.Type).Msg("Failed to serialize reply")
		return
	}
	if err := client.Send(out); err != nil {
		log.Debug().Err(err).Str("client_id", client.ID()).Msg("Failed to send reply")
	}
}

func (h *Hub) answer(handler CommandHandler, subject string, data []byte) (*Event, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil || cmd.Type == "" {
		return nil, ErrMalformedCommand
	}
	reply, err := handler(subject, cmd)
	if errors.Is(err, ErrUnknownCommand) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	return reply, err
}
