package websocket

// EventPublisher is how services push events to a user's open sockets
type EventPublisher interface {
	Publish(subject string, event Event)
}

var (
	_ EventPublisher = (*Hub)(nil)
	_ EventPublisher = NoOpPublisher{}
)

// Publish broadcasts event to every socket of subject. Users with no open socket cost nothing.
func (h *Hub) Publish(subject string, event Event) {
	if h.ClientCount(subject) == 0 {
		return
	}
	h.Broadcast(subject, event)
}

// NoOpPublisher drops every event. Services use it until a hub is attached.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(string, Event) {}
