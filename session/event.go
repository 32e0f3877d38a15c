// session/event.go
package session

// EventType tags an Event pushed to a live viewer.
type EventType string

const (
	EventWord       EventType = "word"
	EventError      EventType = "error"
	EventDisconnect EventType = "disconnect"
)

// Reason explains an EventError to the client.
type Reason string

const (
	ReasonNotAuth          Reason = "not_auth"
	ReasonNotHost          Reason = "not_host"
	ReasonEnded            Reason = "ended"
	ReasonAlreadyConnected Reason = "already_connected"
)

// Event is what travels over a live-view delivery channel.
type Event struct {
	Type   EventType `json:"type"`
	Word   string    `json:"word,omitempty"`
	Reason Reason    `json:"reason,omitempty"`
}

func WordEvent(word string) Event { return Event{Type: EventWord, Word: word} }

func ErrorEvent(r Reason) Event { return Event{Type: EventError, Reason: r} }

func DisconnectEvent() Event { return Event{Type: EventDisconnect} }

const channelBuffer = 32

// NewChannel creates a delivery channel sized so that best-effort pushes
// never block the producer.
func NewChannel() chan Event {
	return make(chan Event, channelBuffer)
}

// Deliver pushes an event without blocking. A viewer that stopped
// draining its channel just misses events.
func Deliver(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}
