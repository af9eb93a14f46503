package ws

import "time"

// Event names clients listen for. Receipt means "refetch", not "here is the data".
const (
	EventRequestUpdate = "request_update"
	EventNotifications = "notifications"
)

type Event struct {
	Type    string `json:"type"`
	Payload string `json:"payload,omitempty"`
}

// Frame is one broadcast. It may carry several events.
type Frame struct {
	Events []Event   `json:"events"`
	SentAt time.Time `json:"sent_at"`
}

func NewFrame(events ...Event) Frame {
	return Frame{Events: events, SentAt: time.Now().UTC()}
}

func RequestUpdate(requestID string) Event {
	return Event{Type: EventRequestUpdate, Payload: requestID}
}

func Notifications(recipientID string) Event {
	return Event{Type: EventNotifications, Payload: recipientID}
}
