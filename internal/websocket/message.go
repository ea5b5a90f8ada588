package websocket

import (
	"encoding/json"

	"github.com/isdelr/inventory-manager-be/internal/models"
)

// Message defines the structure for websocket messages in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Actions sent by the server.
const (
	ActionEvent = "event"
	ActionAck   = "ack"
	ActionError = "error"
)

// Actions accepted from clients.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// SubscribePayload lists event type prefixes such as "product." or
// "auth.login". An empty list means every event.
type SubscribePayload struct {
	Types []string `json:"types"`
}

func newMessage(action string, payload any) Message {
	raw, _ := json.Marshal(payload)
	return Message{Action: action, Payload: raw}
}

// NewEventMessage wraps a stored event.
func NewEventMessage(event models.Event) Message {
	return newMessage(ActionEvent, event)
}

// NewErrorMessage encodes an error for a single client.
func NewErrorMessage(msg string) []byte {
	b, _ := json.Marshal(newMessage(ActionError, map[string]string{"error": msg}))
	return b
}

// NewAckMessage confirms the filter now active for a client.
func NewAckMessage(types []string) []byte {
	if types == nil {
		types = []string{}
	}
	b, _ := json.Marshal(newMessage(ActionAck, SubscribePayload{Types: types}))
	return b
}
