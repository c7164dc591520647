package ws

import "encoding/json"

// Message is the envelope of every frame in both directions.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inboundMessage keeps the payload raw until the type is known.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
