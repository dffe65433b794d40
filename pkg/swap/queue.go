package swap

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         string
	CreatedAt  time.Time
	RetryCount int
	Message    any
}

// PostMessage is an outbound payload waiting to be delivered over the
// channel. Synthesized marks the one-shot error response created after
// a failed delivery so it is never synthesized again.
type PostMessage struct {
	Data         []byte
	TargetOrigin string
	RequestID    json.RawMessage
	Synthesized  bool
}

func newMessage(id string, message any) *Message {
	return &Message{
		ID:         id,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		Message:    message,
	}
}

func NewPostMessage(data []byte, targetOrigin string, requestID json.RawMessage) *Message {
	pm := PostMessage{
		Data:         data,
		TargetOrigin: targetOrigin,
		RequestID:    requestID,
	}

	return newMessage(uuid.NewString(), pm)
}
