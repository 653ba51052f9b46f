package chat

import (
	"time"

	"studyhub/internal/models"
)

// Event is the frame broadcast to every session in a room after a
// message has been persisted.
type Event struct {
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	UserID    int64  `json:"user_id"`
}

func NewEvent(m models.Message) Event {
	return Event{
		MessageID: m.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp.Format(time.RFC3339Nano),
		Sender:    m.Sender,
		UserID:    m.UserID,
	}
}

// inboundFrame is the only payload clients may send: {"message": "..."}.
type inboundFrame struct {
	Message string `json:"message"`
}
