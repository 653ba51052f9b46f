package models

import "time"

// Message is one persisted chat message. Sender is the author's display
// name, joined in at read time; it is not a column of the messages table.
type Message struct {
	ID        int64     `json:"message_id"`
	GroupID   int64     `json:"-"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
}
