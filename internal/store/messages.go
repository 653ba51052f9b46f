package store

import (
	"context"
	"database/sql"
	"fmt"

	"studyhub/internal/models"
)

// Messages is the durable append-only log of chat messages. Append is
// atomic: a message is either fully durable with an assigned id and
// timestamp or not created at all. Membership is enforced by callers,
// never here.
type Messages struct {
	DB *sql.DB
}

func NewMessages(db *sql.DB) *Messages {
	return &Messages{DB: db}
}

// Append persists one message and returns it with the sender's display
// name joined in. Returns ErrNotFound if the group does not exist.
func (s *Messages) Append(ctx context.Context, groupID, userID int64, content string) (models.Message, error) {
	var one int
	err := s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM study_groups WHERE group_id = ?", groupID).Scan(&one)
	if err == sql.ErrNoRows {
		return models.Message{}, ErrNotFound
	}
	if err != nil {
		return models.Message{}, err
	}

	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO messages (group_id, user_id, content) VALUES (?, ?, ?)",
		groupID, userID, content)
	if err != nil {
		return models.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}

	return s.byID(ctx, id)
}

func (s *Messages) byID(ctx context.Context, id int64) (m models.Message, err error) {
	err = s.DB.QueryRowContext(ctx, `
		SELECT m.message_id, m.group_id, m.user_id, m.content, m.timestamp, u.name AS sender
		FROM messages m
		JOIN users u ON m.user_id = u.user_id
		WHERE m.message_id = ?`, id).
		Scan(&m.ID, &m.GroupID, &m.UserID, &m.Content, &m.Timestamp, &m.Sender)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if err != nil {
		return m, fmt.Errorf("read back message %d: %w", id, err)
	}
	return m, nil
}

// ListByGroup returns the group's full history in ascending timestamp
// order, materialized at call time. Log order is the source of truth for
// message ordering, not arrival order.
func (s *Messages) ListByGroup(ctx context.Context, groupID int64) ([]models.Message, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT m.message_id, m.group_id, m.user_id, m.content, m.timestamp, u.name AS sender
		FROM messages m
		JOIN users u ON m.user_id = u.user_id
		WHERE m.group_id = ?
		ORDER BY m.timestamp ASC, m.message_id ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Content, &m.Timestamp, &m.Sender); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
