package models

import "time"

type Group struct {
	ID        int64     `json:"group_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"date_created"`
}

type GroupMember struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}
