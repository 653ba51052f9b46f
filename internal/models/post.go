package models

import "time"

type Post struct {
	ID         int64      `json:"post_id"`
	UserID     int64      `json:"user_id,omitempty"`
	CourseID   *int64     `json:"course_id,omitempty"`
	Content    string     `json:"content"`
	PostType   string     `json:"post_type"`
	Author     string     `json:"author,omitempty"`
	CourseName *string    `json:"course_name,omitempty"`
	IsActive   bool       `json:"is_active"`
	IsReported bool       `json:"is_reported"`
	CreatedAt  time.Time  `json:"date_created"`
	ModifiedAt *time.Time `json:"date_modified,omitempty"`
}

type Comment struct {
	ID        int64     `json:"comment_id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"date_created"`
}
