package store

import (
	"context"
	"database/sql"

	"studyhub/internal/models"
)

type Posts struct {
	DB *sql.DB
}

func NewPosts(db *sql.DB) *Posts {
	return &Posts{DB: db}
}

// List returns active posts newest first, optionally filtered by course.
func (s *Posts) List(ctx context.Context, courseID *int64) ([]models.Post, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.post_id, p.content, p.post_type, p.date_created, u.name AS author, c.course_name
		FROM posts p
		JOIN users u ON p.user_id = u.user_id
		LEFT JOIN courses c ON p.course_id = c.course_id
		WHERE p.is_active = 1 AND (? IS NULL OR p.course_id = ?)
		ORDER BY p.date_created DESC`, courseID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.PostType, &p.CreatedAt, &p.Author, &p.CourseName); err != nil {
			return nil, err
		}
		p.IsActive = true
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Posts) ByID(ctx context.Context, id int64) (p models.Post, err error) {
	err = s.DB.QueryRowContext(ctx, `
		SELECT post_id, user_id, course_id, content, post_type, is_active, is_reported, date_created, date_modified
		FROM posts WHERE post_id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.CourseID, &p.Content, &p.PostType, &p.IsActive, &p.IsReported, &p.CreatedAt, &p.ModifiedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	return p, err
}

func (s *Posts) Create(ctx context.Context, userID int64, courseID *int64, content, postType string) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO posts (user_id, course_id, content, post_type) VALUES (?, ?, ?, ?)",
		userID, courseID, content, postType)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update changes a post's content. Only the owner or an admin may do so;
// anything else affects zero rows and reports ErrNotFound.
func (s *Posts) Update(ctx context.Context, postID, userID int64, content string, isAdmin bool) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE posts
		SET content = ?, date_modified = CURRENT_TIMESTAMP
		WHERE post_id = ? AND (user_id = ? OR ?)`, content, postID, userID, isAdmin)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Posts) Delete(ctx context.Context, postID, userID int64, isAdmin bool) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM posts WHERE post_id = ? AND (user_id = ? OR ?)", postID, userID, isAdmin)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Posts) Report(ctx context.Context, postID int64) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE posts SET is_reported = 1 WHERE post_id = ?", postID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Posts) Reported(ctx context.Context) ([]models.Post, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT p.post_id, p.content, p.user_id, u.name AS author
		FROM posts p
		JOIN users u ON p.user_id = u.user_id
		WHERE p.is_reported = 1
		ORDER BY p.date_created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.UserID, &p.Author); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Posts) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT cm.comment_id, cm.post_id, cm.user_id, cm.content, cm.date_created, u.name AS author
		FROM comments cm
		JOIN users u ON cm.user_id = u.user_id
		WHERE cm.post_id = ?
		ORDER BY cm.date_created ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.Author); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Posts) CreateComment(ctx context.Context, postID, userID int64, content string) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"INSERT INTO comments (post_id, user_id, content) VALUES (?, ?, ?)",
		postID, userID, content)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Posts) UpdateComment(ctx context.Context, commentID, userID int64, content string, isAdmin bool) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE comments SET content = ? WHERE comment_id = ? AND (user_id = ? OR ?)",
		content, commentID, userID, isAdmin)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Posts) DeleteComment(ctx context.Context, commentID, userID int64, isAdmin bool) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM comments WHERE comment_id = ? AND (user_id = ? OR ?)",
		commentID, userID, isAdmin)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
