package store

import (
	"context"
	"database/sql"

	"studyhub/internal/models"
)

type Courses struct {
	DB *sql.DB
}

func NewCourses(db *sql.DB) *Courses {
	return &Courses{DB: db}
}

func (s *Courses) All(ctx context.Context) ([]models.Course, error) {
	return s.scanList(s.DB.QueryContext(ctx,
		"SELECT course_id, course_name FROM courses ORDER BY course_name"))
}

func (s *Courses) ByID(ctx context.Context, id int64) (c models.Course, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT course_id, course_name FROM courses WHERE course_id = ?", id).
		Scan(&c.ID, &c.Name)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

func (s *Courses) Create(ctx context.Context, name string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO courses (course_name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Courses) Enroll(ctx context.Context, userID, courseID int64) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO user_courses (user_id, course_id) VALUES (?, ?)", userID, courseID)
	return err
}

func (s *Courses) Unenroll(ctx context.Context, userID, courseID int64) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM user_courses WHERE user_id = ? AND course_id = ?", userID, courseID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Courses) ForUser(ctx context.Context, userID int64) ([]models.Course, error) {
	return s.scanList(s.DB.QueryContext(ctx, `
		SELECT c.course_id, c.course_name
		FROM courses c
		JOIN user_courses uc ON c.course_id = uc.course_id
		WHERE uc.user_id = ?
		ORDER BY c.course_name`, userID))
}

func (s *Courses) scanList(rows *sql.Rows, err error) ([]models.Course, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}
