package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studyhub/internal/models"
)

// Groups is the membership oracle for study groups. Membership reads are
// uncached: a row in study_group_members is the authorization boundary
// and staleness is bounded by how often callers re-check.
type Groups struct {
	DB *sql.DB
}

func NewGroups(db *sql.DB) *Groups {
	return &Groups{DB: db}
}

func (s *Groups) ByID(ctx context.Context, id int64) (g models.Group, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT group_id, title, date_created FROM study_groups WHERE group_id = ?", id).
		Scan(&g.ID, &g.Title, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return g, ErrNotFound
	}
	return g, err
}

func (s *Groups) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx,
		"SELECT 1 FROM study_group_members WHERE group_id = ? AND user_id = ?", groupID, userID).
		Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Groups) Create(ctx context.Context, title string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, "INSERT INTO study_groups (title) VALUES (?)", title)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Groups) Join(ctx context.Context, groupID, userID int64) error {
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO study_group_members (group_id, user_id) VALUES (?, ?)", groupID, userID)
	return err
}

func (s *Groups) Leave(ctx context.Context, groupID, userID int64) error {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM study_group_members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

func (s *Groups) Members(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.user_id, u.name, sgm.joined_at
		FROM users u
		JOIN study_group_members sgm ON u.user_id = sgm.user_id
		WHERE sgm.group_id = ?
		ORDER BY sgm.joined_at`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.GroupMember{}
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Groups) ForUser(ctx context.Context, userID int64) ([]models.Group, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT sg.group_id, sg.title, sg.date_created
		FROM study_groups sg
		JOIN study_group_members sgm ON sg.group_id = sgm.group_id
		WHERE sgm.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

var ErrAlreadyMember = errors.New("store: already a member")

// InviteByEmail adds the user with the given email to the group. The
// caller must already be a member; that check belongs to the handler.
func (s *Groups) InviteByEmail(ctx context.Context, groupID int64, email string) (int64, error) {
	var userID int64
	err := s.DB.QueryRowContext(ctx, "SELECT user_id FROM users WHERE email = ?", email).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	member, err := s.IsMember(ctx, groupID, userID)
	if err != nil {
		return 0, err
	}
	if member {
		return userID, ErrAlreadyMember
	}

	if err := s.Join(ctx, groupID, userID); err != nil {
		return 0, fmt.Errorf("add member: %w", err)
	}
	return userID, nil
}
