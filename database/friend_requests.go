package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"socialnet/models"
)

func (s *Store) CreateFriendRequest(ctx context.Context, fr *models.FriendRequest) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO friend_requests (id, from_user_id, to_user_id, accepted, created_at) VALUES (?, ?, ?, ?, ?)",
		fr.ID, fr.FromUserID, fr.ToUserID, fr.Accepted, fr.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert friend request: %w", err)
	}
	return nil
}

// GetReceivedFriendRequest loads a request only when it is addressed to
// toUserID; requests belonging to anyone else read as ErrNotFound.
func (s *Store) GetReceivedFriendRequest(ctx context.Context, id, toUserID string) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := s.q.QueryRowContext(ctx,
		"SELECT id, from_user_id, to_user_id, accepted, created_at FROM friend_requests WHERE id = ? AND to_user_id = ?",
		id, toUserID,
	).Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Accepted, &fr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select friend request: %w", err)
	}
	return &fr, nil
}

func (s *Store) AcceptFriendRequest(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, "UPDATE friend_requests SET accepted = ? WHERE id = ?", true, id)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	return requireRow(result)
}

func (s *Store) DeleteFriendRequest(ctx context.Context, id string) error {
	result, err := s.q.ExecContext(ctx, "DELETE FROM friend_requests WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	return requireRow(result)
}

// FriendRequestExists reports whether from has a request to to in any state.
func (s *Store) FriendRequestExists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM friend_requests WHERE from_user_id = ? AND to_user_id = ?)",
		fromUserID, toUserID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check friend request: %w", err)
	}
	return exists, nil
}

// CountFriendRequestsSince counts requests sent by fromUserID at or after since.
func (s *Store) CountFriendRequestsSince(ctx context.Context, fromUserID string, since time.Time) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM friend_requests WHERE from_user_id = ? AND created_at >= ?",
		fromUserID, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count friend requests: %w", err)
	}
	return count, nil
}

// ListFriends resolves the accepted requests in either direction to the user
// on the other side, oldest friendship first.
func (s *Store) ListFriends(ctx context.Context, userID string) ([]models.User, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.password, u.last_login, u.created_at, u.updated_at
		FROM friend_requests fr
		JOIN users u ON u.id = CASE WHEN fr.from_user_id = ? THEN fr.to_user_id ELSE fr.from_user_id END
		WHERE fr.accepted = ? AND (fr.from_user_id = ? OR fr.to_user_id = ?)
		ORDER BY fr.created_at, u.id
	`, userID, true, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query friends: %w", err)
	}
	defer rows.Close()

	friends := []models.User{}
	seen := make(map[string]bool)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		// both directions accepted yields the same friend twice
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		friends = append(friends, *user)
	}
	return friends, rows.Err()
}

// FriendIDs returns the ids of userID's friends.
func (s *Store) FriendIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT from_user_id, to_user_id FROM friend_requests
		WHERE accepted = ? AND (from_user_id = ? OR to_user_id = ?)
	`, true, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query friend ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var from, to string
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scan friend ids: %w", err)
		}
		if from == userID {
			ids[to] = true
		} else {
			ids[from] = true
		}
	}
	return ids, rows.Err()
}

// ListPendingFriendRequests returns unanswered requests addressed to
// toUserID with the sender attached, newest first.
func (s *Store) ListPendingFriendRequests(ctx context.Context, toUserID string) ([]models.FriendRequestWithSender, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT fr.id, fr.from_user_id, fr.to_user_id, fr.accepted, fr.created_at,
			   u.id, u.email, u.username, u.first_name, u.last_name
		FROM friend_requests fr
		JOIN users u ON u.id = fr.from_user_id
		WHERE fr.to_user_id = ? AND fr.accepted = ?
		ORDER BY fr.created_at DESC, fr.id
	`, toUserID, false)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	defer rows.Close()

	requests := []models.FriendRequestWithSender{}
	for rows.Next() {
		var fr models.FriendRequestWithSender
		if err := rows.Scan(
			&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.Accepted, &fr.CreatedAt,
			&fr.FromUser.ID, &fr.FromUser.Email, &fr.FromUser.Username, &fr.FromUser.FirstName, &fr.FromUser.LastName,
		); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		requests = append(requests, fr)
	}
	return requests, rows.Err()
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
