package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialnet/models"
)

const userColumns = "id, email, username, first_name, last_name, password, last_login, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var lastLogin sql.NullTime
	if err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.Password, &lastLogin, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.q.ExecContext(ctx,
		"INSERT INTO users (id, email, username, first_name, last_name, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Username, user.FirstName, user.LastName, user.Password, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByEmail matches the email case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = ?", strings.ToLower(email))
}

func (s *Store) getUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

// SearchUsers returns users whose first name, last name or username contains
// term, ignoring case. An empty term matches every user.
func (s *Store) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return s.listUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE LOWER(first_name) LIKE ? ESCAPE '!'
		   OR LOWER(last_name) LIKE ? ESCAPE '!'
		   OR LOWER(username) LIKE ? ESCAPE '!'
		ORDER BY username, id
	`, pattern, pattern, pattern)
}

func (s *Store) FindUsersByEmail(ctx context.Context, email string) ([]models.User, error) {
	return s.listUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = ? ORDER BY username, id",
		strings.ToLower(email),
	)
}

func (s *Store) listUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.q.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// LockUser takes a row lock on the user until the surrounding transaction
// ends. SQLite transactions already hold the database write lock.
func (s *Store) LockUser(ctx context.Context, id string) error {
	if s.dialect != MySQL {
		return nil
	}
	var locked string
	err := s.q.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ? FOR UPDATE", id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
