package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Dialect names the SQL driver behind a Store. The values double as the
// database/sql driver names.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite3"
)

func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case MySQL, SQLite:
		return Dialect(driver), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs the user and friend-request queries. A Store handed to an InTx
// callback is bound to that transaction.
type Store struct {
	db      *sql.DB
	q       querier
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, q: db, dialect: dialect}
}

// Open connects to the configured database and verifies the connection.
func Open(driver, dsn string) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	switch dialect {
	case MySQL:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	case SQLite:
		// one writer; also keeps shared in-memory databases alive
		db.SetMaxOpenConns(1)
	}

	logrus.WithField("driver", dialect).Info("Database connected successfully")
	return New(db, dialect), nil
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InTx runs fn inside a transaction, committing when fn returns nil. Calls on
// a Store that is already transaction-bound reuse the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Store{q: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logrus.WithError(rbErr).Warn("Transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) CreateTables(ctx context.Context) error {
	timestamp := "DATETIME(6)"
	if s.dialect == SQLite {
		timestamp = "DATETIME"
	}

	tables := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id          VARCHAR(36) PRIMARY KEY,
			email       VARCHAR(254) NOT NULL,
			username    VARCHAR(254) NOT NULL,
			first_name  VARCHAR(150) NOT NULL DEFAULT '',
			last_name   VARCHAR(150) NOT NULL DEFAULT '',
			password    VARCHAR(255) NOT NULL,
			last_login  %[1]s NULL,
			created_at  %[1]s NOT NULL,
			updated_at  %[1]s NOT NULL,
			CONSTRAINT uk_email UNIQUE (email)
		)`, timestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS friend_requests (
			id            VARCHAR(36) PRIMARY KEY,
			from_user_id  VARCHAR(36) NOT NULL,
			to_user_id    VARCHAR(36) NOT NULL,
			accepted      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    %[1]s NOT NULL,
			CONSTRAINT uk_friend_request UNIQUE (from_user_id, to_user_id),
			CONSTRAINT fk_friend_request_from FOREIGN KEY (from_user_id) REFERENCES users (id) ON DELETE CASCADE,
			CONSTRAINT fk_friend_request_to FOREIGN KEY (to_user_id) REFERENCES users (id) ON DELETE CASCADE
		)`, timestamp),
	}

	for _, table := range tables {
		if _, err := s.q.ExecContext(ctx, table); err != nil {
			return err
		}
	}

	logrus.Info("Database tables created successfully")
	return nil
}
