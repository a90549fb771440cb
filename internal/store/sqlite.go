package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joss/debate/internal/domain"
)

// SQLite stores client state in a single database file.
type SQLite struct {
	db   *sql.DB
	path string

	mu     sync.Mutex
	closed bool
}

var _ Local = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) dataDir/debate.db.
func OpenSQLite(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "debate.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLite{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		token TEXT NOT NULL,
		signed_in INTEGER NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Session operations

func (s *SQLite) LoadSession(ctx context.Context) (*domain.Session, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	var sess domain.Session
	var role string
	var signedIn, expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, email, role, token, signed_in, expires_at
		FROM session WHERE slot = 1
	`).Scan(&sess.UserID, &sess.Username, &sess.Email, &role, &sess.Token, &signedIn, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError("session", "")
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess.Role = domain.Role(role)
	sess.SignedIn = time.Unix(signedIn, 0)
	if expiresAt > 0 {
		sess.ExpiresAt = time.Unix(expiresAt, 0)
	}
	return &sess, nil
}

func (s *SQLite) SaveSession(ctx context.Context, sess *domain.Session) error {
	if err := s.check(); err != nil {
		return err
	}

	var expiresAt int64
	if !sess.ExpiresAt.IsZero() {
		expiresAt = sess.ExpiresAt.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (slot, user_id, username, email, role, token, signed_in, expires_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			user_id = excluded.user_id,
			username = excluded.username,
			email = excluded.email,
			role = excluded.role,
			token = excluded.token,
			signed_in = excluded.signed_in,
			expires_at = excluded.expires_at
	`, sess.UserID, sess.Username, sess.Email, string(sess.Role), sess.Token, sess.SignedIn.Unix(), expiresAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLite) ClearSession(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Preference operations

func (s *SQLite) GetPref(ctx context.Context, key string) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", NewNotFoundError("preference", key)
	}
	if err != nil {
		return "", fmt.Errorf("get preference: %w", err)
	}
	return value, nil
}

func (s *SQLite) SetPref(ctx context.Context, key, value string) error {
	if err := s.check(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}
