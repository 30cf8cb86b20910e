// Package sqlstore persists records in SQLite or PostgreSQL. Each row keeps
// its lookup columns next to the JSON encoded record.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/store"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	`CREATE TABLE IF NOT EXISTS stories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		seq BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stories_user ON stories(user_id)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

// Store implements store.Store over a SQL database.
type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to the database and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	s := NewWithDB(db)
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logrus.WithField("driver", driver).Info("Opened SQL store")
	return s, nil
}

// NewWithDB wraps an existing connection without touching the schema.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

func decode[T any](data string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &v, nil
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (string, error) {
	var data string
	err := s.db.GetContext(ctx, &data, s.q(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return data, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	data, err := s.getOne(ctx, `SELECT data FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decode[user.User](data)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	data, err := s.getOne(ctx, `SELECT data FROM users WHERE email = ?`, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return decode[user.User](data)
}

func (s *Store) SaveUser(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, email, data) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email, data = excluded.data
	`), u.ID, strings.ToLower(u.Email), string(data))
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *Store) selectStories(ctx context.Context, query string, args ...any) ([]story.Story, error) {
	var rows []string
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	out := make([]story.Story, 0, len(rows))
	for _, data := range rows {
		st, err := decode[story.Story](data)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, nil
}

func (s *Store) ListStories(ctx context.Context, userID string) ([]story.Story, error) {
	return s.selectStories(ctx, `SELECT data FROM stories WHERE user_id = ? ORDER BY seq, id`, userID)
}

func (s *Store) AllStories(ctx context.Context) ([]story.Story, error) {
	return s.selectStories(ctx, `SELECT data FROM stories ORDER BY seq, id`)
}

func (s *Store) GetStory(ctx context.Context, id string) (*story.Story, error) {
	data, err := s.getOne(ctx, `SELECT data FROM stories WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return decode[story.Story](data)
}

// SaveStory keeps the original insertion position when replacing.
func (s *Store) SaveStory(ctx context.Context, st *story.Story) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode story: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO stories (id, user_id, seq, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET user_id = excluded.user_id, data = excluded.data
	`), st.ID, st.UserID, time.Now().UnixNano(), string(data))
	if err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

func (s *Store) DeleteStory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM stories WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess store.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO sessions (token, user_id, expires_at, data) VALUES (?, ?, ?, ?)
	`), sess.Token, sess.UserID, sess.ExpiresAt.UnixNano(), string(data))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*store.Session, error) {
	data, err := s.getOne(ctx, `SELECT data FROM sessions WHERE token = ?`, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decode[store.Session](data)
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE token = ?`), token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) PurgeSessions(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE expires_at <= ?`), before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged sessions: %w", err)
	}
	return int(n), nil
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM sessions WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return int(n), nil
}
