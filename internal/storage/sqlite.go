package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AIDentistry/nicolette-chatbot/pkg/models"
)

// SQLiteStore persists chats in a local SQLite database. The message log is
// stored as a JSON document; chats are read and written whole, matching the
// commit protocol.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chats (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	path       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	messages   TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, created_at DESC);
`

// NewSQLiteStore opens (creating if needed) a chat store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open chat database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply chat schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, chat *models.Chat) error {
	if chat == nil || chat.ID == "" {
		return errors.New("chat with id is required")
	}
	payload, err := json.Marshal(chat.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	createdAt := chat.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chats (id, user_id, title, path, created_at, messages)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id  = excluded.user_id,
			title    = excluded.title,
			path     = excluded.path,
			messages = excluded.messages`,
		chat.ID, chat.UserID, chat.Title, chat.Path, createdAt, string(payload))
	if err != nil {
		return fmt.Errorf("save chat: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Chat, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, path, created_at, messages
		FROM chats WHERE id = ?`, id)
	return scanChat(row)
}

func (s *SQLiteStore) List(ctx context.Context, userID string) ([]*models.Chat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, path, created_at, messages
		FROM chats WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []*models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chat)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*models.Chat, error) {
	var chat models.Chat
	var payload string
	err := row.Scan(&chat.ID, &chat.UserID, &chat.Title, &chat.Path, &chat.CreatedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &chat.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return &chat, nil
}
