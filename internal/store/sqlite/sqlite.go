package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	message_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	posted_by         INTEGER NOT NULL,
	message_text      TEXT NOT NULL,
	time_posted_epoch INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (posted_by) REFERENCES accounts(account_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_posted_by ON messages(posted_by);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteStore)(nil)

// New opens (or creates) the SQLite database at dbPath.
// Use ":memory:" for a private in-memory database.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Init creates the schema if it does not exist.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== AccountStore implementation ====

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, username, password string) (*store.Account, error) {
	query := `
		INSERT INTO accounts (username, password)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, password)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Account{ID: id, Username: username, Password: password}, nil
}

// GetAccountByUsername retrieves an account by username.
func (s *SQLiteStore) GetAccountByUsername(ctx context.Context, username string) (*store.Account, error) {
	query := `
		SELECT account_id, username, password
		FROM accounts
		WHERE username = ?
	`
	return scanAccount(s.db.QueryRowContext(ctx, query, username))
}

// GetAccountByCredentials retrieves the account with exactly this username and password.
func (s *SQLiteStore) GetAccountByCredentials(ctx context.Context, username, password string) (*store.Account, error) {
	query := `
		SELECT account_id, username, password
		FROM accounts
		WHERE username = ? AND password = ?
	`
	return scanAccount(s.db.QueryRowContext(ctx, query, username, password))
}

// AccountExists reports whether an account with id exists.
func (s *SQLiteStore) AccountExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return exists, nil
}

// ==== MessageStore implementation ====

// CreateMessage inserts msg and sets its ID.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (posted_by, message_text, time_posted_epoch)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.PostedBy, msg.Text, msg.TimePostedEpoch)
	if err != nil {
		return fmt.Errorf("insert message: %w", classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM messages
		WHERE message_id = ?
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(&msg.ID, &msg.PostedBy, &msg.Text, &msg.TimePostedEpoch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return &msg, nil
}

// ListMessages returns every message.
func (s *SQLiteStore) ListMessages(ctx context.Context) ([]*store.Message, error) {
	query := `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM messages
		ORDER BY message_id
	`
	return s.queryMessages(ctx, query)
}

// ListMessagesByAccount returns the messages posted by accountID.
func (s *SQLiteStore) ListMessagesByAccount(ctx context.Context, accountID int64) ([]*store.Message, error) {
	query := `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM messages
		WHERE posted_by = ?
		ORDER BY message_id
	`
	return s.queryMessages(ctx, query, accountID)
}

// UpdateMessageText replaces the text of a message.
func (s *SQLiteStore) UpdateMessageText(ctx context.Context, id int64, text string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET message_text = ? WHERE message_id = ?`, text, id)
	if err != nil {
		return 0, fmt.Errorf("update message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

// DeleteMessage removes a message.
func (s *SQLiteStore) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE message_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.PostedBy, &msg.Text, &msg.TimePostedEpoch); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

func scanAccount(row *sql.Row) (*store.Account, error) {
	var account store.Account
	if err := row.Scan(&account.ID, &account.Username, &account.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	return &account, nil
}

// classify maps constraint violations onto store sentinels.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case sqlite3.ErrConstraintForeignKey:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	default:
		return err
	}
}
