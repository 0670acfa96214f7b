package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
)

// SQLSTATE codes reported by PostgreSQL for constraint violations.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id BIGSERIAL PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	message_id        BIGSERIAL PRIMARY KEY,
	posted_by         BIGINT NOT NULL REFERENCES accounts(account_id),
	message_text      VARCHAR(255) NOT NULL,
	time_posted_epoch BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_posted_by ON messages(posted_by);
`

// PostgresStore implements store.Store for PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ store.Store = (*PostgresStore)(nil)

// New connects to PostgreSQL using dsn.
func New(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Init creates the schema if it does not exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateAccount(ctx context.Context, username, password string) (*store.Account, error) {
	account := store.Account{Username: username, Password: password}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO accounts (username, password) VALUES ($1, $2) RETURNING account_id`,
		username, password,
	).Scan(&account.ID)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", classify(err))
	}
	return &account, nil
}

func (s *PostgresStore) GetAccountByUsername(ctx context.Context, username string) (*store.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_id, username, password FROM accounts WHERE username = $1`,
		username,
	)
	return scanAccount(row)
}

func (s *PostgresStore) GetAccountByCredentials(ctx context.Context, username, password string) (*store.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT account_id, username, password FROM accounts WHERE username = $1 AND password = $2`,
		username, password,
	)
	return scanAccount(row)
}

func (s *PostgresStore) AccountExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (posted_by, message_text, time_posted_epoch)
		VALUES ($1, $2, $3)
		RETURNING message_id`,
		msg.PostedBy, msg.Text, msg.TimePostedEpoch,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", classify(err))
	}
	return nil
}

func (s *PostgresStore) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	var msg store.Message
	err := s.db.QueryRowContext(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM messages
		WHERE message_id = $1`,
		id,
	).Scan(&msg.ID, &msg.PostedBy, &msg.Text, &msg.TimePostedEpoch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return &msg, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context) ([]*store.Message, error) {
	return s.queryMessages(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM messages
		ORDER BY message_id`)
}

func (s *PostgresStore) ListMessagesByAccount(ctx context.Context, accountID int64) ([]*store.Message, error) {
	return s.queryMessages(ctx, `
		SELECT message_id, posted_by, message_text, time_posted_epoch
		FROM messages
		WHERE posted_by = $1
		ORDER BY message_id`,
		accountID,
	)
}

func (s *PostgresStore) UpdateMessageText(ctx context.Context, id int64, text string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET message_text = $1 WHERE message_id = $2`, text, id)
	if err != nil {
		return 0, fmt.Errorf("update message: %w", err)
	}
	return result.RowsAffected()
}

func (s *PostgresStore) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE message_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete message: %w", err)
	}
	return result.RowsAffected()
}

func (s *PostgresStore) queryMessages(ctx context.Context, query string, args ...any) ([]*store.Message, error) {
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

func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrInvalidReference, err)
	default:
		return err
	}
}
