package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidReference is returned when a write violates a foreign key.
	ErrInvalidReference = errors.New("invalid reference")
)

// Account represents a registered user.
type Account struct {
	ID       int64
	Username string
	Password string
}

// Message represents a text post attributed to an account.
type Message struct {
	ID              int64
	PostedBy        int64
	Text            string
	TimePostedEpoch int64
}

// AccountStore handles account persistence.
type AccountStore interface {
	// CreateAccount inserts a new account and returns it with its assigned ID.
	CreateAccount(ctx context.Context, username, password string) (*Account, error)

	// GetAccountByUsername retrieves an account by username.
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)

	// GetAccountByCredentials retrieves the account matching both username and password.
	GetAccountByCredentials(ctx context.Context, username, password string) (*Account, error)

	// AccountExists reports whether an account with the given ID exists.
	AccountExists(ctx context.Context, id int64) (bool, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage inserts msg and sets its ID.
	CreateMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// ListMessages returns every message ordered by ID.
	ListMessages(ctx context.Context) ([]*Message, error)

	// ListMessagesByAccount returns the messages posted by accountID ordered by ID.
	ListMessagesByAccount(ctx context.Context, accountID int64) ([]*Message, error)

	// UpdateMessageText replaces the text of a message and returns the number of rows changed.
	UpdateMessageText(ctx context.Context, id int64, text string) (int64, error)

	// DeleteMessage removes a message and returns the number of rows removed.
	DeleteMessage(ctx context.Context, id int64) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	AccountStore
	MessageStore

	// Init creates the tables the store needs if they do not exist yet.
	Init(ctx context.Context) error

	// Close closes the underlying database connection.
	Close() error
}
