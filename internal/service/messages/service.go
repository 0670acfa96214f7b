package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
)

// Common errors for message operations.
var (
	ErrInvalidMessage  = errors.New("message text must be 1-255 characters")
	ErrAccountNotFound = errors.New("posting account not found")
	ErrMessageNotFound = errors.New("message not found")
)

// textRule bounds message text length in code points.
const textRule = "min=1,max=255"

// Service provides message management business logic.
type Service struct {
	messages store.MessageStore
	accounts store.AccountStore
	validate *validator.Validate
}

// New creates a new message Service.
func New(messages store.MessageStore, accounts store.AccountStore) *Service {
	return &Service{
		messages: messages,
		accounts: accounts,
		validate: validator.New(),
	}
}

// Create stores msg after checking its text and author.
func (s *Service) Create(ctx context.Context, msg *store.Message) (*store.Message, error) {
	if err := s.validateText(msg.Text); err != nil {
		return nil, err
	}

	exists, err := s.accounts.AccountExists(ctx, msg.PostedBy)
	if err != nil {
		return nil, fmt.Errorf("check author: %w", err)
	}
	if !exists {
		return nil, ErrAccountNotFound
	}

	created := *msg
	if err := s.messages.CreateMessage(ctx, &created); err != nil {
		// The author disappeared between the check and the insert.
		if errors.Is(err, store.ErrInvalidReference) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("create message: %w", err)
	}

	return &created, nil
}

// List returns every message.
func (s *Service) List(ctx context.Context) ([]*store.Message, error) {
	msgs, err := s.messages.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Get returns a single message.
func (s *Service) Get(ctx context.Context, id int64) (*store.Message, error) {
	msg, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// Delete removes a message and returns the number of messages removed.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	rows, err := s.messages.DeleteMessage(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete message: %w", err)
	}
	if rows == 0 {
		return 0, ErrMessageNotFound
	}
	return rows, nil
}

// UpdateText replaces the text of an existing message and returns the number
// of messages changed. The author and ID are never touched.
func (s *Service) UpdateText(ctx context.Context, id int64, text string) (int64, error) {
	if err := s.validateText(text); err != nil {
		return 0, err
	}

	rows, err := s.messages.UpdateMessageText(ctx, id, text)
	if err != nil {
		return 0, fmt.Errorf("update message: %w", err)
	}
	if rows == 0 {
		return 0, ErrMessageNotFound
	}
	return rows, nil
}

// ListByAccount returns the messages posted by accountID.
func (s *Service) ListByAccount(ctx context.Context, accountID int64) ([]*store.Message, error) {
	msgs, err := s.messages.ListMessagesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account messages: %w", err)
	}
	return msgs, nil
}

func (s *Service) validateText(text string) error {
	if err := s.validate.Var(text, textRule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}
