package messages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *store.Account) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	if err := st.Init(ctx); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	author, err := st.CreateAccount(ctx, "testuser1", "password")
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return New(st, st), author
}

func TestCreate(t *testing.T) {
	svc, author := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		msg     store.Message
		wantErr error
	}{
		{name: "valid", msg: store.Message{PostedBy: author.ID, Text: "hello", TimePostedEpoch: 1669947792}},
		{name: "max length", msg: store.Message{PostedBy: author.ID, Text: strings.Repeat("a", 255)}},
		{name: "max length multibyte", msg: store.Message{PostedBy: author.ID, Text: strings.Repeat("é", 255)}},
		{name: "empty text", msg: store.Message{PostedBy: author.ID, Text: ""}, wantErr: ErrInvalidMessage},
		{name: "too long", msg: store.Message{PostedBy: author.ID, Text: strings.Repeat("a", 256)}, wantErr: ErrInvalidMessage},
		{name: "unknown author", msg: store.Message{PostedBy: author.ID + 1, Text: "hello"}, wantErr: ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			created, err := svc.Create(ctx, &msg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created.ID == 0 {
				t.Errorf("expected assigned id")
			}
			if created.Text != tt.msg.Text || created.PostedBy != tt.msg.PostedBy || created.TimePostedEpoch != tt.msg.TimePostedEpoch {
				t.Errorf("unexpected message: %+v", created)
			}
		})
	}
}

func TestGetAndList(t *testing.T) {
	svc, author := newTestService(t)
	ctx := context.Background()

	msgs, err := svc.List(ctx)
	if err != nil || len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d, %v", len(msgs), err)
	}

	created, err := svc.Create(ctx, &store.Message{PostedBy: author.ID, Text: "hello"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *got != *created {
		t.Errorf("expected %+v, got %+v", created, got)
	}

	if _, err := svc.Get(ctx, created.ID+1); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}

	msgs, err = svc.List(ctx)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d, %v", len(msgs), err)
	}

	mine, err := svc.ListByAccount(ctx, author.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected 1 message for author, got %d, %v", len(mine), err)
	}
	theirs, err := svc.ListByAccount(ctx, author.ID+1)
	if err != nil || len(theirs) != 0 {
		t.Fatalf("expected 0 messages for other account, got %d, %v", len(theirs), err)
	}
}

func TestDelete(t *testing.T) {
	svc, author := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &store.Message{PostedBy: author.ID, Text: "bye"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rows, err := svc.Delete(ctx, created.ID)
	if err != nil || rows != 1 {
		t.Fatalf("expected 1, got %d, %v", rows, err)
	}

	rows, err = svc.Delete(ctx, created.ID)
	if !errors.Is(err, ErrMessageNotFound) || rows != 0 {
		t.Fatalf("expected 0 and ErrMessageNotFound, got %d, %v", rows, err)
	}
}

func TestUpdateText(t *testing.T) {
	svc, author := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &store.Message{PostedBy: author.ID, Text: "before", TimePostedEpoch: 1669947792})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rows, err := svc.UpdateText(ctx, created.ID, "after")
	if err != nil || rows != 1 {
		t.Fatalf("expected 1, got %d, %v", rows, err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := *created
	want.Text = "after"
	if *got != want {
		t.Errorf("expected %+v, got %+v", want, *got)
	}

	rows, err = svc.UpdateText(ctx, created.ID, strings.Repeat("x", 256))
	if !errors.Is(err, ErrInvalidMessage) || rows != 0 {
		t.Fatalf("expected 0 and ErrInvalidMessage, got %d, %v", rows, err)
	}
	rows, err = svc.UpdateText(ctx, created.ID, "")
	if !errors.Is(err, ErrInvalidMessage) || rows != 0 {
		t.Fatalf("expected 0 and ErrInvalidMessage, got %d, %v", rows, err)
	}
	rows, err = svc.UpdateText(ctx, created.ID+1, "after")
	if !errors.Is(err, ErrMessageNotFound) || rows != 0 {
		t.Fatalf("expected 0 and ErrMessageNotFound, got %d, %v", rows, err)
	}

	got, err = svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Text != "after" {
		t.Errorf("rejected updates must not change the message, got %q", got.Text)
	}
}
