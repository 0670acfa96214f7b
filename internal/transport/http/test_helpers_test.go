package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jackmilless/jackmilless-pep-spring-project/internal/auth"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/service/messages"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store"
	"github.com/jackmilless/jackmilless-pep-spring-project/internal/store/sqlite"
)

// testEnv bundles a router backed by an in-memory store.
type testEnv struct {
	router *gin.Engine
	store  store.Store
}

// newTestEnv creates an in-memory SQLite store with schema applied and a router on top.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}

	disabledLogger := zerolog.New(nil)
	router := NewRouter(auth.NewService(st), messages.New(st, st), &disabledLogger)

	return &testEnv{router: router, store: st}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

// seedAccount inserts an account directly through the store.
func (e *testEnv) seedAccount(t *testing.T, username, password string) *store.Account {
	t.Helper()

	account, err := e.store.CreateAccount(context.Background(), username, password)
	if err != nil {
		t.Fatalf("failed to seed account %s: %v", username, err)
	}
	return account
}

// seedMessage inserts a message directly through the store.
func (e *testEnv) seedMessage(t *testing.T, postedBy int64, text string, epoch int64) *store.Message {
	t.Helper()

	msg := &store.Message{PostedBy: postedBy, Text: text, TimePostedEpoch: epoch}
	if err := e.store.CreateMessage(context.Background(), msg); err != nil {
		t.Fatalf("failed to seed message: %v", err)
	}
	return msg
}

func expectEmptyBody(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()

	if resp.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", resp.Body.String())
	}
}
