package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	transporthttp "github.com/jackmilless/jackmilless-pep-spring-project/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		log.Printf("api_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "http://localhost:8080", "API base URL")
	user := flag.String("user", fmt.Sprintf("smoke-%d", time.Now().UnixNano()), "username to register")
	password := flag.String("password", "password", "password to register with")
	text := flag.String("text", "hello from smoke test", "message text to post")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := &client{base: *base, http: http.DefaultClient}

	creds := transporthttp.AccountRequest{Username: *user, Password: *password}
	var account transporthttp.AccountResponse
	if err := c.call(ctx, http.MethodPost, "/register", creds, http.StatusOK, &account); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Printf("Registered: id=%d username=%s\n", account.AccountID, account.Username)

	if err := c.call(ctx, http.MethodPost, "/register", creds, http.StatusConflict, nil); err != nil {
		return fmt.Errorf("duplicate register: %w", err)
	}
	if err := c.call(ctx, http.MethodPost, "/login", creds, http.StatusOK, &account); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	var msg transporthttp.MessageResponse
	post := transporthttp.MessageRequest{PostedBy: account.AccountID, MessageText: *text, TimePostedEpoch: time.Now().Unix()}
	if err := c.call(ctx, http.MethodPost, "/messages", post, http.StatusOK, &msg); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	fmt.Printf("Posted: id=%d text=%q\n", msg.MessageID, msg.MessageText)

	msgPath := "/messages/" + strconv.FormatInt(msg.MessageID, 10)
	var rows int
	if err := c.call(ctx, http.MethodPatch, msgPath, transporthttp.UpdateMessageRequest{MessageText: *text + " (edited)"}, http.StatusOK, &rows); err != nil {
		return fmt.Errorf("update message: %w", err)
	}

	var mine []transporthttp.MessageResponse
	if err := c.call(ctx, http.MethodGet, "/accounts/"+strconv.FormatInt(account.AccountID, 10)+"/messages", nil, http.StatusOK, &mine); err != nil {
		return fmt.Errorf("list account messages: %w", err)
	}
	fmt.Printf("Account messages: %d\n", len(mine))

	if err := c.call(ctx, http.MethodDelete, msgPath, nil, http.StatusOK, &rows); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if rows != 1 {
		return fmt.Errorf("delete message: expected 1, got %d", rows)
	}
	fmt.Println("Deleted message")
	return nil
}

type client struct {
	base string
	http *http.Client
}

// call sends body as JSON and decodes a non-empty response into out.
func (c *client) call(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
