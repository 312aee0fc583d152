// Package api provides a client for the directory server's account
// endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/zarlcorp/zacct/internal/account"
)

// Config holds the server location and credentials.
type Config struct {
	BaseURL string // e.g. "https://directory.example.com/api"
	Token   string
}

// Client communicates with the directory server.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a directory API client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: http.DefaultClient,
	}
}

// dataEnvelope wraps every response payload.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

// List returns all accounts.
func (c *Client) List(ctx context.Context) ([]account.Account, error) {
	body, err := c.do(ctx, http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var env dataEnvelope[[]account.Account]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("list accounts: decode: %w", err)
	}

	return env.Data, nil
}

// Create sends a new account and returns the server's record, which
// carries the assigned id and any server-side normalization.
func (c *Client) Create(ctx context.Context, a account.Account) (account.Account, error) {
	body, err := c.do(ctx, http.MethodPost, "/accounts", a)
	if err != nil {
		return account.Account{}, fmt.Errorf("create account: %w", err)
	}

	var env dataEnvelope[account.Account]
	if err := json.Unmarshal(body, &env); err != nil {
		return account.Account{}, fmt.Errorf("create account: decode: %w", err)
	}

	return env.Data, nil
}

// Update replaces the account identified by a.ID and returns the
// server's record.
func (c *Client) Update(ctx context.Context, a account.Account) (account.Account, error) {
	if a.ID == "" {
		return account.Account{}, fmt.Errorf("update account: missing id")
	}

	body, err := c.do(ctx, http.MethodPut, "/accounts/"+a.ID, a)
	if err != nil {
		return account.Account{}, fmt.Errorf("update account %s: %w", a.ID, err)
	}

	var env dataEnvelope[account.Account]
	if err := json.Unmarshal(body, &env); err != nil {
		return account.Account{}, fmt.Errorf("update account %s: decode: %w", a.ID, err)
	}

	return env.Data, nil
}

// Delete removes an account by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete account: missing id")
	}

	if _, err := c.do(ctx, http.MethodDelete, "/accounts/"+id, nil); err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
