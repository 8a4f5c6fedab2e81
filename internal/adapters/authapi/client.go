package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-adoption-admin/internal/session"
)

var (
	ErrNotConfigured   = errors.New("authapi client not configured")
	ErrRefreshRejected = errors.New("authapi refresh rejected")
	ErrUpstream        = errors.New("authapi upstream error")
)

const refreshPath = "/api/refresh-token"

type Config struct {
	BaseURL string

	// Timeout del http.Client interno.
	Timeout time.Duration
}

// Client implementa session.Refresher contra el endpoint de refresh del backend.
// Usa un http.Client plano a propósito: el wrapper con retry dispara el refresh
// en 401, así que el refresh mismo no puede pasar por el wrapper (loop).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != ""
}

// Refresh intercambia el refresh token por un par nuevo.
// 401/403 => ErrRefreshRejected (sesión muerta, el Manager limpia y notifica).
func (c *Client) Refresh(ctx context.Context, refreshToken string) (session.Tokens, error) {
	if !c.IsConfigured() {
		return session.Tokens{}, ErrNotConfigured
	}
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return session.Tokens{}, ErrRefreshRejected
	}

	reqBody := map[string]string{
		"refreshToken": refreshToken,
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(b))
	if err != nil {
		return session.Tokens{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Tokens{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// ok
	case http.StatusUnauthorized, http.StatusForbidden:
		return session.Tokens{}, ErrRefreshRejected
	default:
		return session.Tokens{}, fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	var out session.Tokens
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return session.Tokens{}, fmt.Errorf("%w: invalid json: %v", ErrUpstream, err)
	}

	out.AccessToken = strings.TrimSpace(out.AccessToken)
	out.RefreshToken = strings.TrimSpace(out.RefreshToken)
	if out.AccessToken == "" {
		return session.Tokens{}, errors.New("authapi response missing accessToken")
	}
	// Algunos backends no rotan el refresh token; conservamos el actual.
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}

	return out, nil
}
