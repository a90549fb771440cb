package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/joss/debate/internal/domain"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var res LoginResult
	if err := decodeData("login", env, &res); err != nil {
		return nil, err
	}
	if !env.Success || res.Token == "" {
		msg := env.Message
		if msg == "" {
			msg = "Invalid credentials"
		}
		return nil, &Error{Op: "login", Status: http.StatusUnauthorized, Message: msg}
	}
	return &res, nil
}

// Scoreboard fetches the per-user totals for a window.
func (c *Client) Scoreboard(ctx context.Context, token string, window domain.ScoreWindow) ([]domain.ScoreEntry, error) {
	env, err := c.do(ctx, request{
		op:     "scoreboard",
		method: http.MethodGet,
		path:   "/score",
		query:  url.Values{"filter": {string(window)}},
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	var entries []domain.ScoreEntry
	if err := decodeData("scoreboard", env, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
