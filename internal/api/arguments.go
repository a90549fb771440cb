package api

import (
	"context"
	"net/http"

	"github.com/joss/debate/internal/domain"
)

// ListArguments fetches the arguments of a debate.
func (c *Client) ListArguments(ctx context.Context, token, debateID string) ([]domain.Argument, error) {
	env, err := c.do(ctx, request{
		op:     "list arguments",
		method: http.MethodGet,
		path:   "/arguments/" + escape(debateID),
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	var args []domain.Argument
	if err := decodeData("list arguments", env, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// CreateArgument posts a new argument. The response body is returned for
// callers that want it; the detail controller ignores it and re-fetches.
func (c *Client) CreateArgument(ctx context.Context, token string, a domain.NewArgument) (*domain.Argument, error) {
	body, err := jsonBody(a)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, request{
		op:          "create argument",
		method:      http.MethodPost,
		path:        "/arguments",
		token:       token,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	var created domain.Argument
	if err := decodeData("create argument", env, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateArgument replaces the content of an argument.
func (c *Client) UpdateArgument(ctx context.Context, token, id, content string) error {
	body, err := jsonBody(map[string]string{"content": content})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op:          "update argument",
		method:      http.MethodPut,
		path:        "/arguments/" + escape(id),
		token:       token,
		body:        body,
		contentType: "application/json",
	})
	return err
}

// DeleteArgument removes an argument.
func (c *Client) DeleteArgument(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, request{
		op:     "delete argument",
		method: http.MethodDelete,
		path:   "/arguments/" + escape(id),
		token:  token,
	})
	return err
}

// Vote casts a vote on an argument.
func (c *Client) Vote(ctx context.Context, token, argumentID string) error {
	path := "/vote/" + escape(argumentID)
	if c.voteRoute == VoteRouteLegacy {
		path = "/voting/" + escape(argumentID) + "/vote"
	}
	body, err := jsonBody(struct{}{})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op:          "vote",
		method:      http.MethodPost,
		path:        path,
		token:       token,
		body:        body,
		contentType: "application/json",
	})
	return err
}
