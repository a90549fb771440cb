package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joss/debate/internal/domain"
)

// ListDebates fetches every debate summary.
func (c *Client) ListDebates(ctx context.Context) ([]domain.Debate, error) {
	env, err := c.do(ctx, request{op: "list debates", method: http.MethodGet, path: "/debates"})
	if err != nil {
		return nil, err
	}
	var debates []domain.Debate
	if err := decodeData("list debates", env, &debates); err != nil {
		return nil, err
	}
	return debates, nil
}

// GetDebate fetches one debate.
func (c *Client) GetDebate(ctx context.Context, id string) (*domain.Debate, error) {
	env, err := c.do(ctx, request{op: "get debate", method: http.MethodGet, path: "/debates/" + escape(id)})
	if err != nil {
		return nil, err
	}
	var d domain.Debate
	if err := decodeData("get debate", env, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDebate submits the creation form as multipart, including the image
// file when one is set. The form is validated before anything is sent.
func (c *Client) CreateDebate(ctx context.Context, token string, n domain.NewDebate) (*domain.Debate, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	body, contentType, err := debateForm(n)
	if err != nil {
		return nil, fmt.Errorf("create debate: %w", err)
	}

	env, err := c.do(ctx, request{
		op:          "create debate",
		method:      http.MethodPost,
		path:        "/debates",
		token:       token,
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "failed to create debate"
		}
		return nil, &Error{Op: "create debate", Status: http.StatusOK, Message: msg}
	}

	var d domain.Debate
	if err := decodeData("create debate", env, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func debateForm(n domain.NewDebate) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", n.Title},
		{"description", n.Description},
		{"category", n.Category},
		{"duration", strconv.FormatFloat(n.Duration, 'f', -1, 64)},
		{"tags", strings.Join(n.Tags, ",")},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if n.ImagePath != "" {
		f, err := os.Open(n.ImagePath)
		if err != nil {
			return nil, "", fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		part, err := w.CreateFormFile("image", filepath.Base(n.ImagePath))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// JoinDebate joins side of a debate. The bearer token is attached when
// non-empty.
func (c *Client) JoinDebate(ctx context.Context, token, id string, side domain.Side) error {
	body, err := jsonBody(map[string]domain.Side{"side": side})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op:          "join debate",
		method:      http.MethodPost,
		path:        "/debates/join/" + escape(id),
		token:       token,
		body:        body,
		contentType: "application/json",
	})
	return err
}
