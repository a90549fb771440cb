package api

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/debate/internal/apitest"
	"github.com/joss/debate/internal/domain"
)

func seeded(t *testing.T) (*apitest.Server, *Client) {
	t.Helper()
	srv := apitest.New(t)
	votes := 4
	srv.AddDebate(domain.Debate{
		ID:        "d1",
		Title:     "Remote work",
		Category:  "Work",
		Tags:      []string{"jobs"},
		EndsAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy: domain.UserRef{ID: "u9", Username: "grace"},
		Votes:     &votes,
	})
	srv.AddArgument(domain.Argument{ID: "a1", DebateID: "d1", Side: domain.SideSupport, Content: "Focus", VotedUsers: []string{}})
	return srv, New(srv.APIURL())
}

func TestListAndGetDebate(t *testing.T) {
	srv, c := seeded(t)
	ctx := context.Background()

	debates, err := c.ListDebates(ctx)
	require.NoError(t, err)
	require.Len(t, debates, 1)
	assert.Equal(t, "Remote work", debates[0].Title)
	assert.Equal(t, 4, debates[0].VoteTotal())
	assert.Equal(t, "grace", debates[0].CreatedBy.DisplayName())

	d, err := c.GetDebate(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, d.EndsAt.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	for _, r := range srv.Requests() {
		assert.Empty(t, r.Authorization, "%s %s must not send a token", r.Method, r.Path)
		assert.NotEmpty(t, r.Path)
	}
}

func TestGetDebateNotFound(t *testing.T) {
	_, c := seeded(t)

	_, err := c.GetDebate(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Debate not found", ServerMessage(err))
}

func TestProtectedCallsSendBearer(t *testing.T) {
	srv, c := seeded(t)
	ctx := context.Background()

	args, err := c.ListArguments(ctx, apitest.Token, "d1")
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.True(t, args[0].TracksVoters())

	_, err = c.CreateArgument(ctx, apitest.Token, domain.NewArgument{DebateID: "d1", Content: "More sleep", Side: domain.SideOppose})
	require.NoError(t, err)

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, apitest.Token, r.Bearer())
	}

	var body map[string]string
	require.NoError(t, json.Unmarshal(reqs[1].Body, &body))
	assert.Equal(t, map[string]string{"debateId": "d1", "content": "More sleep", "side": "oppose"}, body)
}

func TestUnauthorizedSurfacesServerMessage(t *testing.T) {
	_, c := seeded(t)

	_, err := c.ListArguments(context.Background(), "", "d1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Not authorized, no token", apiErr.Message)
}

func TestStatusTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream down</html>"))
	}))
	defer server.Close()

	_, err := New(server.URL).ListDebates(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Bad Gateway", ServerMessage(err))
}

func TestTransportErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).ListDebates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list debates")

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestRequestIDHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	_, err := New(server.URL).ListDebates(context.Background())
	require.NoError(t, err)
	_, err = ulid.ParseStrict(got)
	assert.NoError(t, err)
}

func TestBodylessSuccess(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		call   func(*Client) error
	}{
		{"vote no content", http.StatusNoContent, "", func(c *Client) error {
			return c.Vote(context.Background(), apitest.Token, "a1")
		}},
		{"join plain text", http.StatusOK, "OK", func(c *Client) error {
			return c.JoinDebate(context.Background(), apitest.Token, "d1", domain.SideOppose)
		}},
		{"delete empty", http.StatusOK, "  \n", func(c *Client) error {
			return c.DeleteArgument(context.Background(), apitest.Token, "a1")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			assert.NoError(t, tt.call(New(server.URL)))
		})
	}
}

func TestUndecodableSuccessNeedingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	_, err := New(server.URL).ListDebates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list debates: decode response")
}

func TestEmptySuccessListsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	debates, err := New(server.URL).ListDebates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, debates)
}

func TestJoinDebate(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"with session", apitest.Token},
		{"anonymous", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := seeded(t)
			require.NoError(t, c.JoinDebate(context.Background(), tt.token, "d1", domain.SideSupport))

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, "/api/debates/join/d1", reqs[0].Path)
			assert.Equal(t, tt.token, reqs[0].Bearer())
			assert.JSONEq(t, `{"side":"support"}`, string(reqs[0].Body))
		})
	}
}

func TestVoteRoutes(t *testing.T) {
	tests := []struct {
		name  string
		route VoteRoute
		path  string
	}{
		{"default", VoteRouteDefault, "/api/vote/a1"},
		{"deprecated", VoteRouteLegacy, "/api/voting/a1/vote"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.New(t)
			srv.AddArgument(domain.Argument{ID: "a1", DebateID: "d1", VotedUsers: []string{}})
			c := New(srv.APIURL(), WithVoteRoute(tt.route))

			require.NoError(t, c.Vote(context.Background(), apitest.Token, "a1"))

			reqs := srv.Requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, http.MethodPost, reqs[0].Method)
			assert.Equal(t, tt.path, reqs[0].Path)
			assert.JSONEq(t, `{}`, string(reqs[0].Body))

			a, ok := srv.Argument("a1")
			require.True(t, ok)
			assert.Equal(t, 1, a.Votes)
		})
	}
}

func TestUpdateAndDeleteArgument(t *testing.T) {
	srv, c := seeded(t)
	ctx := context.Background()

	require.NoError(t, c.UpdateArgument(ctx, apitest.Token, "a1", "Deep focus"))
	a, ok := srv.Argument("a1")
	require.True(t, ok)
	assert.Equal(t, "Deep focus", a.Content)

	require.NoError(t, c.DeleteArgument(ctx, apitest.Token, "a1"))
	_, ok = srv.Argument("a1")
	assert.False(t, ok)

	err := c.DeleteArgument(ctx, apitest.Token, "a1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateDebateMultipart(t *testing.T) {
	srv, c := seeded(t)

	img := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(img, []byte("png-bytes"), 0o644))

	d, err := c.CreateDebate(context.Background(), apitest.Token, domain.NewDebate{
		Title:       "Four-day week",
		Description: "Should we?",
		Category:    "Work",
		Duration:    1.5,
		Tags:        []string{"jobs", "life"},
		ImagePath:   img,
	})
	require.NoError(t, err)
	assert.Equal(t, "Four-day week", d.Title)
	assert.Equal(t, []string{"jobs", "life"}, d.Tags)
	assert.Equal(t, "/uploads/cover.png", d.Image)

	reqs := srv.Requests()
	last := reqs[len(reqs)-1]
	mediaType, params, err := mime.ParseMediaType(last.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	form, err := multipart.NewReader(strings.NewReader(string(last.Body)), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5"}, form.Value["duration"])
	assert.Equal(t, []string{"jobs,life"}, form.Value["tags"])
	require.Len(t, form.File["image"], 1)
	assert.Equal(t, "cover.png", form.File["image"][0].Filename)
}

func TestCreateDebateValidatesFirst(t *testing.T) {
	srv, c := seeded(t)

	_, err := c.CreateDebate(context.Background(), apitest.Token, domain.NewDebate{
		Title: "x", Description: "y", Category: "z", Duration: 0,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, srv.Requests())
}

func TestCreateDebateUnsuccessfulEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Image too large"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).CreateDebate(context.Background(), "tok", domain.NewDebate{
		Title: "x", Description: "y", Category: "z", Duration: 1,
	})
	require.Error(t, err)
	assert.Equal(t, "Image too large", ServerMessage(err))
}

func TestLogin(t *testing.T) {
	_, c := seeded(t)
	ctx := context.Background()

	res, err := c.Login(ctx, Credentials{Email: apitest.Email, Password: apitest.Password})
	require.NoError(t, err)
	assert.Equal(t, apitest.Token, res.Token)
	assert.Equal(t, apitest.UserID, res.User.ID)
	assert.Equal(t, apitest.Username, res.User.Username)

	_, err = c.Login(ctx, Credentials{Email: apitest.Email, Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Invalid credentials", ServerMessage(err))
}

func TestLoginMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1"}}}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Login(context.Background(), Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestScoreboard(t *testing.T) {
	srv, c := seeded(t)
	srv.SetScores(domain.ScoreMonthly, []domain.ScoreEntry{{UserID: "u1", Username: "ada", TotalVotes: 7, TotalDebates: 2}})

	entries, err := c.Scoreboard(context.Background(), apitest.Token, domain.ScoreMonthly)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].TotalVotes)

	reqs := srv.Requests()
	assert.Equal(t, "filter=monthly", reqs[len(reqs)-1].Query)
}
