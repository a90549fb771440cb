package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/config"
	"github.com/joss/debate/internal/logging"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/render"
	"github.com/joss/debate/internal/session"
	"github.com/joss/debate/internal/store"
)

// app holds the collaborators shared by every command.
type app struct {
	env      *config.DebateEnv
	local    store.Local
	client   *api.Client
	sessions *session.Provider
	notices  *notify.Center
	render   *render.Renderer
	out      *render.Writer
	log      *logging.Logger
}

func newApp(env *config.DebateEnv) (*app, error) {
	paths := config.GetPaths()
	if env.SessionStore != store.BackendMemory {
		if err := config.EnsureDir(paths.Data); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	local, err := store.Open(env.SessionStore, paths.Data)
	if err != nil {
		return nil, err
	}

	log := logging.New("cli")
	route := api.VoteRouteDefault
	if env.VoteRoute == "voting" {
		route = api.VoteRouteLegacy
	}

	client := api.New(env.APIURL,
		api.WithHTTPClient(&http.Client{Timeout: env.HTTPTimeout}),
		api.WithVoteRoute(route),
		api.WithUserAgent("debate-cli/"+version),
	)

	a := &app{
		env:      env,
		local:    local,
		client:   client,
		sessions: session.NewProvider(client, local),
		render:   render.New(pretty),
		out:      render.Stdout(),
		log:      log,
	}
	a.notices = notify.NewCenter(notify.OnPost(a.printNotice))
	return a, nil
}

// printNotice writes a notification to stderr as it is posted.
func (a *app) printNotice(n notify.Notification) {
	render.Stderr().Notice(string(n.Level), n.Message)
}

// Close releases the local store.
func (a *app) Close() {
	if err := a.local.Close(); err != nil {
		a.log.Warn("store_close_failed", nil, err)
	}
}

// token returns the bearer credential of the signed-in user.
func (a *app) token(ctx context.Context) (string, error) {
	return a.sessions.Token(ctx)
}

// reportedSince reports whether an error notification was already shown
// for the current command.
func (a *app) reportedSince(t time.Time) bool {
	for _, n := range a.notices.Recent(1) {
		if n.Level == notify.LevelError && !n.Timestamp.Before(t) {
			return true
		}
	}
	return false
}
