// Package detail drives the fetch, derive and mutate cycle of one debate.
//
// State only changes on a successful Load. Mutations never touch local state
// directly: after the server accepts one, the debate and its arguments are
// fetched again and the response body of the mutation is ignored. Every
// failure produces exactly one notification and leaves the last good state
// in place.
package detail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/logging"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/session"
)

var (
	// ErrSignInRequired means the view needs a session; redirect to sign-in.
	ErrSignInRequired = errors.New("sign in required")
	// ErrDebateClosed rejects mutations after the end instant.
	ErrDebateClosed = errors.New("debate is closed")
	// ErrAlreadyVoted rejects a second vote on a tracked argument.
	ErrAlreadyVoted = errors.New("you have already voted on this argument")
	// ErrUnknownArgument rejects a vote for an argument not in the state.
	ErrUnknownArgument = errors.New("argument not found in this debate")
	// ErrNotLoaded rejects mutations before the first successful Load.
	ErrNotLoaded = errors.New("debate not loaded")
)

// ValidationError is returned for invalid input caught before any request.
type ValidationError = domain.ValidationError

// "See more" paging of the argument columns.
const (
	InitialVisible = 7
	VisibleStep    = 5
)

// API is the subset of the REST client the controller needs.
type API interface {
	GetDebate(ctx context.Context, id string) (*domain.Debate, error)
	ListArguments(ctx context.Context, token, debateID string) ([]domain.Argument, error)
	JoinDebate(ctx context.Context, token, id string, side domain.Side) error
	Vote(ctx context.Context, token, argumentID string) error
	CreateArgument(ctx context.Context, token string, a domain.NewArgument) (*domain.Argument, error)
}

var _ API = (*api.Client)(nil)

// Controller owns the state of one debate.
type Controller struct {
	id       string
	api      API
	sessions session.Source
	notifier notify.Notifier
	now      func() time.Time
	log      *logging.Logger

	mu      sync.Mutex
	debate  *domain.Debate
	args    []domain.Argument
	userID  string
	drafts  map[domain.Side]string
	showing int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a controller for debate id.
func New(id string, a API, sessions session.Source, n notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		id:       id,
		api:      a,
		sessions: sessions,
		notifier: n,
		now:      time.Now,
		log:      logging.New("detail"),
		drafts:   make(map[domain.Side]string),
		showing:  InitialVisible,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the debate id.
func (c *Controller) ID() string {
	return c.id
}

// fail logs err, posts exactly one notification and returns err.
func (c *Controller) fail(op string, err error) error {
	c.log.Warn(op+"_failed", map[string]interface{}{"debate_id": c.id}, err)
	c.notifier.Notify(notify.LevelError, failureMessage(err))
	return err
}

func failureMessage(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ErrDebateClosed), errors.Is(err, ErrAlreadyVoted),
		errors.Is(err, ErrUnknownArgument), errors.Is(err, ErrNotLoaded):
		return err.Error()
	}
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return "Something went wrong"
}

// credential returns the current session, mapping absence to
// ErrSignInRequired.
func (c *Controller) credential(ctx context.Context) (*domain.Session, error) {
	sess, err := c.sessions.Current(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, ErrSignInRequired
	}
	return sess, err
}

// Load fetches the debate and then its arguments. Without a session it
// returns ErrSignInRequired and sends nothing.
func (c *Controller) Load(ctx context.Context) error {
	sess, err := c.credential(ctx)
	if errors.Is(err, ErrSignInRequired) {
		return err
	}
	if err != nil {
		return c.fail("load", err)
	}

	d, err := c.api.GetDebate(ctx, c.id)
	if err != nil {
		return c.fail("load", err)
	}
	args, err := c.api.ListArguments(ctx, sess.Token, c.id)
	if err != nil {
		return c.fail("load", err)
	}

	c.mu.Lock()
	c.debate = d
	c.args = args
	c.userID = sess.UserID
	c.mu.Unlock()
	return nil
}

// snapshot returns the loaded debate and arguments, or ErrNotLoaded.
func (c *Controller) snapshot() (domain.Debate, []domain.Argument, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.debate == nil {
		return domain.Debate{}, nil, "", ErrNotLoaded
	}
	return *c.debate, c.args, c.userID, nil
}

// Join joins side, then reloads.
func (c *Controller) Join(ctx context.Context, side domain.Side) error {
	if !side.Valid() {
		return c.fail("join", domain.Invalid("side", fmt.Sprintf("%q is not support or oppose", side)))
	}
	d, _, _, err := c.snapshot()
	if err != nil {
		return c.fail("join", err)
	}
	if d.ClosedAt(c.now()) {
		return c.fail("join", ErrDebateClosed)
	}

	var token string
	if sess, err := c.sessions.Current(ctx); err == nil {
		token = sess.Token
	}
	if err := c.api.JoinDebate(ctx, token, c.id, side); err != nil {
		return c.fail("join", err)
	}
	c.notifier.Notify(notify.LevelSuccess, "Joined the "+strings.ToLower(side.Label())+" side")
	return c.Load(ctx)
}

// Vote votes for argumentID, then reloads.
func (c *Controller) Vote(ctx context.Context, argumentID string) error {
	d, args, userID, err := c.snapshot()
	if err != nil {
		return c.fail("vote", err)
	}
	if d.ClosedAt(c.now()) {
		return c.fail("vote", ErrDebateClosed)
	}

	var target *domain.Argument
	for i := range args {
		if args[i].ID == argumentID {
			target = &args[i]
			break
		}
	}
	if target == nil {
		return c.fail("vote", ErrUnknownArgument)
	}
	if target.TracksVoters() && target.HasVoted(userID) {
		return c.fail("vote", ErrAlreadyVoted)
	}

	sess, err := c.credential(ctx)
	if err != nil {
		return err
	}
	if err := c.api.Vote(ctx, sess.Token, argumentID); err != nil {
		return c.fail("vote", err)
	}
	return c.Load(ctx)
}

// PostArgument posts content to side, then clears that side's draft and
// reloads. Whitespace-only content is ignored.
func (c *Controller) PostArgument(ctx context.Context, side domain.Side, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	if !side.Valid() {
		return c.fail("post_argument", domain.Invalid("side", fmt.Sprintf("%q is not support or oppose", side)))
	}
	d, _, _, err := c.snapshot()
	if err != nil {
		return c.fail("post_argument", err)
	}
	if d.ClosedAt(c.now()) {
		return c.fail("post_argument", ErrDebateClosed)
	}

	sess, err := c.credential(ctx)
	if err != nil {
		return err
	}
	_, err = c.api.CreateArgument(ctx, sess.Token, domain.NewArgument{
		DebateID: c.id,
		Content:  content,
		Side:     side,
	})
	if err != nil {
		return c.fail("post_argument", err)
	}

	c.mu.Lock()
	delete(c.drafts, side)
	c.mu.Unlock()
	c.notifier.Notify(notify.LevelSuccess, "Argument posted")
	return c.Load(ctx)
}

// Draft returns the unsent argument text for side.
func (c *Controller) Draft(side domain.Side) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[side]
}

// SetDraft stores unsent argument text for side.
func (c *Controller) SetDraft(side domain.Side, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[side] = text
}

// ShowMore grows the number of arguments shown per column.
func (c *Controller) ShowMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showing += VisibleStep
}

// Showing returns how many arguments are shown per column.
func (c *Controller) Showing() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showing
}
