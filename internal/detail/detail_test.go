package detail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/apitest"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/session"
	"github.com/joss/debate/internal/store"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSessions struct {
	sess *domain.Session
}

func (f *fakeSessions) Current(ctx context.Context) (*domain.Session, error) {
	if f.sess == nil {
		return nil, session.ErrNoSession
	}
	cp := *f.sess
	return &cp, nil
}

type fakeAPI struct {
	mu     sync.Mutex
	debate domain.Debate
	args   []domain.Argument
	calls  []string
	tokens []string

	getErr, listErr, joinErr, voteErr, createErr error
}

func (f *fakeAPI) record(call, token string) {
	f.calls = append(f.calls, call)
	f.tokens = append(f.tokens, token)
}

func (f *fakeAPI) GetDebate(ctx context.Context, id string) (*domain.Debate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("get", "")
	if f.getErr != nil {
		return nil, f.getErr
	}
	d := f.debate
	return &d, nil
}

func (f *fakeAPI) ListArguments(ctx context.Context, token, debateID string) ([]domain.Argument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list", token)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Argument, len(f.args))
	copy(out, f.args)
	return out, nil
}

func (f *fakeAPI) JoinDebate(ctx context.Context, token, id string, side domain.Side) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("join:"+string(side), token)
	return f.joinErr
}

func (f *fakeAPI) Vote(ctx context.Context, token, argumentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("vote:"+argumentID, token)
	if f.voteErr != nil {
		return f.voteErr
	}
	for i := range f.args {
		if f.args[i].ID == argumentID {
			f.args[i].Votes++
		}
	}
	return nil
}

func (f *fakeAPI) CreateArgument(ctx context.Context, token string, a domain.NewArgument) (*domain.Argument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create:"+string(a.Side), token)
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := domain.Argument{ID: "new", DebateID: a.DebateID, Side: a.Side, Content: a.Content}
	f.args = append(f.args, created)
	return &created, nil
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recorder struct {
	items []notify.Notification
}

func (r *recorder) Notify(level notify.Level, message string) {
	r.items = append(r.items, notify.Notification{Level: level, Message: message})
}

func (r *recorder) errors() []string {
	var out []string
	for _, n := range r.items {
		if n.Level == notify.LevelError {
			out = append(out, n.Message)
		}
	}
	return out
}

func arg(id string, side domain.Side, votes int, voters ...string) domain.Argument {
	a := domain.Argument{ID: id, DebateID: "d1", Side: side, Votes: votes, Content: id}
	if voters != nil {
		a.VotedUsers = voters
	}
	return a
}

type fixture struct {
	api   *fakeAPI
	sess  *fakeSessions
	notes *recorder
	ctrl  *Controller
}

func setup(endsAt time.Time, args ...domain.Argument) *fixture {
	f := &fixture{
		api:   &fakeAPI{debate: domain.Debate{ID: "d1", Title: "T", EndsAt: endsAt}, args: args},
		sess:  &fakeSessions{sess: &domain.Session{UserID: "u1", Token: "tok"}},
		notes: &recorder{},
	}
	f.ctrl = New("d1", f.api, f.sess, f.notes, WithClock(func() time.Time { return now }))
	return f
}

func open() time.Time   { return now.Add(time.Hour) }
func closed() time.Time { return now.Add(-time.Hour) }

func TestLoadWithoutSession(t *testing.T) {
	f := setup(open())
	f.sess.sess = nil

	err := f.ctrl.Load(context.Background())
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.Empty(t, f.api.Calls())
	assert.Empty(t, f.notes.items)
	assert.False(t, f.ctrl.View().Loaded)
}

func TestLoadOrderAndBearer(t *testing.T) {
	f := setup(open(), arg("a1", domain.SideSupport, 1))

	require.NoError(t, f.ctrl.Load(context.Background()))
	assert.Equal(t, []string{"get", "list"}, f.api.Calls())
	assert.Equal(t, "tok", f.api.tokens[1])

	v := f.ctrl.View()
	assert.True(t, v.Loaded)
	assert.False(t, v.Closed)
	require.Len(t, v.Support, 1)
	assert.Empty(t, v.Oppose)
}

func TestLoadFailureKeepsState(t *testing.T) {
	f := setup(open(), arg("a1", domain.SideSupport, 1))
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	f.api.listErr = &api.Error{Op: "list arguments", Status: 500, Message: "db down"}
	err := f.ctrl.Load(ctx)
	require.Error(t, err)

	assert.Equal(t, []string{"db down"}, f.notes.errors())
	assert.Len(t, f.ctrl.View().Support, 1)
}

func TestViewPartitionsBySide(t *testing.T) {
	f := setup(open(),
		arg("s1", domain.SideSupport, 2),
		arg("o1", domain.SideOppose, 5),
		arg("s2", domain.SideSupport, 1),
		arg("x", domain.Side("neutral"), 9),
	)
	require.NoError(t, f.ctrl.Load(context.Background()))

	v := f.ctrl.View()
	assert.Equal(t, []string{"s1", "s2"}, argIDs(v.Support))
	assert.Equal(t, []string{"o1"}, argIDs(v.Oppose))
	assert.Equal(t, 3, v.SupportVotes)
	assert.Equal(t, 5, v.OpposeVotes)
	assert.False(t, v.HasWinner, "no winner while open")
}

func argIDs(args []ArgumentView) []string {
	out := []string{}
	for _, a := range args {
		out = append(out, a.ID)
	}
	return out
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name   string
		args   []domain.Argument
		want   domain.Side
		wantOK bool
	}{
		{"support", []domain.Argument{arg("a", domain.SideSupport, 3), arg("b", domain.SideOppose, 2)}, domain.SideSupport, true},
		{"oppose", []domain.Argument{arg("a", domain.SideSupport, 1), arg("b", domain.SideOppose, 2), arg("c", domain.SideOppose, 0)}, domain.SideOppose, true},
		{"tie", []domain.Argument{arg("a", domain.SideSupport, 2), arg("b", domain.SideOppose, 2)}, "", false},
		{"empty", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Winner(tt.args)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClosedViewHasWinner(t *testing.T) {
	f := setup(closed(), arg("a", domain.SideSupport, 1), arg("b", domain.SideOppose, 4))
	require.NoError(t, f.ctrl.Load(context.Background()))

	v := f.ctrl.View()
	assert.True(t, v.Closed)
	assert.True(t, v.HasWinner)
	assert.Equal(t, domain.SideOppose, v.Winner)
	for _, a := range append(v.Support, v.Oppose...) {
		assert.False(t, a.CanVote)
	}
}

func TestOpenAtEndInstant(t *testing.T) {
	f := setup(now, arg("a", domain.SideSupport, 1))
	require.NoError(t, f.ctrl.Load(context.Background()))
	assert.False(t, f.ctrl.View().Closed)
}

func TestClosedRejectsMutationsBeforeNetwork(t *testing.T) {
	f := setup(closed(), arg("a", domain.SideSupport, 1))
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	before := len(f.api.Calls())

	assert.ErrorIs(t, f.ctrl.Join(ctx, domain.SideSupport), ErrDebateClosed)
	assert.ErrorIs(t, f.ctrl.Vote(ctx, "a"), ErrDebateClosed)
	assert.ErrorIs(t, f.ctrl.PostArgument(ctx, domain.SideOppose, "late"), ErrDebateClosed)

	assert.Len(t, f.api.Calls(), before)
	assert.Len(t, f.notes.errors(), 3)
}

func TestJoin(t *testing.T) {
	f := setup(open())
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	require.NoError(t, f.ctrl.Join(ctx, domain.SideOppose))
	assert.Equal(t, []string{"get", "list", "join:oppose", "get", "list"}, f.api.Calls())
	assert.Equal(t, "tok", f.api.tokens[2])
	assert.Empty(t, f.notes.errors())
}

func TestJoinInvalidSide(t *testing.T) {
	f := setup(open())
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	err := f.ctrl.Join(ctx, domain.Side("neutral"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "side", verr.Field)
	assert.Equal(t, []string{"get", "list"}, f.api.Calls())
	assert.Len(t, f.notes.errors(), 1)
}

func TestJoinFailureNoReload(t *testing.T) {
	f := setup(open())
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	f.api.joinErr = &api.Error{Op: "join debate", Status: 400, Message: "Already joined"}

	require.Error(t, f.ctrl.Join(ctx, domain.SideSupport))
	assert.Equal(t, []string{"get", "list", "join:support"}, f.api.Calls())
	assert.Equal(t, []string{"Already joined"}, f.notes.errors())
}

func TestVoteReloads(t *testing.T) {
	f := setup(open(), arg("a", domain.SideSupport, 1))
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	require.NoError(t, f.ctrl.Vote(ctx, "a"))
	assert.Equal(t, []string{"get", "list", "vote:a", "get", "list"}, f.api.Calls())
	assert.Equal(t, 2, f.ctrl.View().Support[0].Votes)
}

func TestVoteFailureLeavesCount(t *testing.T) {
	f := setup(open(), arg("a", domain.SideSupport, 1))
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	f.api.voteErr = errors.New("connection reset")

	require.Error(t, f.ctrl.Vote(ctx, "a"))
	assert.Equal(t, 1, f.ctrl.View().Support[0].Votes)
	assert.Len(t, f.notes.errors(), 1)
	assert.Equal(t, []string{"get", "list", "vote:a"}, f.api.Calls())
}

func TestVoteSingleVoteRule(t *testing.T) {
	f := setup(open(),
		arg("tracked", domain.SideSupport, 1, "u1"),
		arg("other", domain.SideSupport, 1, "u2"),
		arg("untracked", domain.SideOppose, 1),
	)
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))

	v := f.ctrl.View()
	assert.False(t, v.Support[0].CanVote)
	assert.True(t, v.Support[0].Voted)
	assert.True(t, v.Support[1].CanVote)
	assert.True(t, v.Oppose[0].CanVote)

	assert.ErrorIs(t, f.ctrl.Vote(ctx, "tracked"), ErrAlreadyVoted)
	assert.ErrorIs(t, f.ctrl.Vote(ctx, "missing"), ErrUnknownArgument)
	assert.Equal(t, []string{"get", "list"}, f.api.Calls())

	require.NoError(t, f.ctrl.Vote(ctx, "untracked"))
}

func TestMutationsBeforeLoad(t *testing.T) {
	f := setup(open())
	ctx := context.Background()

	assert.ErrorIs(t, f.ctrl.Vote(ctx, "a"), ErrNotLoaded)
	assert.ErrorIs(t, f.ctrl.Join(ctx, domain.SideSupport), ErrNotLoaded)
	assert.Empty(t, f.api.Calls())
}

func TestPostArgument(t *testing.T) {
	f := setup(open())
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	f.ctrl.SetDraft(domain.SideOppose, "No way")

	require.NoError(t, f.ctrl.PostArgument(ctx, domain.SideOppose, "No way"))
	assert.Equal(t, []string{"get", "list", "create:oppose", "get", "list"}, f.api.Calls())
	assert.Empty(t, f.ctrl.Draft(domain.SideOppose))
	assert.Len(t, f.ctrl.View().Oppose, 1)
}

func TestPostArgumentWhitespaceIsNoop(t *testing.T) {
	f := setup(open())
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	f.ctrl.SetDraft(domain.SideSupport, "  \n\t")

	require.NoError(t, f.ctrl.PostArgument(ctx, domain.SideSupport, "  \n\t"))
	assert.Equal(t, []string{"get", "list"}, f.api.Calls())
	assert.Empty(t, f.notes.items)
	assert.Equal(t, "  \n\t", f.ctrl.Draft(domain.SideSupport))
}

func TestPostArgumentFailureKeepsDraft(t *testing.T) {
	f := setup(open())
	ctx := context.Background()
	require.NoError(t, f.ctrl.Load(ctx))
	f.ctrl.SetDraft(domain.SideSupport, "Yes")
	f.api.createErr = &api.Error{Op: "create argument", Status: 401, Message: "Not authorized"}

	require.Error(t, f.ctrl.PostArgument(ctx, domain.SideSupport, "Yes"))
	assert.Equal(t, "Yes", f.ctrl.Draft(domain.SideSupport))
	assert.Equal(t, []string{"Not authorized"}, f.notes.errors())
}

func TestVisible(t *testing.T) {
	var args []domain.Argument
	for i := 0; i < 10; i++ {
		args = append(args, arg(string(rune('a'+i)), domain.SideSupport, 0))
	}
	args = append(args, arg("o", domain.SideOppose, 0))
	f := setup(open(), args...)
	require.NoError(t, f.ctrl.Load(context.Background()))

	n := f.ctrl.Showing()
	assert.Equal(t, InitialVisible, n)

	v := f.ctrl.View()
	cut := v.Visible(n)
	assert.Len(t, cut.Support, 7)
	assert.Len(t, cut.Oppose, 1)
	assert.True(t, v.HasMore(n))
	assert.Equal(t, 11, v.Total())

	f.ctrl.ShowMore()
	n = f.ctrl.Showing()
	assert.Equal(t, 12, n)
	assert.Len(t, v.Visible(n).Support, 10)
	assert.False(t, v.HasMore(n))
}

func TestAgainstFakeBackend(t *testing.T) {
	srv := apitest.New(t)
	srv.AddDebate(domain.Debate{ID: "d1", Title: "T", EndsAt: time.Now().Add(time.Hour)})
	srv.AddArgument(domain.Argument{ID: "a1", DebateID: "d1", Side: domain.SideSupport, VotedUsers: []string{}})

	ctx := context.Background()
	sessions := session.NewProvider(api.New(srv.APIURL()), store.NewMemory())
	_, err := sessions.SignIn(ctx, apitest.Email, apitest.Password)
	require.NoError(t, err)

	center := notify.NewCenter()
	ctrl := New("d1", api.New(srv.APIURL()), sessions, center)
	require.NoError(t, ctrl.Load(ctx))

	require.NoError(t, ctrl.Vote(ctx, "a1"))
	v := ctrl.View()
	require.Len(t, v.Support, 1)
	assert.Equal(t, 1, v.Support[0].Votes)
	assert.False(t, v.Support[0].CanVote)

	// The server would reject it too, but the controller stops it first.
	before := len(srv.Requests())
	assert.ErrorIs(t, ctrl.Vote(ctx, "a1"), ErrAlreadyVoted)
	assert.Len(t, srv.Requests(), before)

	latest, ok := center.Latest()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, latest.Level)
}
