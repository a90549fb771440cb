// Package tui provides the interactive debate browser using Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joss/debate/internal/countdown"
	"github.com/joss/debate/internal/detail"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/session"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	supportStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	opposeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)
)

// View represents the current view mode
type View int

const (
	ViewList View = iota
	ViewDetail
	ViewSignIn
	ViewCreate
	ViewScoreboard
	ViewHelp
)

// API is the part of the REST client the TUI uses.
type API interface {
	detail.API
	ListDebates(ctx context.Context) ([]domain.Debate, error)
	CreateDebate(ctx context.Context, token string, n domain.NewDebate) (*domain.Debate, error)
	Scoreboard(ctx context.Context, token string, window domain.ScoreWindow) ([]domain.ScoreEntry, error)
}

// Sessions is the session provider as seen by the TUI.
type Sessions interface {
	session.Source
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
}

// Deps are the collaborators of the TUI.
type Deps struct {
	Context   context.Context
	API       API
	Sessions  Sessions
	Notices   *notify.Center
	PageSize  int
	ImageRoot string
	Clock     func() time.Time
}

// target is where to go after a sign-in redirect.
type target struct {
	view     View
	debateID string
}

// sharedState holds state that must survive model copies.
type sharedState struct {
	mu      sync.Mutex
	program *tea.Program
	send    func(tea.Msg)
	ticker  *countdown.Ticker
}

func (s *sharedState) dispatch(msg tea.Msg) {
	s.mu.Lock()
	send, p := s.send, s.program
	s.mu.Unlock()
	switch {
	case send != nil:
		send(msg)
	case p != nil:
		p.Send(msg)
	}
}

// stopTicker cancels the running countdown, if any. It runs inside Update,
// so it must not wait for the ticker: the ticker may be blocked in
// program.Send until Update returns. Late ticks are dropped by debate ID.
func (s *sharedState) stopTicker() {
	s.mu.Lock()
	tk := s.ticker
	s.ticker = nil
	s.mu.Unlock()
	if tk != nil {
		tk.Cancel()
	}
}

func (s *sharedState) setTicker(tk *countdown.Ticker) {
	s.mu.Lock()
	old := s.ticker
	s.ticker = tk
	s.mu.Unlock()
	if old != nil {
		old.Cancel()
	}
}

// Model is the main TUI model
type Model struct {
	deps   Deps
	shared *sharedState

	view     View
	prevView View
	pending  *target
	user     *domain.Session
	ready    bool
	quitting bool
	width    int
	height   int

	spinner    spinner.Model
	list       listState
	detail     detailState
	signin     signinState
	create     createState
	scoreboard scoreboardState
}

// Message types
type sessionMsg struct{ sess *domain.Session }
type redirectMsg struct{ to target }
type clockMsg time.Time

// New creates a new TUI model
func New(deps Deps) Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Notices == nil {
		deps.Notices = notify.NewCenter()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		deps:       deps,
		shared:     &sharedState{},
		view:       ViewList,
		spinner:    s,
		list:       newListState(deps.PageSize),
		signin:     newSigninState(),
		create:     newCreateState(),
		scoreboard: newScoreboardState(),
	}
}

// Init initializes the TUI
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchDebates(),
		m.fetchSession(),
		clockCmd(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.detail.resize(msg.Width, msg.Height)
		m.create.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.view == ViewHelp {
			m.view = m.prevView
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case clockMsg:
		return m, clockCmd()

	case sessionMsg:
		m.user = msg.sess
		return m, nil

	case redirectMsg:
		return m.redirect(msg.to)

	case debatesMsg:
		return m.updateList(msg)
	}

	switch m.view {
	case ViewDetail:
		return m.updateDetail(msg)
	case ViewSignIn:
		return m.updateSignin(msg)
	case ViewCreate:
		return m.updateCreate(msg)
	case ViewScoreboard:
		return m.updateScoreboard(msg)
	default:
		return m.updateList(msg)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.shared.stopTicker()
	m.quitting = true
	return m, tea.Quit
}

// showHelp switches to the help screen, remembering where to return.
func (m Model) showHelp() (Model, tea.Cmd) {
	m.prevView = m.view
	m.view = ViewHelp
	return m, nil
}

// redirect sends the user to sign-in, remembering where they were going.
func (m Model) redirect(to target) (tea.Model, tea.Cmd) {
	m.shared.stopTicker()
	m.pending = &to
	m.view = ViewSignIn
	return m, m.signin.focus()
}

// goTo switches to a view and runs its entry command.
func (m Model) goTo(t target) (Model, tea.Cmd) {
	if m.view == ViewDetail && t.view != ViewDetail {
		m.shared.stopTicker()
	}
	switch t.view {
	case ViewDetail:
		return m.openDetail(t.debateID)
	case ViewCreate:
		m.view = ViewCreate
		return m, tea.Batch(m.requireSession(t), m.create.focusFirst())
	case ViewScoreboard:
		m.view = ViewScoreboard
		m.scoreboard.loading = true
		return m, m.fetchScores()
	case ViewSignIn:
		m.pending = nil
		m.view = ViewSignIn
		return m, m.signin.focus()
	}
	m.view = ViewList
	return m, m.fetchDebates()
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return fmt.Sprintf("\n  %s Loading...", m.spinner.View())
	}

	var body string
	switch m.view {
	case ViewDetail:
		body = m.viewDetail()
	case ViewSignIn:
		body = m.viewSignin()
	case ViewCreate:
		body = m.viewCreate()
	case ViewScoreboard:
		body = m.viewScoreboard()
	case ViewHelp:
		body = m.viewHelp()
	default:
		body = m.viewList()
	}
	return body + "\n" + m.statusBar()
}

func (m Model) statusBar() string {
	who := "not signed in"
	if m.user != nil {
		who = "signed in as " + m.user.Username
	}
	line := statusBarStyle.Render(who)
	if n, ok := m.deps.Notices.Latest(); ok {
		line += " " + toast(n)
	}
	return line
}

func toast(n notify.Notification) string {
	switch n.Level {
	case notify.LevelError:
		return errorStyle.Render("✗ " + n.Message)
	case notify.LevelSuccess:
		return activeStyle.Render("✓ " + n.Message)
	}
	return infoStyle.Render(n.Message)
}

func (m Model) viewHelp() string {
	help := `
  LIST
    /         Search titles
    t / c     Cycle tag / category filter
    o         Cycle sort order
    z         Cycle page size
    h/l       Previous / next page
    j/k       Move cursor
    enter     Open debate
    n         New debate
    b         Scoreboard
    i / x     Sign in / sign out
    r         Refresh

  DEBATE
    tab       Switch side column
    j/k       Move cursor
    v         Vote for selected argument
    s / o     Join support / oppose
    a         Write an argument for the focused side
    ctrl+s    Post the argument
    m         See more arguments
    r         Reload
    esc       Back

  SCOREBOARD
    1 2 3     Weekly / monthly / all time
`
	return titleStyle.Render("Help") + "\n" + infoStyle.Render(help) + helpStyle.Render("\n  press any key to return")
}

// Commands

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (m Model) fetchSession() tea.Cmd {
	sessions, ctx := m.deps.Sessions, m.deps.Context
	return func() tea.Msg {
		sess, err := sessions.Current(ctx)
		if err != nil {
			return sessionMsg{}
		}
		return sessionMsg{sess: sess}
	}
}

// requireSession redirects to sign-in when nobody is signed in.
func (m Model) requireSession(t target) tea.Cmd {
	sessions, ctx := m.deps.Sessions, m.deps.Context
	return func() tea.Msg {
		if _, err := sessions.Current(ctx); errors.Is(err, session.ErrNoSession) {
			return redirectMsg{to: t}
		}
		return nil
	}
}

func (m Model) token() string {
	sess, err := m.deps.Sessions.Current(m.deps.Context)
	if err != nil {
		return ""
	}
	return sess.Token
}

func helpLine(parts ...string) string {
	return helpStyle.Render("  " + strings.Join(parts, " │ "))
}

// Run starts the TUI and blocks until it exits.
func Run(deps Deps) error {
	model := New(deps)

	p := tea.NewProgram(model, tea.WithAltScreen())

	// Store program reference in shared state (survives model copies)
	model.shared.mu.Lock()
	model.shared.program = p
	model.shared.mu.Unlock()
	defer model.shared.stopTicker()

	_, err := p.Run()
	return err
}
