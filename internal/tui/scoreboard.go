package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/session"
	"github.com/joss/debate/internal/text"
)

type scoreboardState struct {
	window  domain.ScoreWindow
	entries []domain.ScoreEntry
	loading bool
	err     string
}

type scoresMsg struct {
	window  domain.ScoreWindow
	entries []domain.ScoreEntry
	err     error
}

func newScoreboardState() scoreboardState {
	return scoreboardState{window: domain.ScoreWeekly}
}

func (m Model) fetchScores() tea.Cmd {
	client, sessions, ctx, window := m.deps.API, m.deps.Sessions, m.deps.Context, m.scoreboard.window
	return func() tea.Msg {
		sess, err := sessions.Current(ctx)
		if err != nil {
			return scoresMsg{window: window, err: err}
		}
		entries, err := client.Scoreboard(ctx, sess.Token, window)
		return scoresMsg{window: window, entries: entries, err: err}
	}
}

func (m Model) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.scoreboard

	switch msg := msg.(type) {
	case scoresMsg:
		if msg.window != s.window {
			return m, nil
		}
		s.loading = false
		if errors.Is(msg.err, session.ErrNoSession) || errors.Is(msg.err, api.ErrUnauthorized) {
			return m.redirect(target{view: ViewScoreboard})
		}
		if msg.err != nil {
			s.err = api.ServerMessage(msg.err)
			if s.err == "" {
				s.err = "Something went wrong"
			}
			m.deps.Notices.Notify(notify.LevelError, "Could not load scoreboard: "+s.err)
			return m, nil
		}
		s.err = ""
		s.entries = msg.entries
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m.quit()
		case key.Matches(msg, keys.Help):
			return m.showHelp()
		case key.Matches(msg, keys.Back):
			return m.goTo(target{view: ViewList})
		case key.Matches(msg, keys.Refresh):
			s.loading = true
			return m, m.fetchScores()
		}
		for i, w := range domain.ScoreWindows {
			if msg.String() == fmt.Sprint(i+1) && w != s.window {
				s.window = w
				s.loading = true
				s.entries = nil
				return m, m.fetchScores()
			}
		}
	}
	return m, nil
}

func (m Model) viewScoreboard() string {
	s := m.scoreboard
	var b strings.Builder

	b.WriteString(titleStyle.Render("Scoreboard") + "\n\n")

	tabs := make([]string, len(domain.ScoreWindows))
	for i, w := range domain.ScoreWindows {
		label := fmt.Sprintf("%d %s", i+1, w)
		if w == s.window {
			tabs[i] = activeStyle.Render("[" + label + "]")
		} else {
			tabs[i] = infoStyle.Render(" " + label + " ")
		}
	}
	b.WriteString("  " + strings.Join(tabs, " ") + "\n\n")

	switch {
	case s.loading && len(s.entries) == 0:
		b.WriteString(fmt.Sprintf("  %s Loading scores...\n", m.spinner.View()))
	case s.err != "":
		b.WriteString("  " + errorStyle.Render(s.err) + "\n")
	case len(s.entries) == 0:
		b.WriteString(infoStyle.Render("  No scores yet") + "\n")
	default:
		for i, e := range s.entries {
			name := e.Username
			if name == "" {
				name = e.UserID
			}
			style := infoStyle
			if m.user != nil && e.UserID == m.user.UserID {
				style = activeStyle
			}
			line := fmt.Sprintf("  %5s  %-20s %8s votes  %4d debates",
				humanize.Ordinal(i+1), text.Truncate(name, 20), humanize.Comma(int64(e.TotalVotes)), e.TotalDebates)
			b.WriteString(style.Render(line) + "\n")
		}
	}

	b.WriteString(helpLine("1/2/3: window", hint(keys.Refresh), hint(keys.Back)))
	return b.String()
}
