package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/notify"
)

type signinState struct {
	email    textinput.Model
	password textinput.Model
	field    int
	busy     bool
	err      string
}

type signedInMsg struct {
	sess *domain.Session
	err  error
}

func newSigninState() signinState {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 254
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = 40

	return signinState{email: email, password: password}
}

// focus puts the cursor on the first empty field.
func (s *signinState) focus() tea.Cmd {
	s.err = ""
	s.busy = false
	if s.email.Value() != "" {
		s.field = 1
		s.email.Blur()
		return s.password.Focus()
	}
	s.field = 0
	s.password.Blur()
	return s.email.Focus()
}

func (s *signinState) cycle() tea.Cmd {
	s.field = (s.field + 1) % 2
	if s.field == 0 {
		s.password.Blur()
		return s.email.Focus()
	}
	s.email.Blur()
	return s.password.Focus()
}

func (m Model) submitSignin() tea.Cmd {
	sessions, ctx := m.deps.Sessions, m.deps.Context
	email := strings.TrimSpace(m.signin.email.Value())
	password := m.signin.password.Value()
	return func() tea.Msg {
		sess, err := sessions.SignIn(ctx, email, password)
		return signedInMsg{sess: sess, err: err}
	}
}

func (m Model) updateSignin(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.signin

	switch msg := msg.(type) {
	case signedInMsg:
		s.busy = false
		if msg.err != nil {
			s.err = api.ServerMessage(msg.err)
			if s.err == "" {
				s.err = msg.err.Error()
			}
			m.deps.Notices.Notify(notify.LevelError, "Sign in failed: "+s.err)
			s.password.SetValue("")
			return m, nil
		}
		m.user = msg.sess
		s.password.SetValue("")
		s.password.Blur()
		s.email.Blur()
		m.deps.Notices.Notify(notify.LevelSuccess, "Signed in as "+msg.sess.Username)

		next := target{view: ViewList}
		if m.pending != nil {
			next = *m.pending
			m.pending = nil
		}
		return m.goTo(next)

	case tea.KeyMsg:
		if s.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Back):
			m.pending = nil
			s.email.Blur()
			s.password.Blur()
			return m.goTo(target{view: ViewList})
		case key.Matches(msg, keys.NextField), key.Matches(msg, keys.PrevField),
			msg.String() == "up", msg.String() == "down":
			return m, s.cycle()
		case key.Matches(msg, keys.Open):
			if s.field == 0 {
				return m, s.cycle()
			}
			s.busy = true
			s.err = ""
			return m, m.submitSignin()
		}

		var cmd tea.Cmd
		if s.field == 0 {
			s.email, cmd = s.email.Update(msg)
		} else {
			s.password, cmd = s.password.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) viewSignin() string {
	s := m.signin
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sign in") + "\n\n")
	if m.pending != nil {
		b.WriteString(infoStyle.Render("  You need to sign in to continue.") + "\n\n")
	}

	form := s.email.View() + "\n" + s.password.View()
	b.WriteString(boxStyle.Render(form) + "\n")

	if s.busy {
		b.WriteString("\n  " + m.spinner.View() + " Signing in...\n")
	} else if s.err != "" {
		b.WriteString("\n  " + errorStyle.Render(s.err) + "\n")
	}

	b.WriteString(helpLine("enter: sign in", hint(keys.NextField), hint(keys.Back)))
	return b.String()
}
