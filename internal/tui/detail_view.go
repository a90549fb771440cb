package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joss/debate/internal/countdown"
	"github.com/joss/debate/internal/detail"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/text"
)

type detailState struct {
	ctrl      *detail.Controller
	loading   bool
	busy      bool
	ticking   bool
	side      domain.Side
	cursor    int
	composing bool
	input     textarea.Model
	clock     countdown.Tick
	offset    int
	width     int
	height    int
}

type detailLoadedMsg struct {
	ctrl *detail.Controller
	err  error
}

type countdownMsg struct {
	debateID string
	tick     countdown.Tick
}

type mutationDoneMsg struct {
	ctrl *detail.Controller
	op   string
	err  error
}

func newArgumentInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Write your argument..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	ta.SetWidth(60)
	return ta
}

func (s *detailState) resize(w, h int) {
	s.width, s.height = w, h
	if s.ctrl != nil && w > 8 {
		s.input.SetWidth(w - 8)
	}
}

// scroll cuts body to height lines starting at the scroll offset.
func (s detailState) scroll(body string, height int) string {
	if height < 5 {
		height = 5
	}
	vp := viewport.New(max(s.width, 20), height)
	vp.SetContent(body)
	vp.SetYOffset(s.offset)
	if vp.TotalLineCount() <= height {
		return body
	}
	return vp.View()
}

// columnWidth is the width of one side column.
func (s detailState) columnWidth() int {
	w := (s.width - 6) / 2
	if w < 24 {
		w = 24
	}
	return w
}

// openDetail starts a fresh controller for id and loads it.
func (m Model) openDetail(id string) (Model, tea.Cmd) {
	m.shared.stopTicker()

	input := newArgumentInput()
	if m.width > 8 {
		input.SetWidth(m.width - 8)
	}
	m.detail = detailState{
		ctrl:    detail.New(id, m.deps.API, m.deps.Sessions, m.deps.Notices, detail.WithClock(m.deps.Clock)),
		loading: true,
		side:    domain.SideSupport,
		input:   input,
		width:   m.width,
		height:  m.height,
	}
	m.view = ViewDetail
	return m, m.loadDetail()
}

func (m Model) loadDetail() tea.Cmd {
	ctrl, ctx := m.detail.ctrl, m.deps.Context
	return func() tea.Msg {
		return detailLoadedMsg{ctrl: ctrl, err: ctrl.Load(ctx)}
	}
}

// mutate runs a controller mutation off the update loop.
func (m Model) mutate(op string, fn func() error) tea.Cmd {
	ctrl := m.detail.ctrl
	return func() tea.Msg {
		return mutationDoneMsg{ctrl: ctrl, op: op, err: fn()}
	}
}

// startCountdown begins refreshing the remaining time of the loaded debate.
// Ticks reach the model through the program, like any external event.
func (m *Model) startCountdown(d domain.Debate) {
	shared, id := m.shared, m.detail.ctrl.ID()
	tk := countdown.Start(m.deps.Context, d.EndsAt, func(t countdown.Tick) {
		shared.dispatch(countdownMsg{debateID: id, tick: t})
	}, countdown.WithClock(m.deps.Clock))
	shared.setTicker(tk)
	m.detail.ticking = true
}

// selectedArgument returns the argument under the cursor in the focused
// column.
func (s detailState) selectedArgument() (detail.ArgumentView, bool) {
	v := s.ctrl.View().Visible(s.ctrl.Showing())
	col := v.Support
	if s.side == domain.SideOppose {
		col = v.Oppose
	}
	if s.cursor < 0 || s.cursor >= len(col) {
		return detail.ArgumentView{}, false
	}
	return col[s.cursor], true
}

func (s *detailState) clampCursor() {
	v := s.ctrl.View().Visible(s.ctrl.Showing())
	n := len(v.Support)
	if s.side == domain.SideOppose {
		n = len(v.Oppose)
	}
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (m Model) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.detail

	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.ctrl != s.ctrl {
			return m, nil
		}
		s.loading = false
		if errors.Is(msg.err, detail.ErrSignInRequired) {
			return m.redirect(target{view: ViewDetail, debateID: s.ctrl.ID()})
		}
		if msg.err == nil {
			s.clampCursor()
			if !s.ticking {
				m.startCountdown(s.ctrl.View().Debate)
			}
		}
		return m, nil

	case countdownMsg:
		if s.ctrl == nil || msg.debateID != s.ctrl.ID() {
			return m, nil
		}
		s.clock = msg.tick
		return m, nil

	case mutationDoneMsg:
		if msg.ctrl != s.ctrl {
			return m, nil
		}
		s.busy = false
		if errors.Is(msg.err, detail.ErrSignInRequired) {
			return m.redirect(target{view: ViewDetail, debateID: s.ctrl.ID()})
		}
		if msg.op == "post" && msg.err == nil {
			s.composing = false
			s.input.Reset()
			s.input.Blur()
		}
		s.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if s.composing {
			return m.updateCompose(msg)
		}
		if s.busy {
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m.quit()
		case key.Matches(msg, keys.Help):
			return m.showHelp()
		case key.Matches(msg, keys.Back):
			return m.goTo(target{view: ViewList})
		case key.Matches(msg, keys.Refresh):
			s.loading = true
			return m, m.loadDetail()
		case key.Matches(msg, keys.SwitchSide):
			s.side = s.side.Opposite()
			s.cursor = 0
			s.clampCursor()
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Down):
			s.cursor++
			s.clampCursor()
		case msg.String() == "pgdown":
			s.offset += 5
		case msg.String() == "pgup":
			s.offset = max(s.offset-5, 0)
		case key.Matches(msg, keys.More):
			s.ctrl.ShowMore()
		case key.Matches(msg, keys.Vote):
			a, ok := s.selectedArgument()
			if !ok {
				return m, nil
			}
			s.busy = true
			ctrl, ctx := s.ctrl, m.deps.Context
			return m, m.mutate("vote", func() error { return ctrl.Vote(ctx, a.ID) })
		case key.Matches(msg, keys.JoinSupport), key.Matches(msg, keys.JoinOppose):
			side := domain.SideSupport
			if key.Matches(msg, keys.JoinOppose) {
				side = domain.SideOppose
			}
			s.busy = true
			ctrl, ctx := s.ctrl, m.deps.Context
			return m, m.mutate("join", func() error { return ctrl.Join(ctx, side) })
		case key.Matches(msg, keys.Compose):
			if s.loading || s.ctrl.View().Closed {
				return m, nil
			}
			s.composing = true
			s.input.SetValue(s.ctrl.Draft(s.side))
			return m, s.input.Focus()
		}
	}
	return m, nil
}

// updateCompose handles keys while the argument editor is open. The draft
// is kept per side so switching away does not lose it.
func (m Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.detail
	switch {
	case key.Matches(msg, keys.Back):
		s.ctrl.SetDraft(s.side, s.input.Value())
		s.composing = false
		s.input.Blur()
		return m, nil
	case key.Matches(msg, keys.Submit):
		content, side := s.input.Value(), s.side
		s.ctrl.SetDraft(side, content)
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		s.busy = true
		ctrl, ctx := s.ctrl, m.deps.Context
		return m, m.mutate("post", func() error { return ctrl.PostArgument(ctx, side, content) })
	}
	if s.busy {
		return m, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.ctrl.SetDraft(s.side, s.input.Value())
	return m, cmd
}

func (m Model) viewDetail() string {
	s := m.detail
	var b strings.Builder

	v := s.ctrl.View()
	if !v.Loaded {
		b.WriteString(titleStyle.Render("Debate") + "\n\n")
		if s.loading {
			b.WriteString(fmt.Sprintf("  %s Loading debate...\n", m.spinner.View()))
		} else {
			b.WriteString(errorStyle.Render("  Could not load this debate.") + "\n")
		}
		return b.String() + helpLine(hint(keys.Refresh), hint(keys.Back))
	}

	d := v.Debate
	b.WriteString(titleStyle.Render(d.Title) + "\n")
	meta := fmt.Sprintf("  %s · by %s", categoryName(d), d.CreatedBy.DisplayName())
	b.WriteString(infoStyle.Render(meta))
	if len(d.Tags) > 0 {
		b.WriteString(" " + tagStyle.Render("#"+strings.Join(d.Tags, " #")))
	}
	b.WriteString("\n")
	if d.Description != "" {
		b.WriteString(text.Indent(text.WordWrap(d.Description, max(s.width-4, 20)), "  ") + "\n")
	}
	b.WriteString("\n")

	switch {
	case v.Closed || s.clock.Closed:
		b.WriteString("  " + errorStyle.Render(countdown.ClosedText) + "\n")
	case s.clock.Text != "":
		b.WriteString("  " + activeStyle.Render("⏱ "+s.clock.Text) + infoStyle.Render(" left") + "\n")
	default:
		b.WriteString("  " + infoStyle.Render(countdown.At(d.EndsAt, m.deps.Clock()).Text) + "\n")
	}
	b.WriteString("\n")

	var body strings.Builder
	showing := s.ctrl.Showing()
	visible := v.Visible(showing)
	support := m.renderColumn(domain.SideSupport, visible.Support, v.SupportVotes, len(v.Support))
	oppose := m.renderColumn(domain.SideOppose, visible.Oppose, v.OpposeVotes, len(v.Oppose))
	body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, support, " ", oppose) + "\n")

	if v.HasMore(showing) {
		body.WriteString(infoStyle.Render(fmt.Sprintf("  %d more arguments hidden, press m to see more", v.Total()-visible.Total())) + "\n")
	}

	if v.Closed {
		if v.HasWinner {
			style := supportStyle
			if v.Winner == domain.SideOppose {
				style = opposeStyle
			}
			body.WriteString("\n  " + style.Render(fmt.Sprintf("Winner: %s (%d to %d)",
				v.Winner.Label(), max(v.SupportVotes, v.OpposeVotes), min(v.SupportVotes, v.OpposeVotes))) + "\n")
		} else {
			body.WriteString("\n  " + infoStyle.Render("Result: draw") + "\n")
		}
	}

	b.WriteString(s.scroll(body.String(), m.height-lipgloss.Height(b.String())-8) + "\n")

	if s.composing {
		b.WriteString("\n  " + sideStyle(s.side).Render("Arguing for "+strings.ToLower(s.side.Label())) + "\n")
		b.WriteString(text.Indent(s.input.View(), "  ") + "\n")
		b.WriteString(helpLine(hint(keys.Submit), hint(keys.Back)))
		return b.String()
	}
	if s.busy {
		b.WriteString(fmt.Sprintf("\n  %s Working...\n", m.spinner.View()))
	}

	if v.Closed {
		b.WriteString(helpLine(hint(keys.SwitchSide), hint(keys.More), hint(keys.Refresh), hint(keys.Back)))
	} else {
		b.WriteString(helpLine(hint(keys.SwitchSide), hint(keys.Vote), hint(keys.JoinSupport), hint(keys.JoinOppose),
			hint(keys.Compose), hint(keys.More), hint(keys.Back)))
	}
	return b.String()
}

func sideStyle(side domain.Side) lipgloss.Style {
	if side == domain.SideOppose {
		return opposeStyle
	}
	return supportStyle
}

func (m Model) renderColumn(side domain.Side, args []detail.ArgumentView, votes, total int) string {
	s := m.detail
	width := s.columnWidth()
	focused := s.side == side

	var b strings.Builder
	title := fmt.Sprintf("%s (%d, %d votes)", side.Label(), total, votes)
	b.WriteString(sideStyle(side).Render(title) + "\n")

	if len(args) == 0 {
		b.WriteString(infoStyle.Render("(none yet)"))
	}
	for i, a := range args {
		cursor := "  "
		if focused && i == s.cursor {
			cursor = "▶ "
		}
		mark := " "
		if a.Voted {
			mark = "✓"
		}
		head := fmt.Sprintf("%s%s %d · %s", cursor, mark, a.Votes, a.Author.DisplayName())
		b.WriteString(infoStyle.Render(text.Truncate(head, width-2)) + "\n")
		b.WriteString(text.Indent(text.WordWrap(a.Content, width-6), "    "))
		if i < len(args)-1 {
			b.WriteString("\n")
		}
	}

	box := boxStyle.Width(width)
	if focused {
		box = box.BorderForeground(lipgloss.Color("205"))
	}
	return box.Render(b.String())
}
