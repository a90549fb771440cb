package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/session"
)

// Form fields in tab order.
const (
	fieldTitle = iota
	fieldDescription
	fieldCategory
	fieldDuration
	fieldTags
	fieldImage
	fieldCount
)

type createState struct {
	title       textinput.Model
	description textarea.Model
	category    textinput.Model
	duration    textinput.Model
	tags        textinput.Model
	field       int
	image       string
	picker      *ImagePicker
	picking     bool
	busy        bool
	width       int
	height      int
}

type createdMsg struct {
	debate *domain.Debate
	err    error
}

func newInput(prompt, placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 50
	return ti
}

func newCreateState() createState {
	desc := textarea.New()
	desc.Placeholder = "What is this debate about?"
	desc.ShowLineNumbers = false
	desc.CharLimit = 2000
	desc.SetHeight(4)
	desc.SetWidth(60)

	return createState{
		title:       newInput("Title:        ", "Should cities ban cars?", 200),
		description: desc,
		category:    newInput("Category:     ", "Politics", 60),
		duration:    newInput("Duration (h): ", "24", 8),
		tags:        newInput("Tags:         ", "urban, climate", 200),
	}
}

func (s *createState) resize(w, h int) {
	s.width, s.height = w, h
	if w > 8 {
		s.description.SetWidth(w - 8)
	}
	if s.picker != nil {
		s.picker.SetSize(w-4, h-8)
	}
}

func (s *createState) blurAll() {
	s.title.Blur()
	s.description.Blur()
	s.category.Blur()
	s.duration.Blur()
	s.tags.Blur()
}

func (s *createState) focusField(f int) tea.Cmd {
	s.blurAll()
	s.field = (f + fieldCount) % fieldCount
	switch s.field {
	case fieldTitle:
		return s.title.Focus()
	case fieldDescription:
		return s.description.Focus()
	case fieldCategory:
		return s.category.Focus()
	case fieldDuration:
		return s.duration.Focus()
	case fieldTags:
		return s.tags.Focus()
	}
	return nil
}

func (s *createState) focusFirst() tea.Cmd {
	s.busy = false
	s.picking = false
	return s.focusField(fieldTitle)
}

func (s *createState) reset() {
	s.title.Reset()
	s.description.Reset()
	s.category.Reset()
	s.duration.Reset()
	s.tags.Reset()
	s.image = ""
	s.field = fieldTitle
}

// form reads the fields into a submission. The duration is parsed here;
// an unparsable one is reported the same way as a non-positive one.
func (s createState) form() (domain.NewDebate, error) {
	n := domain.NewDebate{
		Title:       strings.TrimSpace(s.title.Value()),
		Description: strings.TrimSpace(s.description.Value()),
		Category:    strings.TrimSpace(s.category.Value()),
		Tags:        domain.ParseTags(s.tags.Value()),
		ImagePath:   s.image,
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(s.duration.Value()), 64)
	if err != nil || d <= 0 {
		return n, errInvalidDuration
	}
	n.Duration = d
	return n, n.Validate()
}

var errInvalidDuration = errors.New("invalid duration")

func createFailure(err error) string {
	var verr *domain.ValidationError
	var aerr *api.Error
	switch {
	case errors.Is(err, errInvalidDuration):
		return "Please enter a valid duration"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.As(err, &aerr):
		if aerr.Message != "" {
			return aerr.Message
		}
		return "Failed to create debate"
	}
	return "Something went wrong"
}

func (m Model) submitCreate(n domain.NewDebate) tea.Cmd {
	client, sessions, ctx := m.deps.API, m.deps.Sessions, m.deps.Context
	return func() tea.Msg {
		sess, err := sessions.Current(ctx)
		if errors.Is(err, session.ErrNoSession) {
			return createdMsg{err: session.ErrNoSession}
		}
		if err != nil {
			return createdMsg{err: err}
		}
		d, err := client.CreateDebate(ctx, sess.Token, n)
		return createdMsg{debate: d, err: err}
	}
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	s := &m.create
	if s.picker == nil {
		root := m.deps.ImageRoot
		if root == "" {
			root = "."
		}
		s.picker = NewImagePicker(root, max(s.width-4, 40), max(s.height-8, 10))
	}
	if err := s.picker.Load(); err != nil {
		m.deps.Notices.Notify(notify.LevelError, "Could not scan images: "+err.Error())
		return m, nil
	}
	s.picker.SetFilter("")
	s.picking = true
	s.blurAll()
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.create
	switch msg.Type {
	case tea.KeyEsc:
		s.picking = false
		return m, s.focusField(fieldImage)
	case tea.KeyEnter:
		if p, ok := s.picker.Selected(); ok {
			s.image = p
		}
		s.picking = false
		return m, s.focusField(fieldImage)
	case tea.KeyBackspace:
		if r := []rune(s.picker.Filter()); len(r) > 0 {
			s.picker.SetFilter(string(r[:len(r)-1]))
		}
		return m, nil
	case tea.KeyRunes:
		s.picker.SetFilter(s.picker.Filter() + string(msg.Runes))
		return m, nil
	}
	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	return m, cmd
}

func (m Model) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.create

	switch msg := msg.(type) {
	case createdMsg:
		s.busy = false
		if errors.Is(msg.err, session.ErrNoSession) {
			m.deps.Notices.Notify(notify.LevelError, "You are not logged in")
			return m.redirect(target{view: ViewCreate})
		}
		if msg.err != nil {
			m.deps.Notices.Notify(notify.LevelError, createFailure(msg.err))
			return m, nil
		}
		m.deps.Notices.Notify(notify.LevelSuccess, "Debate created successfully!")
		s.reset()
		s.blurAll()
		return m.goTo(target{view: ViewList})

	case tea.KeyMsg:
		if s.picking {
			return m.updatePicker(msg)
		}
		if s.busy {
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Back):
			s.blurAll()
			return m.goTo(target{view: ViewList})
		case key.Matches(msg, keys.NextField):
			return m, s.focusField(s.field + 1)
		case key.Matches(msg, keys.PrevField):
			return m, s.focusField(s.field - 1)
		case key.Matches(msg, keys.PickImage):
			return m.openPicker()
		case key.Matches(msg, keys.Submit):
			n, err := s.form()
			if err != nil {
				m.deps.Notices.Notify(notify.LevelError, createFailure(err))
				return m, nil
			}
			s.busy = true
			return m, m.submitCreate(n)
		}

		if s.field == fieldImage {
			switch msg.String() {
			case "enter":
				return m.openPicker()
			case "backspace", "delete":
				s.image = ""
			}
			return m, nil
		}
		if s.field != fieldDescription && msg.String() == "enter" {
			return m, s.focusField(s.field + 1)
		}

		var cmd tea.Cmd
		switch s.field {
		case fieldTitle:
			s.title, cmd = s.title.Update(msg)
		case fieldDescription:
			s.description, cmd = s.description.Update(msg)
		case fieldCategory:
			s.category, cmd = s.category.Update(msg)
		case fieldDuration:
			s.duration, cmd = s.duration.Update(msg)
		case fieldTags:
			s.tags, cmd = s.tags.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) viewCreate() string {
	s := m.create
	var b strings.Builder

	b.WriteString(titleStyle.Render("New debate") + "\n\n")

	if s.picking && s.picker != nil {
		b.WriteString(s.picker.View() + "\n")
		b.WriteString(helpLine("type to filter", "enter: choose", "esc: cancel"))
		return b.String()
	}

	image := infoStyle.Render("(none, enter or ctrl+o to pick)")
	if s.image != "" {
		image = s.image
	}
	imageLine := "Image:        " + image
	if s.field == fieldImage {
		imageLine = activeStyle.Render("> ") + imageLine
	} else {
		imageLine = "  " + imageLine
	}

	descLabel := "Description:"
	if s.field == fieldDescription {
		descLabel = activeStyle.Render(descLabel)
	}

	form := strings.Join([]string{
		s.title.View(),
		descLabel,
		s.description.View(),
		s.category.View(),
		s.duration.View(),
		s.tags.View(),
		imageLine,
	}, "\n")
	b.WriteString(boxStyle.Render(form) + "\n")

	if s.busy {
		b.WriteString("\n  " + m.spinner.View() + " Creating debate...\n")
	}

	b.WriteString(helpLine(hint(keys.NextField), hint(keys.PickImage), hint(keys.Submit), hint(keys.Back)))
	return b.String()
}
