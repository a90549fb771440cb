package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/joss/debate/internal/api"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/listing"
	"github.com/joss/debate/internal/notify"
	"github.com/joss/debate/internal/text"
)

// pageSizeAll shows every matching debate on one page.
const pageSizeAll = 0

type listState struct {
	debates   []domain.Debate
	loaded    bool
	loading   bool
	search    textinput.Model
	searching bool

	tags       []string
	categories []string
	tagIdx     int // 0 = any
	catIdx     int // 0 = any
	sortIdx    int
	sizes      []int
	sizeIdx    int
	pageIndex  int
	cursor     int
	pager      paginator.Model
}

type debatesMsg struct {
	debates []domain.Debate
	err     error
}

func newListState(pageSize int) listState {
	ti := textinput.New()
	ti.Placeholder = "Search by title..."
	ti.CharLimit = 100
	ti.Width = 40
	ti.Prompt = "/ "

	p := paginator.New()
	p.Type = paginator.Dots

	sizes := []int{3, 6, 9, 12}
	if pageSize > 0 && !containsInt(sizes, pageSize) {
		sizes = append(sizes, pageSize)
		sort.Ints(sizes)
	}
	sizes = append(sizes, pageSizeAll)

	idx := 0
	for i, n := range sizes {
		if n == pageSize {
			idx = i
		}
	}

	return listState{
		search:  ti,
		sizes:   sizes,
		sizeIdx: idx,
		sortIdx: listing.SortIndex(listing.DefaultSort),
		pager:   p,
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// query builds the derivation query from the controls. The page size is
// always positive here: "all" maps to the full list length.
func (s listState) query() listing.Query {
	size := s.sizes[s.sizeIdx]
	if size == pageSizeAll {
		size = len(s.debates)
		if size < 1 {
			size = 1
		}
	}
	q := listing.Query{
		Title:     s.search.Value(),
		Sort:      listing.SortKeys[s.sortIdx],
		PageSize:  size,
		PageIndex: s.pageIndex,
	}
	if s.tagIdx > 0 {
		q.Tag = s.tags[s.tagIdx-1]
	}
	if s.catIdx > 0 {
		q.Category = s.categories[s.catIdx-1]
	}
	return q
}

func (s listState) page() listing.Page {
	return listing.Derive(s.debates, s.query())
}

// resetPage goes back to the first page after a filter change.
func (s *listState) resetPage() {
	s.pageIndex = 0
	s.cursor = 0
}

func (s *listState) setDebates(debates []domain.Debate) {
	s.debates = debates
	s.loaded = true
	s.tags = listing.Tags(debates)
	s.categories = listing.Categories(debates)
	if s.tagIdx > len(s.tags) {
		s.tagIdx = 0
	}
	if s.catIdx > len(s.categories) {
		s.catIdx = 0
	}
	page := s.page()
	if s.pageIndex >= page.PageCount && page.PageCount > 0 {
		s.pageIndex = page.PageCount - 1
	}
	s.clampCursor()
}

func (s *listState) clampCursor() {
	n := len(s.page().Items)
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s listState) selected() (domain.Debate, bool) {
	items := s.page().Items
	if s.cursor < 0 || s.cursor >= len(items) {
		return domain.Debate{}, false
	}
	return items[s.cursor], true
}

func (m Model) fetchDebates() tea.Cmd {
	client, ctx := m.deps.API, m.deps.Context
	return func() tea.Msg {
		debates, err := client.ListDebates(ctx)
		return debatesMsg{debates: debates, err: err}
	}
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := &m.list

	switch msg := msg.(type) {
	case debatesMsg:
		s.loading = false
		if msg.err != nil {
			m.deps.Notices.Notify(notify.LevelError, "Could not load debates: "+api.ServerMessage(msg.err))
			return m, nil
		}
		s.setDebates(msg.debates)
		return m, nil

	case tea.KeyMsg:
		if s.searching {
			switch msg.String() {
			case "esc", "enter":
				s.searching = false
				s.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			s.resetPage()
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m.quit()
		case key.Matches(msg, keys.Help):
			return m.showHelp()
		case key.Matches(msg, keys.Search):
			s.searching = true
			return m, s.search.Focus()
		case key.Matches(msg, keys.Back):
			s.search.SetValue("")
			s.tagIdx, s.catIdx = 0, 0
			s.resetPage()
		case key.Matches(msg, keys.Tag):
			s.tagIdx = (s.tagIdx + 1) % (len(s.tags) + 1)
			s.resetPage()
		case key.Matches(msg, keys.Category):
			s.catIdx = (s.catIdx + 1) % (len(s.categories) + 1)
			s.resetPage()
		case key.Matches(msg, keys.Sort):
			s.sortIdx = (s.sortIdx + 1) % len(listing.SortKeys)
			s.resetPage()
		case key.Matches(msg, keys.PageSize):
			s.sizeIdx = (s.sizeIdx + 1) % len(s.sizes)
			s.resetPage()
		case key.Matches(msg, keys.Prev):
			if s.pageIndex > 0 {
				s.pageIndex--
				s.cursor = 0
			}
		case key.Matches(msg, keys.Next):
			if s.pageIndex < s.page().PageCount-1 {
				s.pageIndex++
				s.cursor = 0
			}
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Down):
			if s.cursor < len(s.page().Items)-1 {
				s.cursor++
			}
		case key.Matches(msg, keys.Open):
			if d, ok := s.selected(); ok {
				return m.goTo(target{view: ViewDetail, debateID: d.ID})
			}
		case key.Matches(msg, keys.New):
			return m.goTo(target{view: ViewCreate})
		case key.Matches(msg, keys.Scores):
			return m.goTo(target{view: ViewScoreboard})
		case key.Matches(msg, keys.SignIn):
			return m.goTo(target{view: ViewSignIn})
		case key.Matches(msg, keys.SignOut):
			return m, m.signOut()
		case key.Matches(msg, keys.Refresh):
			s.loading = true
			return m, m.fetchDebates()
		}
	}
	return m, nil
}

func (m Model) signOut() tea.Cmd {
	sessions, ctx, notices := m.deps.Sessions, m.deps.Context, m.deps.Notices
	return func() tea.Msg {
		if err := sessions.SignOut(ctx); err != nil {
			notices.Notify(notify.LevelError, "Sign out failed: "+err.Error())
			return nil
		}
		notices.Notify(notify.LevelInfo, "Signed out")
		return sessionMsg{}
	}
}

func (m Model) viewList() string {
	s := m.list
	var b strings.Builder

	b.WriteString(titleStyle.Render("Debates") + "\n\n")

	if s.searching || s.search.Value() != "" {
		b.WriteString("  " + s.search.View() + "\n")
	}

	tag, category := "any", "any"
	q := s.query()
	if q.Tag != "" {
		tag = "#" + q.Tag
	}
	if q.Category != "" {
		category = q.Category
	}
	size := fmt.Sprint(s.sizes[s.sizeIdx])
	if s.sizes[s.sizeIdx] == pageSizeAll {
		size = "all"
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("  tag: %s │ category: %s │ sort: %s │ per page: %s",
		tag, category, q.Sort.Label(), size)) + "\n\n")

	if !s.loaded {
		b.WriteString(fmt.Sprintf("  %s Loading debates...\n", m.spinner.View()))
		return b.String() + helpLine(hint(keys.Quit))
	}

	page := s.page()
	if page.Filtered == 0 {
		b.WriteString(infoStyle.Render("  No debates found") + "\n")
	}

	now := m.deps.Clock()
	for i, d := range page.Items {
		cursor := "  "
		style := infoStyle
		if i == s.cursor {
			cursor = "▶ "
			style = activeStyle
		}

		status := activeStyle.Render("open")
		ends := "ends " + humanize.RelTime(d.EndsAt, now, "ago", "from now")
		if d.ClosedAt(now) {
			status = errorStyle.Render("closed")
			ends = "ended " + humanize.RelTime(d.EndsAt, now, "ago", "from now")
		}

		b.WriteString(style.Render(fmt.Sprintf("%s%-40s", cursor, text.Truncate(d.Title, 40))) + " " + status + "\n")
		meta := fmt.Sprintf("    %s · %s · %s votes", categoryName(d), ends, humanize.Comma(int64(d.VoteTotal())))
		b.WriteString(infoStyle.Render(meta))
		if len(d.Tags) > 0 {
			b.WriteString(" " + tagStyle.Render("#"+strings.Join(d.Tags, " #")))
		}
		b.WriteString("\n")
	}

	if page.PageCount > 1 {
		pager := s.pager
		pager.SetTotalPages(page.PageCount)
		pager.Page = page.PageIndex
		b.WriteString("\n  " + pager.View() + infoStyle.Render(fmt.Sprintf("  page %d of %d", page.PageIndex+1, page.PageCount)) + "\n")
	}

	b.WriteString(helpLine(hint(keys.Open), hint(keys.Search), hint(keys.Tag), hint(keys.Category),
		hint(keys.Sort), hint(keys.PageSize), hint(keys.New), hint(keys.Scores), hint(keys.Help), hint(keys.Quit)))
	return b.String()
}

func categoryName(d domain.Debate) string {
	if d.Category == "" {
		return "General"
	}
	return d.Category
}
