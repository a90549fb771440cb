package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Prev     key.Binding
	Next     key.Binding
	Open     key.Binding
	Back     key.Binding
	Quit     key.Binding
	Help     key.Binding
	Refresh  key.Binding
	Search   key.Binding
	Tag      key.Binding
	Category key.Binding
	Sort     key.Binding
	PageSize key.Binding
	New      key.Binding
	Scores   key.Binding
	SignIn   key.Binding
	SignOut  key.Binding

	SwitchSide  key.Binding
	Vote        key.Binding
	JoinSupport key.Binding
	JoinOppose  key.Binding
	Compose     key.Binding
	Submit      key.Binding
	More        key.Binding
	PickImage   key.Binding
	NextField   key.Binding
	PrevField   key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j", "down")),
	Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h", "prev page")),
	Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l", "next page")),
	Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Tag:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tag")),
	Category: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "category")),
	Sort:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
	PageSize: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "page size")),
	New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Scores:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "scoreboard")),
	SignIn:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "sign in")),
	SignOut:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sign out")),

	SwitchSide:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch side")),
	Vote:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "vote")),
	JoinSupport: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "join support")),
	JoinOppose:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "join oppose")),
	Compose:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "argue")),
	Submit:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
	More:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "see more")),
	PickImage:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "pick image")),
	NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	PrevField:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
}

// hint renders a binding as "key: desc".
func hint(b key.Binding) string {
	h := b.Help()
	return h.Key + ": " + h.Desc
}
