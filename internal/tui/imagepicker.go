package tui

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ImagePattern matches the image files a debate cover can be made from.
const ImagePattern = "**/*.{png,jpg,jpeg,gif,webp,PNG,JPG,JPEG,GIF,WEBP}"

// imageItem implements list.Item for the image picker
type imageItem struct {
	path    string
	relPath string
}

func (i imageItem) Title() string       { return "🖼 " + i.relPath }
func (i imageItem) Description() string { return i.path }
func (i imageItem) FilterValue() string { return i.relPath }

// imageItems implements fuzzy.Source
type imageItems []imageItem

func (f imageItems) String(i int) string { return f[i].relPath }
func (f imageItems) Len() int            { return len(f) }

// skipDirs are never descended into when looking for images.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
}

// ScanImages lists image files under root, relative to it, sorted.
// Hidden directories and common build output are skipped.
func ScanImages(root string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), ImagePattern)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if skipImagePath(m) {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func skipImagePath(p string) bool {
	dir := path.Dir(p)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if strings.HasPrefix(part, ".") || skipDirs[part] {
			return true
		}
	}
	return false
}

// ImagePicker selects a cover image for a new debate.
type ImagePicker struct {
	list   list.Model
	items  imageItems
	root   string
	filter string
	width  int
	height int
}

// NewImagePicker creates a picker rooted at root.
func NewImagePicker(root string, width, height int) *ImagePicker {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)

	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("205")).
		BorderForeground(lipgloss.Color("205"))

	l := list.New([]list.Item{}, delegate, width, height)
	l.Title = "Select cover image"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	return &ImagePicker{
		list:   l,
		root:   root,
		width:  width,
		height: height,
	}
}

// Load scans the root for images.
func (ip *ImagePicker) Load() error {
	paths, err := ScanImages(ip.root)
	if err != nil {
		return err
	}
	items := make(imageItems, len(paths))
	for i, rel := range paths {
		items[i] = imageItem{path: filepath.Join(ip.root, filepath.FromSlash(rel)), relPath: rel}
	}
	ip.items = items
	ip.SetFilter("")
	return nil
}

// SetFilter narrows the list with fuzzy matching.
func (ip *ImagePicker) SetFilter(filter string) {
	ip.filter = filter

	var listItems []list.Item
	if filter == "" {
		for _, item := range ip.items {
			listItems = append(listItems, item)
		}
	} else {
		for _, match := range fuzzy.FindFrom(filter, ip.items) {
			listItems = append(listItems, ip.items[match.Index])
		}
	}
	ip.list.SetItems(listItems)
}

// Filter returns the current filter text.
func (ip *ImagePicker) Filter() string {
	return ip.filter
}

// Len returns the number of images currently listed.
func (ip *ImagePicker) Len() int {
	return len(ip.list.Items())
}

// Update handles messages for the picker
func (ip *ImagePicker) Update(msg tea.Msg) (*ImagePicker, tea.Cmd) {
	var cmd tea.Cmd
	ip.list, cmd = ip.list.Update(msg)
	return ip, cmd
}

// View renders the picker
func (ip *ImagePicker) View() string {
	if len(ip.items) == 0 {
		return infoStyle.Render("  No images found under " + ip.root)
	}
	view := ip.list.View()
	if ip.filter != "" {
		view += "\n" + infoStyle.Render("  filter: "+ip.filter)
	}
	return view
}

// Selected returns the absolute path of the highlighted image.
func (ip *ImagePicker) Selected() (string, bool) {
	item, ok := ip.list.SelectedItem().(imageItem)
	if !ok {
		return "", false
	}
	return item.path, true
}

// SetSize updates the picker dimensions
func (ip *ImagePicker) SetSize(width, height int) {
	ip.width = width
	ip.height = height
	ip.list.SetSize(width, height)
}
