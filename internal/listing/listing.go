// Package listing derives the visible page of debates from the full list.
// Everything here is pure: inputs are never modified and the same input
// always gives the same page.
package listing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joss/debate/internal/domain"
)

// SortKey selects the ordering of the list.
type SortKey string

const (
	SortNone       SortKey = ""
	SortNewest     SortKey = "newest"
	SortEndingSoon SortKey = "endingSoon"
	SortMostVoted  SortKey = "mostVoted"
)

// DefaultSort is the ordering a fresh list starts with.
const DefaultSort = SortNewest

// SortKeys lists the selectable orderings, in UI cycling order.
var SortKeys = []SortKey{SortNone, SortNewest, SortEndingSoon, SortMostVoted}

// SortIndex returns the position of k in SortKeys, or 0 if absent.
func SortIndex(k SortKey) int {
	for i, key := range SortKeys {
		if key == k {
			return i
		}
	}
	return 0
}

// ParseSortKey accepts the key names case-insensitively, plus the kebab
// forms used on the command line ("ending-soon", "most-voted").
func ParseSortKey(s string) (SortKey, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	if norm == "none" {
		return SortNone, nil
	}
	for _, k := range SortKeys {
		if strings.ToLower(string(k)) == norm {
			return k, nil
		}
	}
	return SortNone, fmt.Errorf("invalid sort %q: must be newest, endingSoon, mostVoted or none", s)
}

// Label returns a display name.
func (k SortKey) Label() string {
	switch k {
	case SortNewest:
		return "Newest"
	case SortEndingSoon:
		return "Ending soon"
	case SortMostVoted:
		return "Most voted"
	}
	return "Default"
}

// Query holds the list controls. Empty strings disable their filter.
type Query struct {
	Title     string
	Tag       string
	Category  string
	Sort      SortKey
	PageSize  int
	PageIndex int // 0-based
}

// Page is the derived result.
type Page struct {
	Items     []domain.Debate
	Filtered  int
	PageIndex int
	PageCount int
}

// Filter keeps debates whose title contains q.Title (case-insensitive), whose
// tags include q.Tag and whose category equals q.Category.
func Filter(debates []domain.Debate, q Query) []domain.Debate {
	title := strings.ToLower(q.Title)
	out := make([]domain.Debate, 0, len(debates))
	for _, d := range debates {
		if title != "" && !strings.Contains(strings.ToLower(d.Title), title) {
			continue
		}
		if q.Tag != "" && !d.HasTag(q.Tag) {
			continue
		}
		if q.Category != "" && d.Category != q.Category {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Sort returns a stably sorted copy. Unknown keys keep the input order.
func Sort(debates []domain.Debate, key SortKey) []domain.Debate {
	out := make([]domain.Debate, len(debates))
	copy(out, debates)

	var less func(a, b domain.Debate) bool
	switch key {
	case SortNewest:
		less = func(a, b domain.Debate) bool { return a.EndsAt.After(b.EndsAt) }
	case SortEndingSoon:
		less = func(a, b domain.Debate) bool { return a.EndsAt.Before(b.EndsAt) }
	case SortMostVoted:
		less = func(a, b domain.Debate) bool { return a.VoteTotal() > b.VoteTotal() }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Paginate returns the pageIndex-th slice of size pageSize, clipped to the
// input. It is empty when the page starts past the end.
func Paginate(debates []domain.Debate, pageSize, pageIndex int) []domain.Debate {
	start := pageIndex * pageSize
	if pageIndex < 0 || start >= len(debates) {
		return []domain.Debate{}
	}
	end := start + pageSize
	if end > len(debates) {
		end = len(debates)
	}
	out := make([]domain.Debate, end-start)
	copy(out, debates[start:end])
	return out
}

// PageCount returns ceil(n / pageSize).
func PageCount(n, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// Derive filters, sorts and paginates.
func Derive(debates []domain.Debate, q Query) Page {
	filtered := Sort(Filter(debates, q), q.Sort)
	return Page{
		Items:     Paginate(filtered, q.PageSize, q.PageIndex),
		Filtered:  len(filtered),
		PageIndex: q.PageIndex,
		PageCount: PageCount(len(filtered), q.PageSize),
	}
}

// Tags returns the distinct tags in first-seen order.
func Tags(debates []domain.Debate) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range debates {
		for _, t := range d.Tags {
			if t != "" && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func Categories(debates []domain.Debate) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range debates {
		if d.Category != "" && !seen[d.Category] {
			seen[d.Category] = true
			out = append(out, d.Category)
		}
	}
	return out
}
