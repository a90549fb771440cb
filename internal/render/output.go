package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/joss/debate/internal/countdown"
	"github.com/joss/debate/internal/detail"
	"github.com/joss/debate/internal/domain"
	"github.com/joss/debate/internal/listing"
	"github.com/joss/debate/internal/text"
)

// Renderer handles output formatting. In plain mode it emits no colour and
// no box drawing, for pipes and scripts.
type Renderer struct {
	pretty bool
	width  int
	now    func() time.Time
}

// New creates a new renderer.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty, width: 72, now: time.Now}
}

// WithClock overrides time.Now for relative times.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// When renders t relative to now, e.g. "3 hours from now".
func (r *Renderer) When(t time.Time) string {
	return humanize.RelTime(t, r.now(), "ago", "from now")
}

func (r *Renderer) rule(n int) string {
	if !r.pretty {
		return ""
	}
	return strings.Repeat("─", n) + "\n"
}

func (r *Renderer) status(closed bool) string {
	if closed {
		if r.pretty {
			return color.RedString("closed")
		}
		return "closed"
	}
	if r.pretty {
		return color.GreenString("open")
	}
	return "open"
}

// Debates formats one derived page of debates.
func (r *Renderer) Debates(page listing.Page) string {
	if page.Filtered == 0 {
		return "No debates found\n"
	}

	var sb strings.Builder
	now := r.now()

	if r.pretty {
		sb.WriteString(color.CyanString("Debates") + color.HiBlackString(" (%d matching)\n", page.Filtered))
		sb.WriteString(r.rule(60))
	}

	if len(page.Items) == 0 {
		fmt.Fprintf(&sb, "Page %d is empty\n", page.PageIndex+1)
	}

	for _, d := range page.Items {
		closed := d.ClosedAt(now)
		ends := "ends " + r.When(d.EndsAt)
		if closed {
			ends = "ended " + r.When(d.EndsAt)
		}
		votes := humanize.Comma(int64(d.VoteTotal()))

		if r.pretty {
			fmt.Fprintf(&sb, "%s  %s  %s\n", color.HiBlackString(d.ID), color.New(color.Bold).Sprint(text.Truncate(d.Title, 50)), r.status(closed))
			fmt.Fprintf(&sb, "    %s · %s · %s votes", category(d), ends, votes)
			if len(d.Tags) > 0 {
				fmt.Fprintf(&sb, " · %s", color.BlueString(hashTags(d.Tags)))
			}
			sb.WriteString("\n")
		} else {
			fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s\t%s\n", d.ID, text.OneLine(d.Title), text.OneLine(category(d)), d.EndsAt.Format(time.RFC3339), votes, r.status(closed))
		}
	}

	if page.PageCount > 1 {
		fmt.Fprintf(&sb, "%sPage %d of %d\n", r.rule(60), page.PageIndex+1, page.PageCount)
	}
	return sb.String()
}

func category(d domain.Debate) string {
	if d.Category == "" {
		return "General"
	}
	return d.Category
}

func hashTags(tags []string) string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = "#" + t
	}
	return strings.Join(out, " ")
}

// Debate formats the detail view with at most shown arguments per side.
func (r *Renderer) Debate(v detail.View, shown int) string {
	if !v.Loaded {
		return "Loading...\n"
	}
	d := v.Debate
	var sb strings.Builder

	if r.pretty {
		title := color.New(color.Bold, color.FgCyan).Sprint(d.Title)
		sb.WriteString(title + "\n")
		sb.WriteString(r.rule(min(text.VisibleLength(title), r.width)))
	} else {
		sb.WriteString(d.Title + "\n")
	}
	fmt.Fprintf(&sb, "Category: %s\n", category(d))
	if len(d.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags:     %s\n", hashTags(d.Tags))
	}
	fmt.Fprintf(&sb, "By:       %s\n", d.CreatedBy.DisplayName())
	if d.Image != "" {
		fmt.Fprintf(&sb, "Image:    %s\n", d.Image)
	}
	if v.Closed {
		fmt.Fprintf(&sb, "Status:   %s (ended %s)\n", r.status(true), r.When(d.EndsAt))
	} else {
		fmt.Fprintf(&sb, "Status:   %s, %s left\n", r.status(false), countdown.Format(countdown.Remaining(d.EndsAt, r.now())))
	}
	if d.Description != "" {
		sb.WriteString("\n" + text.WordWrap(d.Description, r.width) + "\n")
	}

	cut := v.Visible(shown)
	r.column(&sb, domain.SideSupport, cut.Support, len(v.Support), v.SupportVotes)
	r.column(&sb, domain.SideOppose, cut.Oppose, len(v.Oppose), v.OpposeVotes)

	if v.HasMore(shown) {
		fmt.Fprintf(&sb, "\n%d more arguments hidden\n", v.Total()-len(cut.Support)-len(cut.Oppose))
	}

	if v.Closed {
		sb.WriteString("\n" + r.Result(v) + "\n")
	}
	return sb.String()
}

func (r *Renderer) column(sb *strings.Builder, side domain.Side, args []detail.ArgumentView, total, votes int) {
	title := fmt.Sprintf("%s arguments (%d, %s votes)", side.Label(), total, humanize.Comma(int64(votes)))
	sb.WriteString("\n")
	if r.pretty {
		c := color.New(color.FgGreen, color.Bold)
		if side == domain.SideOppose {
			c = color.New(color.FgRed, color.Bold)
		}
		sb.WriteString(c.Sprint(title) + "\n")
	} else {
		sb.WriteString(title + "\n")
	}

	if len(args) == 0 {
		sb.WriteString("  (none yet)\n")
		return
	}
	for _, a := range args {
		mark := " "
		if a.Voted {
			mark = "✓"
		}
		fmt.Fprintf(sb, "  %s [%s] %s  %s votes\n", mark, a.ID, a.Author.DisplayName(), humanize.Comma(int64(a.Votes)))
		sb.WriteString(text.Indent(text.WordWrap(a.Content, r.width-6), "      ") + "\n")
	}
}

// Result formats the outcome line of a closed debate.
func (r *Renderer) Result(v detail.View) string {
	if !v.HasWinner {
		return "Result: draw"
	}
	line := fmt.Sprintf("Winner: %s (%d to %d)", v.Winner.Label(), max(v.SupportVotes, v.OpposeVotes), min(v.SupportVotes, v.OpposeVotes))
	if r.pretty {
		return color.YellowString(line)
	}
	return line
}

// Scoreboard formats the ranking for a window.
func (r *Renderer) Scoreboard(entries []domain.ScoreEntry, window domain.ScoreWindow) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No scores for %s\n", window)
	}

	var sb strings.Builder
	if r.pretty {
		sb.WriteString(color.CyanString("Scoreboard (%s)\n", window))
		sb.WriteString(r.rule(50))
	}
	for i, e := range entries {
		name := e.Username
		if name == "" {
			name = e.UserID
		}
		if r.pretty {
			fmt.Fprintf(&sb, "%5s  %-20s %8s votes  %4d debates\n", humanize.Ordinal(i+1), text.Truncate(name, 20), humanize.Comma(int64(e.TotalVotes)), e.TotalDebates)
		} else {
			fmt.Fprintf(&sb, "%d\t%s\t%d\t%d\n", i+1, name, e.TotalVotes, e.TotalDebates)
		}
	}
	return sb.String()
}

// Session formats the signed-in identity.
func (r *Renderer) Session(s *domain.Session) string {
	if s == nil {
		return "Not signed in\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Signed in as %s <%s>\n", s.Username, s.Email)
	fmt.Fprintf(&sb, "  id:    %s\n", s.UserID)
	fmt.Fprintf(&sb, "  role:  %s\n", s.Role)
	fmt.Fprintf(&sb, "  since: %s\n", r.When(s.SignedIn))
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(&sb, "  token expires %s\n", r.When(s.ExpiresAt))
	}
	return sb.String()
}

// List formats a plain list of values, one per line.
func (r *Renderer) List(title string, values []string) string {
	if len(values) == 0 {
		return fmt.Sprintf("No %s\n", strings.ToLower(title))
	}
	var sb strings.Builder
	if r.pretty {
		sb.WriteString(color.CyanString(title) + "\n")
	}
	for _, v := range values {
		sb.WriteString(v + "\n")
	}
	return sb.String()
}
