// Package domain defines the client-side projections of debate platform data.
// Values here are transient: they are decoded from API responses, held for
// the lifetime of a view or command, and discarded.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Side is one of the two positions a debate can be argued from.
type Side string

const (
	SideSupport Side = "support"
	SideOppose  Side = "oppose"
)

// Sides lists both sides in display order.
var Sides = []Side{SideSupport, SideOppose}

// sideMeta provides display metadata per side.
var sideMeta = map[Side]struct {
	Label string
	Icon  string
}{
	SideSupport: {"Support", "+"},
	SideOppose:  {"Oppose", "-"},
}

// ParseSide converts user input into a Side.
func ParseSide(s string) (Side, error) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	if !side.Valid() {
		return "", fmt.Errorf("invalid side %q: must be %q or %q", s, SideSupport, SideOppose)
	}
	return side, nil
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	_, ok := sideMeta[s]
	return ok
}

// Label returns the human-readable name of the side.
func (s Side) Label() string {
	if m, ok := sideMeta[s]; ok {
		return m.Label
	}
	return string(s)
}

// Icon returns a one-character marker for the side.
func (s Side) Icon() string {
	if m, ok := sideMeta[s]; ok {
		return m.Icon
	}
	return "?"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideSupport {
		return SideOppose
	}
	return SideSupport
}

// ScoreWindow selects the time window of the scoreboard.
type ScoreWindow string

const (
	ScoreWeekly  ScoreWindow = "weekly"
	ScoreMonthly ScoreWindow = "monthly"
	ScoreAll     ScoreWindow = "all"
)

// ScoreWindows lists the windows in toggle order.
var ScoreWindows = []ScoreWindow{ScoreWeekly, ScoreMonthly, ScoreAll}

// ParseScoreWindow converts user input into a ScoreWindow.
func ParseScoreWindow(s string) (ScoreWindow, error) {
	w := ScoreWindow(strings.ToLower(strings.TrimSpace(s)))
	switch w {
	case ScoreWeekly, ScoreMonthly, ScoreAll:
		return w, nil
	}
	return "", fmt.Errorf("invalid scoreboard filter %q: must be weekly, monthly or all", s)
}

// UserRef references a user. The API sends either a bare id or a populated
// object depending on the endpoint.
type UserRef struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UnmarshalJSON accepts both `"<id>"` and `{"_id": ..., "username": ...}`.
func (u *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = UserRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*u = UserRef{ID: id}
		return nil
	}
	type plain UserRef
	var p struct {
		plain
		AltID string `json:"id,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode user reference: %w", err)
	}
	*u = UserRef(p.plain)
	if u.ID == "" {
		u.ID = p.AltID
	}
	return nil
}

// DisplayName returns the best available label for the user.
func (u UserRef) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	case u.ID != "":
		return u.ID
	}
	return "anonymous"
}

// Debate is a debate summary as returned by the list and detail endpoints.
type Debate struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags"`
	Duration    float64   `json:"duration"` // hours
	EndsAt      time.Time `json:"endsAt"`
	CreatedBy   UserRef   `json:"createdBy"`
	Votes       *int      `json:"votes,omitempty"`
}

// VoteTotal returns the debate's vote total, treating a missing total as zero.
func (d Debate) VoteTotal() int {
	if d.Votes == nil {
		return 0
	}
	return *d.Votes
}

// HasTag reports exact membership of tag in the debate's tags.
func (d Debate) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ClosedAt reports whether the debate is closed at instant now.
// A debate is still open at exactly endsAt.
func (d Debate) ClosedAt(now time.Time) bool {
	return now.After(d.EndsAt)
}

// Argument is a single statement posted to one side of a debate.
type Argument struct {
	ID         string   `json:"_id"`
	DebateID   string   `json:"debateId"`
	Author     UserRef  `json:"userId"`
	Side       Side     `json:"side"`
	Content    string   `json:"content"`
	Votes      int      `json:"votes"`
	VotedUsers []string `json:"votedUsers"`
}

// TracksVoters reports whether the server sent a voter list for the argument.
func (a Argument) TracksVoters() bool {
	return a.VotedUsers != nil
}

// HasVoted reports whether userID appears in the argument's voter list.
func (a Argument) HasVoted(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range a.VotedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// ScoreEntry is one row of the scoreboard.
type ScoreEntry struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	TotalVotes   int    `json:"totalVotes"`
	TotalDebates int    `json:"totalDebates"`
}

// NewDebate carries the fields of a debate creation form.
type NewDebate struct {
	Title       string
	Description string
	Category    string
	Duration    float64 // hours
	Tags        []string
	ImagePath   string
}

// NewArgument carries the fields of an argument submission.
type NewArgument struct {
	DebateID string `json:"debateId"`
	Content  string `json:"content"`
	Side     Side   `json:"side"`
}
