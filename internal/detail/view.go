package detail

import (
	"github.com/joss/debate/internal/domain"
)

// ArgumentView is an argument plus what the current user may do with it.
type ArgumentView struct {
	domain.Argument
	Voted   bool
	CanVote bool
}

// View is a render-ready snapshot of the controller state.
type View struct {
	Loaded       bool
	Debate       domain.Debate
	Closed       bool
	Support      []ArgumentView
	Oppose       []ArgumentView
	SupportVotes int
	OpposeVotes  int
	// Winner is set only once the debate is closed and one side has
	// strictly more votes.
	Winner    domain.Side
	HasWinner bool
}

// Total returns the number of arguments on both sides.
func (v View) Total() int {
	return len(v.Support) + len(v.Oppose)
}

// Visible returns a copy with each column cut to its first n arguments.
func (v View) Visible(n int) View {
	v.Support = head(v.Support, n)
	v.Oppose = head(v.Oppose, n)
	return v
}

// HasMore reports whether showing n per column hides any argument.
func (v View) HasMore(n int) bool {
	return n < len(v.Support) || n < len(v.Oppose)
}

func head(args []ArgumentView, n int) []ArgumentView {
	if n < 0 {
		n = 0
	}
	if n >= len(args) {
		return args
	}
	return args[:n]
}

// Partition splits arguments by side, keeping their order. Arguments with
// any other side value are dropped.
func Partition(args []domain.Argument) (support, oppose []domain.Argument) {
	support = []domain.Argument{}
	oppose = []domain.Argument{}
	for _, a := range args {
		switch a.Side {
		case domain.SideSupport:
			support = append(support, a)
		case domain.SideOppose:
			oppose = append(oppose, a)
		}
	}
	return support, oppose
}

// Tally sums votes per side.
func Tally(args []domain.Argument) (support, oppose int) {
	for _, a := range args {
		switch a.Side {
		case domain.SideSupport:
			support += a.Votes
		case domain.SideOppose:
			oppose += a.Votes
		}
	}
	return support, oppose
}

// Winner returns the side with strictly more votes. Equal sums have no
// winner.
func Winner(args []domain.Argument) (domain.Side, bool) {
	s, o := Tally(args)
	switch {
	case s > o:
		return domain.SideSupport, true
	case o > s:
		return domain.SideOppose, true
	}
	return "", false
}

// View derives the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debate == nil {
		return View{Support: []ArgumentView{}, Oppose: []ArgumentView{}}
	}

	v := View{
		Loaded: true,
		Debate: *c.debate,
		Closed: c.debate.ClosedAt(c.now()),
	}

	support, oppose := Partition(c.args)
	v.Support = c.argumentViews(support, v.Closed)
	v.Oppose = c.argumentViews(oppose, v.Closed)
	v.SupportVotes, v.OpposeVotes = Tally(c.args)

	if v.Closed {
		v.Winner, v.HasWinner = Winner(c.args)
	}
	return v
}

func (c *Controller) argumentViews(args []domain.Argument, closed bool) []ArgumentView {
	out := make([]ArgumentView, len(args))
	for i, a := range args {
		voted := a.TracksVoters() && a.HasVoted(c.userID)
		out[i] = ArgumentView{
			Argument: a,
			Voted:    voted,
			CanVote:  !closed && !voted,
		}
	}
	return out
}
