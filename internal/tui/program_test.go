package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/joss/debate/internal/countdown"
)

type leaveMsg struct{ key tea.KeyMsg }

// slowLeave wraps the model so the leaving key is handled only after the
// ticker has had time to block in program.Send.
type slowLeave struct {
	Model
}

func (m slowLeave) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l, ok := msg.(leaveMsg); ok {
		time.Sleep(20 * time.Millisecond)
		msg = l.key
	}
	next, cmd := m.Model.Update(msg)
	m.Model = next.(Model)
	return m, cmd
}

func runWithTicker(t *testing.T, key tea.KeyMsg) {
	t.Helper()

	h := newHarness(t, true)
	h.model.shared.send = func(tea.Msg) {}
	m, cmd := h.model.openDetail("d1")
	h.model = m
	h.run(t, cmd)
	require.Equal(t, ViewDetail, h.model.view)
	require.True(t, h.model.detail.ticking)

	p := tea.NewProgram(slowLeave{h.model},
		tea.WithContext(context.Background()),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	shared := h.model.shared
	shared.mu.Lock()
	shared.send = nil
	shared.program = p
	shared.mu.Unlock()

	tk := countdown.Start(context.Background(), now.Add(time.Hour), func(tick countdown.Tick) {
		shared.dispatch(countdownMsg{debateID: "d1", tick: tick})
	}, countdown.WithClock(func() time.Time { return now }), countdown.WithInterval(time.Millisecond))
	shared.setTicker(tk)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	p.Send(leaveMsg{key: key})

	select {
	case <-tk.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown kept running after teardown")
	}

	if key.Type == tea.KeyCtrlC {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("program did not exit: Update blocked tearing down the countdown")
		}
		return
	}
	p.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("program did not exit")
	}
}

func TestQuitWhileCountdownTicking(t *testing.T) {
	runWithTicker(t, tea.KeyMsg{Type: tea.KeyCtrlC})
}

func TestLeaveDetailWhileCountdownTicking(t *testing.T) {
	runWithTicker(t, tea.KeyMsg{Type: tea.KeyEsc})
}
