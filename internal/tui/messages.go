package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interview-prep/studyclient/internal/dictation"
	"github.com/interview-prep/studyclient/internal/session"
)

type msgLoaded struct{ err error }

type msgTick session.TimerSnapshot

type msgActionDone struct {
	op  session.Operation
	err error
}

type msgDictation dictation.Update

type msgDictationClosed struct{}

type msgDictationToggled struct{ err error }

func loadSession(ctx context.Context, c *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return msgLoaded{err: c.Load(ctx)}
	}
}

// waitTick reads the next timer reading from the watch channel.
func waitTick(ticks <-chan session.TimerSnapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ticks
		if !ok {
			return nil
		}
		return msgTick(snap)
	}
}

func waitDictation(updates <-chan dictation.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return msgDictationClosed{}
		}
		return msgDictation(u)
	}
}

func toggleDictation(ctx context.Context, a *dictation.Adapter) tea.Cmd {
	return func() tea.Msg {
		return msgDictationToggled{err: a.Toggle(ctx)}
	}
}

// runAction performs one controller call off the update loop. Request
// deadlines belong to the HTTP client (PREP_HTTP_TIMEOUT), not to the screen.
func runAction(ctx context.Context, op session.Operation, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return msgActionDone{op: op, err: fn(ctx)}
	}
}
