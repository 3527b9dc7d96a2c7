// Package tui renders a study session in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/interview-prep/studyclient/internal/api"
	"github.com/interview-prep/studyclient/internal/dictation"
	"github.com/interview-prep/studyclient/internal/session"
)

type focus int

const (
	focusList focus = iota
	focusAnswer
	focusOutline
)

const (
	tickInterval       = time.Second
	defaultInputWidth  = 72
	defaultInputHeight = 6
)

// SessionModel is the bubbletea model of the study session screen.
type SessionModel struct {
	ctx   context.Context
	ctrl  *session.Controller
	dict  *dictation.Adapter
	ticks <-chan session.TimerSnapshot

	snap    session.Snapshot
	timer   session.TimerSnapshot
	cursor  int
	focus   focus
	loading bool
	status  string
	help    bool

	spinner spinner.Model
	answer  textarea.Model
	outline textarea.Model
	width   int
}

func NewSessionModel(ctx context.Context, ctrl *session.Controller, dict *dictation.Adapter) SessionModel {
	answer := textarea.New()
	answer.Placeholder = "Type your answer, or ctrl+d to dictate..."
	answer.CharLimit = 0
	answer.ShowLineNumbers = false
	answer.SetWidth(defaultInputWidth)
	answer.SetHeight(defaultInputHeight)

	outline := textarea.New()
	outline.Placeholder = "Generate an outline with o"
	outline.CharLimit = 0
	outline.ShowLineNumbers = false
	outline.SetWidth(defaultInputWidth)
	outline.SetHeight(defaultInputHeight)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StyleSubtle

	return SessionModel{
		ctx:     ctx,
		ctrl:    ctrl,
		dict:    dict,
		ticks:   ctrl.Timer().Watch(ctx, tickInterval),
		snap:    ctrl.Snapshot(),
		loading: true,
		spinner: s,
		answer:  answer,
		outline: outline,
		width:   defaultInputWidth + 4,
	}
}

func (m SessionModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		loadSession(m.ctx, m.ctrl),
		waitTick(m.ticks),
	}
	if m.dict != nil && m.dict.Supported() {
		cmds = append(cmds, waitDictation(m.dict.Updates()))
	}
	return tea.Batch(cmds...)
}

func (m *SessionModel) refresh() {
	m.snap = m.ctrl.Snapshot()
	m.timer = m.snap.Timer
	if m.cursor >= len(m.snap.Questions) {
		m.cursor = 0
	}
}

// syncAnswer pushes the controller's draft into the textarea, for changes
// that did not come from typing.
func (m *SessionModel) syncAnswer() {
	if m.answer.Value() != m.snap.Answer {
		m.answer.SetValue(m.snap.Answer)
	}
}

func (m *SessionModel) syncOutline() {
	if m.outline.Value() != m.snap.OutlineText {
		m.outline.SetValue(m.snap.OutlineText)
	}
}

func (m *SessionModel) setFocus(f focus) {
	m.focus = f
	m.answer.Blur()
	m.outline.Blur()
	switch f {
	case focusAnswer:
		m.answer.Focus()
	case focusOutline:
		m.outline.Focus()
	}
}

func (m SessionModel) action(op session.Operation, fn func(context.Context) error) tea.Cmd {
	return runAction(m.ctx, op, fn)
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 6
		if w < 20 {
			w = 20
		}
		m.answer.SetWidth(w)
		m.outline.SetWidth(w)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.snap = m.ctrl.Snapshot()
		return m, cmd

	case msgTick:
		m.timer = session.TimerSnapshot(msg)
		return m, waitTick(m.ticks)

	case msgLoaded:
		m.loading = false
		if msg.err != nil {
			m.status = "Could not load session details; timing from now."
		}
		m.refresh()
		return m, nil

	case msgActionDone:
		m.refresh()
		switch {
		case msg.err == nil:
			m.status = ""
		case errors.Is(msg.err, session.ErrStale), errors.Is(msg.err, session.ErrClosed):
		default:
			m.status = api.Message(msg.err)
		}
		switch msg.op {
		case session.OpGenerateQuestions:
			m.cursor = 0
			m.syncAnswer()
			m.syncOutline()
		case session.OpGenerateOutline, session.OpLoadOutline:
			m.syncOutline()
		}
		return m, nil

	case msgDictation:
		u := dictation.Update(msg)
		if u.Stopped {
			if u.Reason != "" {
				m.status = "Dictation stopped: " + u.Reason
			}
		} else {
			m.ctrl.AppendDictation(u.Text, u.Final)
			m.refresh()
			m.syncAnswer()
		}
		return m, waitDictation(m.dict.Updates())

	case msgDictationToggled:
		if msg.err != nil {
			m.status = "Dictation unavailable: " + msg.err.Error()
		}
		return m, nil

	case msgDictationClosed:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m SessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "tab":
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case "esc":
		m.setFocus(focusList)
		return m, nil
	case "ctrl+d":
		if m.dict == nil || !m.dict.Supported() {
			m.status = "Dictation is not supported on this system."
			return m, nil
		}
		return m, toggleDictation(m.ctx, m.dict)
	case "ctrl+s":
		if m.focus == focusOutline {
			m.ctrl.SetOutlineText(m.outline.Value())
			return m, m.action(session.OpSaveOutline, m.ctrl.SaveOutline)
		}
	case "ctrl+r":
		m.ctrl.SetAnswer(m.answer.Value())
		if !m.ctrl.CanSubmit() {
			return m, nil
		}
		m.refresh()
		return m, m.action(session.OpSubmitAnswer, m.ctrl.SubmitAnswer)
	}

	switch m.focus {
	case focusAnswer:
		var cmd tea.Cmd
		m.answer, cmd = m.answer.Update(msg)
		m.ctrl.SetAnswer(m.answer.Value())
		m.refresh()
		return m, cmd
	case focusOutline:
		var cmd tea.Cmd
		m.outline, cmd = m.outline.Update(msg)
		m.ctrl.SetOutlineText(m.outline.Value())
		return m, cmd
	}
	return m.handleListKey(msg)
}

func (m SessionModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Only quitting is allowed until the session details are in.
	if m.loading {
		if msg.String() == "q" {
			return m.quit()
		}
		return m, nil
	}
	switch msg.String() {
	case "q":
		return m.quit()
	case "?":
		m.help = !m.help
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Questions)-1 {
			m.cursor++
		}
	case "enter":
		if err := m.ctrl.Select(m.cursor); err == nil {
			m.refresh()
			m.syncOutline()
			m.setFocus(focusAnswer)
		}
	case "s":
		if err := m.ctrl.Skip(m.cursor); err == nil {
			m.refresh()
			m.syncAnswer()
			m.syncOutline()
		}
	case "g":
		if m.snap.CanGenerate() {
			return m, m.action(session.OpGenerateQuestions, m.ctrl.GenerateQuestions)
		}
	case "o":
		return m, m.action(session.OpGenerateOutline, m.ctrl.GenerateOutline)
	case "l":
		return m, m.action(session.OpLoadOutline, m.ctrl.LoadOutline)
	case "E":
		if m.snap.CanEnd() {
			return m, m.action(session.OpEndSession, m.ctrl.EndSession)
		}
	}
	m.refresh()
	return m, nil
}

func (m SessionModel) quit() (tea.Model, tea.Cmd) {
	if m.dict != nil {
		m.dict.Close()
	}
	m.ctrl.Close()
	return m, tea.Quit
}

// ── View ─────────────────────────────────────────────────

func (m SessionModel) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading session...\n")
		return b.String()
	}

	b.WriteString(m.questionList())
	b.WriteString("\n")

	if q, ok := m.snap.SelectedQuestion(); ok {
		b.WriteString(StyleTitle.Render(q.Question) + "\n")
		b.WriteString(StyleSubtle.Render(q.Label()) + "\n\n")
		b.WriteString(m.panel(focusAnswer, "Answer", m.answer.View()))
		b.WriteString("\n")
		if m.snap.Interim != "" {
			b.WriteString(StyleSubtle.Render("… "+m.snap.Interim) + "\n")
		}
		if ev := m.snap.Evaluation; ev != nil {
			b.WriteString(RenderEvaluation(*ev))
			b.WriteString("\n")
		}
		b.WriteString(m.panel(focusOutline, "Story outline", m.outline.View()))
		b.WriteString("\n")
	}

	if op := m.snap.InFlight; op != session.OpNone {
		b.WriteString(m.spinner.View() + " " + busyLabel(op) + "\n")
	}
	if m.snap.Error != "" {
		b.WriteString(StyleError.Render(m.snap.Error) + "\n")
	} else if m.status != "" {
		b.WriteString(StyleWarn.Render(m.status) + "\n")
	}
	if m.snap.Notice != "" {
		b.WriteString(StyleGood.Render(m.snap.Notice) + "\n")
	}

	b.WriteString("\n" + m.footer())
	return b.String()
}

func (m SessionModel) header() string {
	title := StyleTitle.Render(fmt.Sprintf("Study session #%d", m.snap.SessionID))
	parts := []string{title, "Session " + m.timer.SessionDisplay()}
	if m.timer.QuestionActive {
		parts = append(parts, "Question "+m.timer.QuestionDisplay())
	}
	if m.dict != nil && m.dict.Listening() {
		parts = append(parts, StyleError.Render("● listening"))
	}
	line := strings.Join(parts, StyleSubtle.Render("  ·  "))
	if m.snap.Ended() {
		line += "  " + StyleBadge.Render("ENDED")
	}
	return line
}

func (m SessionModel) questionList() string {
	if len(m.snap.Questions) == 0 {
		if m.snap.Ended() {
			return StyleSubtle.Render("This session has ended.") + "\n"
		}
		return StyleSubtle.Render("No questions yet. Press g to generate a batch.") + "\n"
	}

	var b strings.Builder
	for i, q := range m.snap.Questions {
		cursor := "  "
		if i == m.cursor && m.focus == focusList {
			cursor = "> "
		}
		text := fmt.Sprintf("%d. %s", i+1, q.Question)
		switch {
		case i == m.snap.Selected:
			text = StyleSelected.Render(text)
		case m.snap.Skipped[i]:
			text = StyleSkipped.Render(text) + StyleSubtle.Render(" (skipped)")
		}
		b.WriteString(cursor + text + "  " + StyleSubtle.Render(q.Label()) + "\n")
	}
	return b.String()
}

func (m SessionModel) panel(f focus, title, body string) string {
	style := StylePanel
	if m.focus == f {
		style = StyleFocused
	}
	return style.Render(StyleSubtle.Render(title) + "\n" + body)
}

func (m SessionModel) footer() string {
	if !m.help {
		return StyleSubtle.Render("tab focus · enter select · g generate · ctrl+r submit · ? help · q quit")
	}
	lines := []string{
		"j/k      move between questions",
		"enter    select question",
		"s        skip question",
		"g        generate a new batch of questions",
		"ctrl+r   submit answer",
		"ctrl+d   start/stop dictation",
		"o / l    generate / load story outline",
		"ctrl+s   save outline (outline focused)",
		"E        end session",
		"esc      back to the list",
	}
	return StyleSubtle.Render(strings.Join(lines, "\n"))
}

func busyLabel(op session.Operation) string {
	switch op {
	case session.OpGenerateQuestions:
		return "Generating questions..."
	case session.OpSubmitAnswer:
		return "Evaluating answer..."
	case session.OpGenerateOutline:
		return "Drafting outline..."
	case session.OpLoadOutline:
		return "Loading outline..."
	case session.OpSaveOutline:
		return "Saving outline..."
	case session.OpEndSession:
		return "Ending session..."
	case session.OpLoad:
		return "Loading session..."
	}
	return "Working..."
}

// Run shows the session screen until the user quits.
func Run(ctx context.Context, ctrl *session.Controller, dict *dictation.Adapter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewSessionModel(ctx, ctrl, dict), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
