package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interview-prep/studyclient/internal/models"
	"github.com/interview-prep/studyclient/internal/session"
)

type stubGateway struct {
	questions []models.Question
}

func (g *stubGateway) GetSession(ctx context.Context, id int64) (*models.StudySession, error) {
	return &models.StudySession{ID: id, PlannedDuration: 30, StartTime: models.NewTimestamp(time.Now())}, nil
}

func (g *stubGateway) EndSession(ctx context.Context, id int64) error { return nil }

func (g *stubGateway) GenerateQuestions(ctx context.Context, id int64) ([]models.Question, error) {
	return g.questions, nil
}

func (g *stubGateway) EvaluateAnswer(ctx context.Context, id int64, req models.EvaluateAnswerRequest) (*models.EvaluationResult, error) {
	return &models.EvaluationResult{Score: 9}, nil
}

func (g *stubGateway) GenerateStory(ctx context.Context, id int64, question string) (*models.GenerateStoryResponse, error) {
	return &models.GenerateStoryResponse{QuestionID: 1, StoryID: 2, StructureText: "Situation:"}, nil
}

func (g *stubGateway) GetStory(ctx context.Context, questionID int64) (*models.Story, error) {
	return &models.Story{ID: 2, QuestionID: questionID, StructureText: "Situation:"}, nil
}

func (g *stubGateway) UpdateStory(ctx context.Context, storyID int64, text string) error { return nil }

func newTestModel(t *testing.T) (SessionModel, *session.Controller) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gw := &stubGateway{questions: []models.Question{
		{Question: "Tell me about a conflict", Status: models.StatusNew, Difficulty: models.DifficultyMedium},
		{Question: "Describe a failure", Status: models.StatusNew, Difficulty: models.DifficultyHard},
	}}
	ctrl := session.NewController(11, gw)
	if err := ctrl.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ctrl.GenerateQuestions(ctx); err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}

	m := NewSessionModel(ctx, ctrl, nil)
	next, _ := m.Update(msgLoaded{})
	return next.(SessionModel), ctrl
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSessionModel_IgnoresActionsWhileLoading(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl := session.NewController(11, &stubGateway{})
	m := NewSessionModel(ctx, ctrl, nil)

	for _, k := range []string{"E", "g", "o", "l"} {
		if _, cmd := m.Update(key(k)); cmd != nil {
			t.Errorf("expected no command for %q while loading", k)
		}
	}
	if ctrl.Snapshot().Ended() {
		t.Errorf("expected session not ended while loading")
	}
}

func TestSessionModel_RendersQuestionsAndTimer(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(msgTick(session.TimerSnapshot{SessionKnown: true, SessionSeconds: 61, PlannedMinutes: 30}))
	view := next.(SessionModel).View()

	for _, want := range []string{"Study session #11", "1:01 / 30 min", "Tell me about a conflict", "hard · new"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestSessionModel_SelectAndSkip(t *testing.T) {
	m, ctrl := newTestModel(t)

	next, _ := m.Update(key("j"))
	next, _ = next.Update(key("enter"))
	m = next.(SessionModel)

	if got := ctrl.Snapshot().Selected; got != 1 {
		t.Fatalf("expected question 1 selected, got %d", got)
	}
	if m.focus != focusAnswer {
		t.Errorf("expected answer focus after select")
	}

	next, _ = m.Update(key("esc"))
	next, _ = next.Update(key("k"))
	next, _ = next.Update(key("s"))
	m = next.(SessionModel)
	if !ctrl.Snapshot().Skipped[0] {
		t.Errorf("expected question 0 skipped")
	}
	if !strings.Contains(m.View(), "(skipped)") {
		t.Errorf("expected skipped marker in view")
	}
}

func TestSessionModel_TypingUpdatesDraft(t *testing.T) {
	m, ctrl := newTestModel(t)

	next, _ := m.Update(key("enter"))
	next, _ = next.Update(key("hi"))
	_ = next

	if got := ctrl.Snapshot().Answer; got != "hi" {
		t.Errorf("expected draft 'hi', got %q", got)
	}
}

func TestSessionModel_DictationUnsupported(t *testing.T) {
	m, _ := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd != nil {
		t.Errorf("expected no command without dictation")
	}
	if !strings.Contains(next.(SessionModel).View(), "Dictation is not supported") {
		t.Errorf("expected unsupported notice")
	}
}

func TestRenderEvaluation(t *testing.T) {
	out := RenderEvaluation(models.EvaluationResult{
		Score:            7,
		PositiveFeedback: []string{"Clear structure"},
		ImprovementAreas: []string{"Quantify impact"},
		Anchors:          []models.Anchor{{Name: "STAR", Anchor: "Situation, task, action, result"}},
	})
	for _, want := range []string{"7/10", "Clear structure", "Quantify impact", "STAR: Situation"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestRunAction_NoDeadline(t *testing.T) {
	var hadDeadline bool
	cmd := runAction(context.Background(), session.OpSubmitAnswer, func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})
	msg, ok := cmd().(msgActionDone)
	if !ok {
		t.Fatalf("expected msgActionDone")
	}
	if msg.op != session.OpSubmitAnswer || msg.err != nil {
		t.Errorf("expected clean submit result, got %+v", msg)
	}
	if hadDeadline {
		t.Errorf("expected no deadline beyond the caller's context")
	}
}
