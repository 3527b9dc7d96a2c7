package devserver

import (
	"strings"
	"testing"

	"github.com/interview-prep/studyclient/internal/models"
)

func TestMockQuestions_RedoFirst(t *testing.T) {
	previous := []previousAttempt{
		{Text: "Strong one", BestScore: 9},
		{Text: "Partial one", BestScore: 6},
		{Text: "Weak one", BestScore: 2},
	}
	got := mockQuestions(topicRecord{Name: "System design"}, nil, previous)

	if len(got) != batchSize {
		t.Fatalf("expected %d questions, got %d", batchSize, len(got))
	}
	if got[0].Question != "Weak one" || got[0].Status != models.StatusRedo || *got[0].RedoReason != models.RedoWeakAnswer {
		t.Errorf("expected weak redo first, got %+v", got[0])
	}
	if got[1].Question != "Partial one" || *got[1].RedoReason != models.RedoIncomplete {
		t.Errorf("expected incomplete redo second, got %+v", got[1])
	}
	for _, q := range got[2:] {
		if q.Status != models.StatusNew || !strings.Contains(q.Question, "system design") {
			t.Errorf("expected new topic question, got %+v", q)
		}
	}
}

func TestScoreAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"empty", "", 2},
		{"short", "I fixed the bug quickly and moved on today", 4},
		{"short with result", "I fixed the bug and the result was fewer pages", 5},
		{"long", strings.Repeat("word ", 130), 8},
		{"long with impact", strings.Repeat("word ", 130) + "impact", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreAnswer(tt.answer); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMockEvaluation(t *testing.T) {
	slow := 240
	got := mockEvaluation("Tell me about a conflict", "short answer", &slow)

	if got.Score < 0 || got.Score > 10 {
		t.Errorf("expected score in range, got %d", got.Score)
	}
	if len(got.ImprovementAreas) < 2 {
		t.Errorf("expected detail and timing feedback, got %v", got.ImprovementAreas)
	}
	if len(got.Anchors) != 2 || got.Anchors[1].Name != "Hook" {
		t.Errorf("expected STAR and Hook anchors, got %+v", got.Anchors)
	}
}

func TestMockPlan(t *testing.T) {
	minutes := 40
	p := mockPlan(models.SuggestNewPlanRequest{
		Role:                 "SRE",
		TimeAvailableMinutes: &minutes,
		WeakAreas:            []string{"Incident response", "system design"},
		MotivationLevel:      models.MotivationLow,
	})

	if p.Overview.TotalDailyMinutes != 40 || p.Overview.TimeHorizonWeeks != 10 {
		t.Errorf("unexpected overview %+v", p.Overview)
	}
	if p.Topics[0].Name != "Incident response" || p.Topics[0].Priority != 1 {
		t.Errorf("expected weak area first, got %+v", p.Topics[0])
	}
	seen := map[string]int{}
	for _, topic := range p.Topics {
		seen[strings.ToLower(topic.Name)]++
	}
	if seen["system design"] != 1 {
		t.Errorf("expected default topic not duplicated, got %v", seen)
	}
}

func TestMockPlanChanges(t *testing.T) {
	weak, strong := 3, 9
	current := models.Plan{Topics: []models.PlanTopic{
		{Name: "Coding", Priority: 1, DailyStudyMinutes: 30, Progress: &models.TopicProgress{StrengthRating: &strong}},
		{Name: "Design", Priority: 2, DailyStudyMinutes: 20, Progress: &models.TopicProgress{StrengthRating: &weak}},
	}}

	got := mockPlanChanges(models.SuggestChangesRequest{CurrentPlan: current})

	byName := map[string]models.PlanTopic{}
	for _, topic := range got.Topics {
		byName[topic.Name] = topic
	}
	if byName["Design"].Priority != 1 || byName["Design"].DailyStudyMinutes != 25 {
		t.Errorf("expected Design promoted with 25 min, got %+v", byName["Design"])
	}
	if byName["Coding"].Priority != 2 || byName["Coding"].DailyStudyMinutes != 25 {
		t.Errorf("expected Coding demoted with 25 min, got %+v", byName["Coding"])
	}
	if current.Topics[0].DailyStudyMinutes != 30 {
		t.Errorf("expected input plan left untouched")
	}
}

func TestMockQuestions_LeadWithTargetDifficulty(t *testing.T) {
	strong := 9
	got := mockQuestions(topicRecord{Name: "Graphs"}, &strong, nil)
	if got[0].Difficulty != models.DifficultyHard || got[1].Difficulty != models.DifficultyHard {
		t.Errorf("expected hard questions first for a strong topic, got %s, %s", got[0].Difficulty, got[1].Difficulty)
	}

	weak := 1
	got = mockQuestions(topicRecord{Name: "Graphs"}, &weak, nil)
	if got[0].Difficulty != models.DifficultyEasy {
		t.Errorf("expected easy question first for a weak topic, got %s", got[0].Difficulty)
	}
}
