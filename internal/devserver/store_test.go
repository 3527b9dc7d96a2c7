package devserver

import (
	"errors"
	"testing"
	"time"

	"github.com/interview-prep/studyclient/internal/models"
)

func newTestStore() (*Store, *time.Time) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }
	return s, &now
}

func samplePlan() models.Plan {
	return models.Plan{
		Overview: models.PlanOverview{TargetRole: "Backend Engineer"},
		Topics: []models.PlanTopic{
			{Name: "System design", Priority: 2, DailyStudyMinutes: 30},
			{Name: "Behavioral stories", Priority: 1, DailyStudyMinutes: 20},
		},
	}
}

func TestStore_ApproveAndView(t *testing.T) {
	s, _ := newTestStore()

	if _, err := s.ViewPlan("u1"); !errors.Is(err, errNoPlan) {
		t.Fatalf("expected errNoPlan, got %v", err)
	}

	ids := s.ApprovePlan("u1", samplePlan())
	if len(ids) != 2 {
		t.Fatalf("expected 2 topic ids, got %d", len(ids))
	}

	p, err := s.ViewPlan("u1")
	if err != nil {
		t.Fatalf("ViewPlan: %v", err)
	}
	if p.Topics[0].Name != "Behavioral stories" {
		t.Errorf("expected priority order, got %q first", p.Topics[0].Name)
	}
	if p.Overview.TotalDailyMinutes != 50 {
		t.Errorf("expected 50 total minutes, got %d", p.Overview.TotalDailyMinutes)
	}
	if s.Role("u1") != "Backend Engineer" {
		t.Errorf("expected role stored, got %q", s.Role("u1"))
	}

	if _, err := s.ViewPlan("u2"); !errors.Is(err, errNoPlan) {
		t.Errorf("expected plans to be per user, got %v", err)
	}
}

func TestStore_RefineOncePerDay(t *testing.T) {
	s, now := newTestStore()

	if !s.CanRefine("u1") {
		t.Fatalf("expected refinement allowed")
	}
	if err := s.MarkRefined("u1"); err != nil {
		t.Fatalf("MarkRefined: %v", err)
	}
	if s.CanRefine("u1") {
		t.Errorf("expected refinement used")
	}
	if err := s.MarkRefined("u1"); !errors.Is(err, errRefineLimited) {
		t.Errorf("expected errRefineLimited, got %v", err)
	}

	*now = now.Add(24 * time.Hour)
	if !s.CanRefine("u1") {
		t.Errorf("expected refinement allowed the next day")
	}
}

func TestStore_EndSessionReconcilesProgress(t *testing.T) {
	s, now := newTestStore()
	ids := s.ApprovePlan("u1", samplePlan())

	sess, err := s.StartSession("u1", ids[0], 30)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if err := s.RecordAttempt("u1", sess.ID, "Q1", "answer", 6, nil); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if err := s.RecordAttempt("u1", sess.ID, "Q2", "answer", 8, nil); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	*now = now.Add(25 * time.Minute)
	ended, err := s.EndSession("u1", sess.ID)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if !ended.Ended() {
		t.Errorf("expected end time set")
	}
	if _, err := s.EndSession("u1", sess.ID); !errors.Is(err, errSessionEnded) {
		t.Errorf("expected errSessionEnded, got %v", err)
	}

	p, err := s.ViewPlan("u1")
	if err != nil {
		t.Fatalf("ViewPlan: %v", err)
	}
	var progress *models.TopicProgress
	for _, topic := range p.Topics {
		if topic.Name == "System design" {
			progress = topic.Progress
		}
	}
	if progress == nil || progress.StrengthRating == nil {
		t.Fatalf("expected progress for System design, got %+v", progress)
	}
	if *progress.StrengthRating != 7 || progress.TotalTimeSpent != 30 {
		t.Errorf("expected strength 7 and 30 min, got %d and %d", *progress.StrengthRating, progress.TotalTimeSpent)
	}

	rows := s.ListSessions("u1", 30, 0, nil)
	if len(rows) != 1 || rows[0].QuestionsAnswered != 2 || *rows[0].AverageScore != 7 {
		t.Errorf("unexpected history %+v", rows)
	}
}

func TestStore_SessionOwnership(t *testing.T) {
	s, _ := newTestStore()
	ids := s.ApprovePlan("u1", samplePlan())
	sess, err := s.StartSession("u1", ids[0], 15)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	if _, err := s.Session("u2", sess.ID); !errors.Is(err, errNotFound) {
		t.Errorf("expected other users to get errNotFound, got %v", err)
	}
	if _, err := s.StartSession("u1", 9999, 15); !errors.Is(err, errNotFound) {
		t.Errorf("expected unknown topic to fail, got %v", err)
	}
}

func TestStore_ListSessionsPaging(t *testing.T) {
	s, now := newTestStore()
	ids := s.ApprovePlan("u1", samplePlan())

	for i := 0; i < 3; i++ {
		if _, err := s.StartSession("u1", ids[i%2], 10); err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		*now = now.Add(time.Hour)
	}

	all := s.ListSessions("u1", 0, 0, nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if !all[0].StartTime.After(all[1].StartTime.Time) {
		t.Errorf("expected newest first")
	}
	if got := s.ListSessions("u1", 1, 1, nil); len(got) != 1 || got[0].ID != all[1].ID {
		t.Errorf("expected second newest for limit 1 offset 1, got %+v", got)
	}
	if got := s.ListSessions("u1", 10, 5, nil); len(got) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(got))
	}
	topic := ids[1]
	if got := s.ListSessions("u1", 0, 0, &topic); len(got) != 1 {
		t.Errorf("expected 1 session for topic filter, got %d", len(got))
	}
}

func TestStore_SuggestSession(t *testing.T) {
	s, _ := newTestStore()
	if _, err := s.SuggestSession("u1"); !errors.Is(err, errNoPlan) {
		t.Fatalf("expected errNoPlan, got %v", err)
	}

	ids := s.ApprovePlan("u1", samplePlan())
	sugg, err := s.SuggestSession("u1")
	if err != nil {
		t.Fatalf("SuggestSession: %v", err)
	}
	if sugg.TopicName != "Behavioral stories" {
		t.Errorf("expected highest priority untouched topic, got %q", sugg.TopicName)
	}

	sess, _ := s.StartSession("u1", ids[1], 20)
	if _, err := s.EndSession("u1", sess.ID); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	sugg, _ = s.SuggestSession("u1")
	if sugg.TopicName != "System design" {
		t.Errorf("expected least practiced topic, got %q", sugg.TopicName)
	}
}

func TestStore_StoriesAndQuestionIDs(t *testing.T) {
	s, _ := newTestStore()
	ids := s.ApprovePlan("u1", samplePlan())
	sess, _ := s.StartSession("u1", ids[0], 20)

	batch, err := s.RecordQuestions("u1", sess.ID, []models.Question{{Question: "Q1"}, {Question: "Q1"}, {Question: "Q2"}})
	if err != nil {
		t.Fatalf("RecordQuestions: %v", err)
	}
	if *batch[0].ID != *batch[1].ID || *batch[0].ID == *batch[2].ID {
		t.Errorf("expected ids stable per question text, got %d %d %d", *batch[0].ID, *batch[1].ID, *batch[2].ID)
	}

	gen, err := s.CreateStory("u1", sess.ID, "Q1", "outline")
	if err != nil {
		t.Fatalf("CreateStory: %v", err)
	}
	if gen.QuestionID != *batch[0].ID {
		t.Errorf("expected story bound to question %d, got %d", *batch[0].ID, gen.QuestionID)
	}
	if _, err := s.UpdateStory("u2", gen.StoryID, "hijack"); !errors.Is(err, errNotFound) {
		t.Errorf("expected other users blocked, got %v", err)
	}
	if _, err := s.UpdateStory("u1", gen.StoryID, "edited"); err != nil {
		t.Fatalf("UpdateStory: %v", err)
	}
	story, err := s.StoryForQuestion("u1", gen.QuestionID)
	if err != nil {
		t.Fatalf("StoryForQuestion: %v", err)
	}
	if story.StructureText != "edited" {
		t.Errorf("expected edited outline, got %q", story.StructureText)
	}
	if _, err := s.StoryForQuestion("u1", *batch[2].ID); !errors.Is(err, errNotFound) {
		t.Errorf("expected no story for Q2, got %v", err)
	}
}

func TestStore_PreviouslyAskedKeepsBestScore(t *testing.T) {
	s, _ := newTestStore()
	ids := s.ApprovePlan("u1", samplePlan())
	sess, _ := s.StartSession("u1", ids[0], 20)

	s.RecordAttempt("u1", sess.ID, "Q1", "a", 3, nil)
	s.RecordAttempt("u1", sess.ID, "Q1", "b", 6, nil)
	s.RecordAttempt("u1", sess.ID, "Q2", "c", 9, nil)

	got := s.PreviouslyAsked("u1", ids[0])
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got[0].Text != "Q1" || got[0].BestScore != 6 {
		t.Errorf("expected Q1 best 6, got %+v", got[0])
	}
}
