package devserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/interview-prep/studyclient/internal/models"
)

// The dev server never calls a model; every coaching response below is
// canned and marked "[Mock]" so it is obvious in the UI.

var questionTemplates = []struct {
	text       string
	difficulty models.Difficulty
}{
	{"Give a short overview of how you approach %s.", models.DifficultyEasy},
	{"Tell me about a time %s went wrong on your team and what you did about it.", models.DifficultyMedium},
	{"Walk me through the hardest %s problem you have solved end to end.", models.DifficultyHard},
	{"How would you explain the trade-offs in %s to a new teammate?", models.DifficultyMedium},
	{"Describe a decision about %s you would make differently today.", models.DifficultyHard},
}

const batchSize = 5

func mockQuestions(topic topicRecord, strength *int, previous []previousAttempt) []models.Question {
	var out []models.Question

	// Weak or borderline answers come back first.
	sort.SliceStable(previous, func(i, j int) bool { return previous[i].BestScore < previous[j].BestScore })
	for _, p := range previous {
		if len(out) == 2 {
			break
		}
		var reason models.RedoReason
		switch {
		case p.BestScore < 5:
			reason = models.RedoWeakAnswer
		case p.BestScore < 7:
			reason = models.RedoIncomplete
		default:
			continue
		}
		out = append(out, models.Question{
			Question:   p.Text,
			Status:     models.StatusRedo,
			RedoReason: &reason,
			Difficulty: models.DifficultyMedium,
		})
	}

	name := strings.ToLower(topic.Name)
	if name == "" {
		name = "this topic"
	}
	// New questions lead with the difficulty that matches the topic's strength.
	target := targetDifficulty(strength)
	templates := append(questionTemplates[:0:0], questionTemplates...)
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].difficulty == target && templates[j].difficulty != target
	})
	for _, tpl := range templates {
		if len(out) == batchSize {
			break
		}
		out = append(out, models.Question{
			Question:   fmt.Sprintf(tpl.text, name),
			Status:     models.StatusNew,
			Difficulty: tpl.difficulty,
		})
	}
	return out
}

// scoreAnswer rates length and structure; it only needs to be stable.
func scoreAnswer(answer string) int {
	words := len(strings.Fields(answer))
	score := 2
	switch {
	case words >= 120:
		score = 8
	case words >= 60:
		score = 7
	case words >= 25:
		score = 5
	case words >= 8:
		score = 4
	}
	lower := strings.ToLower(answer)
	for _, marker := range []string{"result", "impact", "learned"} {
		if strings.Contains(lower, marker) {
			score++
			break
		}
	}
	if score > 10 {
		score = 10
	}
	return score
}

func mockEvaluation(question, answer string, answerTime *int) models.EvaluationResult {
	score := scoreAnswer(answer)
	result := models.EvaluationResult{
		Score:            score,
		PositiveFeedback: []string{},
		ImprovementAreas: []string{},
		Anchors: []models.Anchor{
			{Name: "STAR", Anchor: "Situation, Task, Action, Result: land every story on the result."},
		},
	}

	if score >= 5 {
		result.PositiveFeedback = append(result.PositiveFeedback, "[Mock] The answer gives enough detail to follow your reasoning.")
	} else {
		result.ImprovementAreas = append(result.ImprovementAreas, "[Mock] Add concrete detail: who was involved, what you did, what changed.")
	}
	if !strings.Contains(strings.ToLower(answer), "result") {
		result.ImprovementAreas = append(result.ImprovementAreas, "[Mock] Close with a measurable result.")
	} else {
		result.PositiveFeedback = append(result.PositiveFeedback, "[Mock] You closed with an outcome.")
	}
	if answerTime != nil && *answerTime > 180 {
		result.ImprovementAreas = append(result.ImprovementAreas, "[Mock] Aim to deliver this answer in under three minutes.")
	}
	if question != "" {
		result.Anchors = append(result.Anchors, models.Anchor{
			Name:   "Hook",
			Anchor: "Open with one sentence that answers: " + question,
		})
	}
	return result
}

func mockStory(question string) string {
	return strings.Join([]string{
		"Question: " + question,
		"",
		"Situation: [Mock] Where and when did this happen? Who was involved?",
		"Task: [Mock] What were you responsible for?",
		"Action: [Mock] Three concrete steps you took, in order.",
		"Result: [Mock] The measurable outcome and what you learned.",
	}, "\n")
}

var defaultTopics = []string{"Behavioral stories", "System design", "Coding fundamentals"}

func mockPlan(req models.SuggestNewPlanRequest) models.Plan {
	daily := 60
	if req.TimeAvailableMinutes != nil && *req.TimeAvailableMinutes > 0 {
		daily = *req.TimeAvailableMinutes
	}

	names := append([]string(nil), req.WeakAreas...)
	for _, d := range defaultTopics {
		if len(names) >= 4 {
			break
		}
		if !containsFold(names, d) {
			names = append(names, d)
		}
	}

	horizon := 6
	switch req.MotivationLevel {
	case models.MotivationLow:
		horizon = 10
	case models.MotivationHigh:
		horizon = 4
	}

	plan := models.Plan{
		Overview: models.PlanOverview{
			TargetRole:        req.Role,
			TotalDailyMinutes: daily,
			TimeHorizonWeeks:  horizon,
			Rationale:         "[Mock] Weak areas come first; the remaining time covers core interview topics.",
		},
	}
	per := daily / len(names)
	if per < 5 {
		per = 5
	}
	for i, name := range names {
		plan.Topics = append(plan.Topics, models.PlanTopic{
			Name:              name,
			Description:       fmt.Sprintf("[Mock] Practice %s for a %s interview.", strings.ToLower(name), req.Role),
			Priority:          i + 1,
			DailyStudyMinutes: per,
			ExpectedOutcome:   fmt.Sprintf("[Mock] Answer %s questions confidently.", strings.ToLower(name)),
		})
	}
	return plan
}

// mockPlanChanges shifts five minutes a day from the strongest topic to the
// weakest one and moves the weakest topic to the top.
func mockPlanChanges(req models.SuggestChangesRequest) models.Plan {
	plan := req.CurrentPlan
	plan.Topics = append([]models.PlanTopic(nil), req.CurrentPlan.Topics...)
	if len(plan.Topics) == 0 {
		return plan
	}

	strength := func(t models.PlanTopic) int {
		if t.Progress != nil && t.Progress.StrengthRating != nil {
			return *t.Progress.StrengthRating
		}
		if req.CurrentProgress != nil {
			for _, p := range req.CurrentProgress.Topics {
				if p.TopicName == t.Name && p.StrengthRating != nil {
					return *p.StrengthRating
				}
			}
		}
		return 5
	}

	weak, strong := 0, 0
	for i, t := range plan.Topics {
		if strength(t) < strength(plan.Topics[weak]) {
			weak = i
		}
		if strength(t) > strength(plan.Topics[strong]) {
			strong = i
		}
	}
	if weak != strong && plan.Topics[strong].DailyStudyMinutes > 10 {
		plan.Topics[strong].DailyStudyMinutes -= 5
		plan.Topics[weak].DailyStudyMinutes += 5
	}
	weakPriority := plan.Topics[weak].Priority
	for i := range plan.Topics {
		switch {
		case i == weak:
			plan.Topics[i].Priority = 1
		case plan.Topics[i].Priority < weakPriority:
			plan.Topics[i].Priority++
		}
		plan.Topics[i].Progress = nil
	}
	plan.Overview.Rationale = "[Mock] Shifted time toward " + plan.Topics[weak].Name + ", your weakest topic."
	return plan
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
