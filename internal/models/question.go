package models

import "strconv"

type QuestionStatus string

const (
	StatusNew  QuestionStatus = "new"
	StatusRedo QuestionStatus = "redo"
)

type RedoReason string

const (
	RedoWeakAnswer   RedoReason = "weak_answer"
	RedoIncomplete   RedoReason = "incomplete"
	RedoTimePressure RedoReason = "time_pressure"
	RedoHighValue    RedoReason = "high_value"
)

var ValidRedoReasons = map[RedoReason]bool{
	RedoWeakAnswer:   true,
	RedoIncomplete:   true,
	RedoTimePressure: true,
	RedoHighValue:    true,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is one generated practice question. ID is only present when the
// server assigns one; otherwise the question text is its identity.
type Question struct {
	ID         *int64         `json:"id,omitempty"`
	Question   string         `json:"question"`
	Status     QuestionStatus `json:"status"`
	RedoReason *RedoReason    `json:"redo_reason,omitempty"`
	Difficulty Difficulty     `json:"difficulty"`
}

// Key identifies the question within one session's outline cache.
func (q Question) Key() string {
	if q.ID != nil {
		return "id:" + strconv.FormatInt(*q.ID, 10)
	}
	return "text:" + q.Question
}

// Label renders "difficulty · status[ · reason]" for list rows.
func (q Question) Label() string {
	s := string(q.Difficulty) + " · " + string(q.Status)
	if q.RedoReason != nil {
		s += " · " + string(*q.RedoReason)
	}
	return s
}

// ── Evaluation ───────────────────────────────────────────

type Anchor struct {
	Name   string `json:"name"`
	Anchor string `json:"anchor"`
}

type EvaluationResult struct {
	Score            int      `json:"score"`
	PositiveFeedback []string `json:"positive_feedback"`
	ImprovementAreas []string `json:"improvement_areas"`
	Anchors          []Anchor `json:"anchors"`
}

// ── Request / Response Types ─────────────────────────────

type GenerateQuestionsResponse struct {
	Questions []Question `json:"questions"`
}

type EvaluateAnswerRequest struct {
	Question          string `json:"question"`
	RawAnswer         string `json:"raw_answer"`
	AnswerTimeSeconds *int   `json:"answer_time_seconds,omitempty"`
}

type GenerateStoryRequest struct {
	Question string `json:"question"`
}

type GenerateStoryResponse struct {
	QuestionID    int64  `json:"question_id"`
	StoryID       int64  `json:"story_id"`
	StructureText string `json:"structure_text"`
}

type Story struct {
	ID            int64     `json:"id"`
	QuestionID    int64     `json:"question_id"`
	StructureText string    `json:"structure_text"`
	CreatedAt     Timestamp `json:"created_at"`
	UpdatedAt     Timestamp `json:"updated_at"`
}

type UpdateStoryRequest struct {
	StructureText string `json:"structure_text"`
}
