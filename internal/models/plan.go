package models

type PlanOverview struct {
	TargetRole        string `json:"target_role"`
	TotalDailyMinutes int    `json:"total_daily_minutes"`
	TimeHorizonWeeks  int    `json:"time_horizon_weeks"`
	Rationale         string `json:"rationale"`
}

type TopicProgress struct {
	StrengthRating *int `json:"strength_rating"`
	TotalTimeSpent int  `json:"total_time_spent"`
}

type PlanTopic struct {
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Priority          int            `json:"priority"`
	DailyStudyMinutes int            `json:"daily_study_minutes"`
	ExpectedOutcome   string         `json:"expected_outcome"`
	TopicID           *int64         `json:"topic_id,omitempty"`
	Progress          *TopicProgress `json:"progress,omitempty"`
}

type Plan struct {
	Overview PlanOverview `json:"plan_overview"`
	Topics   []PlanTopic  `json:"plan_topics"`
}

type MotivationLevel string

const (
	MotivationLow    MotivationLevel = "low"
	MotivationMedium MotivationLevel = "medium"
	MotivationHigh   MotivationLevel = "high"
)

var ValidMotivationLevels = map[MotivationLevel]bool{
	MotivationLow:    true,
	MotivationMedium: true,
	MotivationHigh:   true,
}

// ── Request Types ────────────────────────────────────────

type SuggestNewPlanRequest struct {
	Role                 string          `json:"role"`
	RawUserContext       string          `json:"raw_user_context"`
	TimeAvailableMinutes *int            `json:"time_available_minutes,omitempty"`
	WeakAreas            []string        `json:"weak_areas,omitempty"`
	MotivationLevel      MotivationLevel `json:"motivation_level,omitempty"`
}

type ProgressEntry struct {
	TopicName      string `json:"topic_name"`
	StrengthRating *int   `json:"strength_rating"`
	TotalTimeSpent int    `json:"total_time_spent"`
}

type PlanProgress struct {
	Topics []ProgressEntry `json:"topics"`
}

type SuggestChangesRequest struct {
	CurrentPlan     Plan             `json:"current_plan"`
	RawUserContext  string           `json:"raw_user_context"`
	CurrentProgress *PlanProgress    `json:"current_progress,omitempty"`
	UserFeedback    []map[string]any `json:"user_feedback,omitempty"`
}

type ApprovePlanRequest struct {
	Plan Plan `json:"plan"`
}

type CanRefineResponse struct {
	CanRefine bool `json:"can_refine"`
}

type UserContext struct {
	ContextText string `json:"context_text"`
}
