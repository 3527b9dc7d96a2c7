package models

// StudySession is the server's record of one timed practice interval.
type StudySession struct {
	ID                  int64      `json:"id"`
	TopicID             int64      `json:"topic_id"`
	PlannedDuration     int        `json:"planned_duration"`
	StartTime           Timestamp  `json:"start_time"`
	LastInteractionTime *Timestamp `json:"last_interaction_time,omitempty"`
	EndTime             *Timestamp `json:"end_time,omitempty"`
}

// Ended reports whether the server has recorded an end time.
func (s StudySession) Ended() bool {
	return s.EndTime != nil && !s.EndTime.IsZero()
}

type StartSessionRequest struct {
	TopicID          int64 `json:"topic_id"`
	PlannedStudyTime int   `json:"planned_study_time"`
}

type SuggestedSession struct {
	TopicID          int64  `json:"topic_id"`
	TopicName        string `json:"topic_name"`
	PlannedStudyTime int    `json:"planned_study_time"`
	Reason           string `json:"reason"`
}

// SessionRow is one entry of the session history listing.
type SessionRow struct {
	ID                int64      `json:"id"`
	TopicID           int64      `json:"topic_id"`
	TopicName         string     `json:"topic_name"`
	StartTime         *Timestamp `json:"start_time"`
	EndTime           *Timestamp `json:"end_time"`
	PlannedDuration   int        `json:"planned_duration"`
	QuestionsAnswered int        `json:"questions_answered"`
	AverageScore      *float64   `json:"average_score"`
}

type SessionListRequest struct {
	Limit   int
	Offset  int
	TopicID *int64
}

type SessionListResponse struct {
	Sessions []SessionRow `json:"sessions"`
}

// Ack is the loose acknowledgement body returned by mutating endpoints.
type Ack struct {
	Status   string  `json:"status,omitempty"`
	Message  string  `json:"message,omitempty"`
	TopicIDs []int64 `json:"topic_ids,omitempty"`
}
