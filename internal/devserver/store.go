package devserver

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/interview-prep/studyclient/internal/models"
)

var (
	errNotFound      = errors.New("not found")
	errRefineLimited = errors.New("refine limited")
	errNoPlan        = errors.New("no plan")
	errSessionEnded  = errors.New("session already ended")
)

type topicRecord struct {
	ID              int64
	Name            string
	Description     string
	Priority        int
	DailyMinutes    int
	ExpectedOutcome string
}

type progressRecord struct {
	StrengthRating *int
	TotalTimeSpent int
	ScoredSessions int
}

type sessionRecord struct {
	ID              int64
	UserID          string
	TopicID         int64
	TopicName       string
	PlannedDuration int
	StartTime       time.Time
	LastInteraction time.Time
	EndTime         *time.Time
}

type questionRecord struct {
	ID      int64
	UserID  string
	TopicID int64
	Text    string
}

type attemptRecord struct {
	SessionID  int64
	QuestionID int64
	Answer     string
	Score      int
	AnswerTime *int
}

type storyRecord struct {
	ID         int64
	QuestionID int64
	Text       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type userRecord struct {
	Role           string
	ContextText    string
	Topics         []topicRecord
	Progress       map[string]progressRecord // keyed by topic name, survives re-approval
	LastRefineDate string
}

// Store keeps all development server state in memory.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	nextID    int64
	users     map[string]*userRecord
	sessions  map[int64]*sessionRecord
	questions map[int64]*questionRecord
	attempts  []attemptRecord
	stories   map[int64]*storyRecord
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[string]*userRecord),
		sessions:  make(map[int64]*sessionRecord),
		questions: make(map[int64]*questionRecord),
		stories:   make(map[int64]*storyRecord),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) user(userID string) *userRecord {
	u, ok := s.users[userID]
	if !ok {
		u = &userRecord{Progress: make(map[string]progressRecord)}
		s.users[userID] = u
	}
	return u
}

func (s *Store) ownedSession(userID string, id int64) (*sessionRecord, error) {
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		return nil, errNotFound
	}
	return sess, nil
}

func sessionResponse(sess *sessionRecord) models.StudySession {
	out := models.StudySession{
		ID:              sess.ID,
		TopicID:         sess.TopicID,
		PlannedDuration: sess.PlannedDuration,
		StartTime:       models.NewTimestamp(sess.StartTime),
	}
	last := models.NewTimestamp(sess.LastInteraction)
	out.LastInteractionTime = &last
	if sess.EndTime != nil {
		end := models.NewTimestamp(*sess.EndTime)
		out.EndTime = &end
	}
	return out
}

// ── Plan ─────────────────────────────────────────────────

func (s *Store) Role(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).Role
}

func (s *Store) ApprovePlan(userID string, plan models.Plan) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if plan.Overview.TargetRole != "" {
		u.Role = plan.Overview.TargetRole
	}
	u.Topics = u.Topics[:0]
	ids := make([]int64, 0, len(plan.Topics))
	for _, t := range plan.Topics {
		rec := topicRecord{
			ID:              s.id(),
			Name:            t.Name,
			Description:     t.Description,
			Priority:        t.Priority,
			DailyMinutes:    t.DailyStudyMinutes,
			ExpectedOutcome: t.ExpectedOutcome,
		}
		u.Topics = append(u.Topics, rec)
		ids = append(ids, rec.ID)
	}
	return ids
}

func (s *Store) ViewPlan(userID string) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if len(u.Topics) == 0 {
		return nil, errNoPlan
	}

	topics := append([]topicRecord(nil), u.Topics...)
	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].Priority != topics[j].Priority {
			return topics[i].Priority < topics[j].Priority
		}
		return topics[i].ID < topics[j].ID
	})

	role := u.Role
	if role == "" {
		role = "Interview Candidate"
	}
	plan := &models.Plan{
		Overview: models.PlanOverview{
			TargetRole:       role,
			TimeHorizonWeeks: 8,
			Rationale:        "Study plan loaded from your saved topics.",
		},
	}
	for _, t := range topics {
		id := t.ID
		pt := models.PlanTopic{
			Name:              t.Name,
			Description:       t.Description,
			Priority:          t.Priority,
			DailyStudyMinutes: t.DailyMinutes,
			ExpectedOutcome:   t.ExpectedOutcome,
			TopicID:           &id,
		}
		if p, ok := u.Progress[t.Name]; ok {
			pt.Progress = &models.TopicProgress{StrengthRating: p.StrengthRating, TotalTimeSpent: p.TotalTimeSpent}
		}
		plan.Overview.TotalDailyMinutes += t.DailyMinutes
		plan.Topics = append(plan.Topics, pt)
	}
	return plan, nil
}

func (s *Store) CanRefine(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).LastRefineDate != s.today()
}

// MarkRefined records today's refinement, failing if one already happened.
func (s *Store) MarkRefined(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if u.LastRefineDate == s.today() {
		return errRefineLimited
	}
	u.LastRefineDate = s.today()
	return nil
}

func (s *Store) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *Store) UserContext(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user(userID).ContextText
}

func (s *Store) SetUserContext(userID, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user(userID).ContextText = text
	return text
}

// ── Sessions ─────────────────────────────────────────────

func (s *Store) StartSession(userID string, topicID int64, planned int) (models.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	var topic *topicRecord
	for i := range u.Topics {
		if u.Topics[i].ID == topicID {
			topic = &u.Topics[i]
			break
		}
	}
	if topic == nil {
		return models.StudySession{}, errNotFound
	}

	now := s.now()
	sess := &sessionRecord{
		ID:              s.id(),
		UserID:          userID,
		TopicID:         topic.ID,
		TopicName:       topic.Name,
		PlannedDuration: planned,
		StartTime:       now,
		LastInteraction: now,
	}
	s.sessions[sess.ID] = sess
	return sessionResponse(sess), nil
}

func (s *Store) Session(userID string, id int64) (models.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ownedSession(userID, id)
	if err != nil {
		return models.StudySession{}, err
	}
	return sessionResponse(sess), nil
}

// TopicStrength returns the topic's strength rating, nil until a scored
// session has ended.
func (s *Store) TopicStrength(userID, topicName string) *int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.user(userID).Progress[topicName]
	if !ok || p.StrengthRating == nil {
		return nil
	}
	v := *p.StrengthRating
	return &v
}

// SessionTopic returns the topic a session practices, for content generation.
func (s *Store) SessionTopic(userID string, id int64) (topicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ownedSession(userID, id)
	if err != nil {
		return topicRecord{}, err
	}
	for _, t := range s.user(userID).Topics {
		if t.ID == sess.TopicID {
			return t, nil
		}
	}
	return topicRecord{ID: sess.TopicID, Name: sess.TopicName}, nil
}

// EndSession stamps the end time and folds the session's attempts into the
// topic's progress.
func (s *Store) EndSession(userID string, id int64) (models.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ownedSession(userID, id)
	if err != nil {
		return models.StudySession{}, err
	}
	if sess.EndTime != nil {
		return models.StudySession{}, errSessionEnded
	}
	now := s.now()
	sess.EndTime = &now
	sess.LastInteraction = now

	var total, count int
	for _, a := range s.attempts {
		if a.SessionID == id {
			total += a.Score
			count++
		}
	}

	u := s.user(userID)
	p := u.Progress[sess.TopicName]
	if count > 0 {
		strength := nextStrength(p.StrengthRating, float64(total)/float64(count), p.ScoredSessions)
		p.StrengthRating = &strength
		p.ScoredSessions++
	}
	p.TotalTimeSpent += sess.PlannedDuration
	u.Progress[sess.TopicName] = p

	return sessionResponse(sess), nil
}

func (s *Store) ListSessions(userID string, limit, offset int, topicID *int64) []models.SessionRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*sessionRecord
	for _, sess := range s.sessions {
		if sess.UserID != userID {
			continue
		}
		if topicID != nil && sess.TopicID != *topicID {
			continue
		}
		matched = append(matched, sess)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].StartTime.After(matched[j].StartTime)
		}
		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return []models.SessionRow{}
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	rows := make([]models.SessionRow, 0, len(matched))
	for _, sess := range matched {
		start := models.NewTimestamp(sess.StartTime)
		row := models.SessionRow{
			ID:              sess.ID,
			TopicID:         sess.TopicID,
			TopicName:       sess.TopicName,
			StartTime:       &start,
			PlannedDuration: sess.PlannedDuration,
		}
		if sess.EndTime != nil {
			end := models.NewTimestamp(*sess.EndTime)
			row.EndTime = &end
		}
		var total int
		for _, a := range s.attempts {
			if a.SessionID == sess.ID {
				total += a.Score
				row.QuestionsAnswered++
			}
		}
		if row.QuestionsAnswered > 0 {
			avg := float64(total) / float64(row.QuestionsAnswered)
			row.AverageScore = &avg
		}
		rows = append(rows, row)
	}
	return rows
}

// SuggestSession picks the least practiced topic, breaking ties by priority.
func (s *Store) SuggestSession(userID string) (models.SuggestedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	if len(u.Topics) == 0 {
		return models.SuggestedSession{}, errNoPlan
	}

	best := u.Topics[0]
	for _, t := range u.Topics[1:] {
		bt, tt := u.Progress[best.Name].TotalTimeSpent, u.Progress[t.Name].TotalTimeSpent
		if tt < bt || (tt == bt && t.Priority < best.Priority) {
			best = t
		}
	}

	reason := "You haven't practiced this topic yet."
	if spent := u.Progress[best.Name].TotalTimeSpent; spent > 0 {
		reason = "This is your least practiced topic so far."
	}
	return models.SuggestedSession{
		TopicID:          best.ID,
		TopicName:        best.Name,
		PlannedStudyTime: best.DailyMinutes,
		Reason:           reason,
	}, nil
}

// ── Questions & stories ──────────────────────────────────

// RecordQuestions stores a generated batch and assigns ids.
func (s *Store) RecordQuestions(userID string, sessionID int64, batch []models.Question) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.LastInteraction = s.now()

	out := make([]models.Question, len(batch))
	for i, q := range batch {
		rec := s.questionByText(userID, sess.TopicID, q.Question)
		id := rec.ID
		q.ID = &id
		out[i] = q
	}
	return out, nil
}

func (s *Store) questionByText(userID string, topicID int64, text string) *questionRecord {
	for _, q := range s.questions {
		if q.UserID == userID && q.TopicID == topicID && q.Text == text {
			return q
		}
	}
	rec := &questionRecord{ID: s.id(), UserID: userID, TopicID: topicID, Text: text}
	s.questions[rec.ID] = rec
	return rec
}

func (s *Store) RecordAttempt(userID string, sessionID int64, questionText, answer string, score int, answerTime *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return err
	}
	sess.LastInteraction = s.now()
	q := s.questionByText(userID, sess.TopicID, questionText)
	s.attempts = append(s.attempts, attemptRecord{
		SessionID:  sessionID,
		QuestionID: q.ID,
		Answer:     answer,
		Score:      score,
		AnswerTime: answerTime,
	})
	return nil
}

func (s *Store) CreateStory(userID string, sessionID int64, questionText, text string) (models.GenerateStoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return models.GenerateStoryResponse{}, err
	}
	q := s.questionByText(userID, sess.TopicID, questionText)
	now := s.now()
	story := &storyRecord{ID: s.id(), QuestionID: q.ID, Text: text, CreatedAt: now, UpdatedAt: now}
	s.stories[story.ID] = story
	return models.GenerateStoryResponse{QuestionID: q.ID, StoryID: story.ID, StructureText: text}, nil
}

// StoryForQuestion returns the most recently created story for a question.
func (s *Store) StoryForQuestion(userID string, questionID int64) (models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[questionID]
	if !ok || q.UserID != userID {
		return models.Story{}, errNotFound
	}
	var latest *storyRecord
	for _, st := range s.stories {
		if st.QuestionID == questionID && (latest == nil || st.ID > latest.ID) {
			latest = st
		}
	}
	if latest == nil {
		return models.Story{}, errNotFound
	}
	return storyResponse(latest), nil
}

func (s *Store) UpdateStory(userID string, storyID int64, text string) (models.Story, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stories[storyID]
	if !ok {
		return models.Story{}, errNotFound
	}
	if q, ok := s.questions[st.QuestionID]; !ok || q.UserID != userID {
		return models.Story{}, errNotFound
	}
	st.Text = text
	st.UpdatedAt = s.now()
	return storyResponse(st), nil
}

func storyResponse(st *storyRecord) models.Story {
	return models.Story{
		ID:            st.ID,
		QuestionID:    st.QuestionID,
		StructureText: st.Text,
		CreatedAt:     models.NewTimestamp(st.CreatedAt),
		UpdatedAt:     models.NewTimestamp(st.UpdatedAt),
	}
}

type previousAttempt struct {
	Text      string
	BestScore int
}

// PreviouslyAsked lists the topic's attempted questions with their best score.
func (s *Store) PreviouslyAsked(userID string, topicID int64) []previousAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	best := make(map[int64]int)
	for _, a := range s.attempts {
		if cur, ok := best[a.QuestionID]; !ok || a.Score > cur {
			best[a.QuestionID] = a.Score
		}
	}
	var out []previousAttempt
	for id, score := range best {
		q := s.questions[id]
		if q != nil && q.UserID == userID && q.TopicID == topicID {
			out = append(out, previousAttempt{Text: q.Text, BestScore: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}
