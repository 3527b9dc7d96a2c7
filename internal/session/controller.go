package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/interview-prep/studyclient/internal/api"
	"github.com/interview-prep/studyclient/internal/models"
)

var (
	ErrEnded        = errors.New("session has ended")
	ErrBusy         = errors.New("another session operation is in progress")
	ErrClosed       = errors.New("session view is closed")
	ErrNoSelection  = errors.New("select a question first")
	ErrEmptyAnswer  = errors.New("answer is empty")
	ErrNoOutline    = errors.New("no saved outline for this question")
	ErrInvalidIndex = errors.New("question index out of range")
	// ErrStale is returned when a result arrived after the selection it
	// belonged to was changed; the result is dropped.
	ErrStale = errors.New("result discarded: selection changed")
)

// Gateway is the slice of the API the controller talks to.
type Gateway interface {
	GetSession(ctx context.Context, sessionID int64) (*models.StudySession, error)
	EndSession(ctx context.Context, sessionID int64) error
	GenerateQuestions(ctx context.Context, sessionID int64) ([]models.Question, error)
	EvaluateAnswer(ctx context.Context, sessionID int64, req models.EvaluateAnswerRequest) (*models.EvaluationResult, error)
	GenerateStory(ctx context.Context, sessionID int64, question string) (*models.GenerateStoryResponse, error)
	GetStory(ctx context.Context, questionID int64) (*models.Story, error)
	UpdateStory(ctx context.Context, storyID int64, structureText string) error
}

type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseActive
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// OutlineRef points at the server-side story for one question.
type OutlineRef struct {
	QuestionID int64
	StoryID    int64
}

// Controller owns the in-memory state of one study session and mediates
// every session-scoped server call. It is safe for concurrent use; calls that
// reach the server hold the session's ActionLock for their duration.
type Controller struct {
	id     int64
	gw     Gateway
	timer  *Timer
	clock  Clock
	logger *log.Logger
	lock   ActionLock

	mu          sync.Mutex
	phase       Phase
	closed      bool
	questions   []models.Question
	selected    int
	epoch       uint64
	answer      string
	interim     string
	evaluation  *models.EvaluationResult
	skipped     map[int]bool
	outlines    map[string]OutlineRef
	outline     *OutlineRef
	outlineText string
	errOp       Operation
	errMsg      string
	notice      string
}

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewController(sessionID int64, gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		id:       sessionID,
		gw:       gw,
		clock:    SystemClock(),
		logger:   log.New(io.Discard, "", 0),
		selected: -1,
		skipped:  make(map[int]bool),
		outlines: make(map[string]OutlineRef),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.timer = NewTimer(c.clock)
	return c
}

func (c *Controller) SessionID() int64 { return c.id }

// Timer exposes the derived elapsed-time displays.
func (c *Controller) Timer() *Timer { return c.timer }

// begin checks the shared preconditions and takes the action lock. Callers
// hold c.mu.
func (c *Controller) begin(op Operation, mutating bool) error {
	if c.closed {
		return ErrClosed
	}
	if mutating && c.phase == PhaseEnded {
		return ErrEnded
	}
	if !c.lock.TryAcquire(op) {
		return ErrBusy
	}
	c.errOp, c.errMsg = OpNone, ""
	c.notice = ""
	return nil
}

// finish releases the lock and records a failure. Callers hold c.mu.
func (c *Controller) finish(op Operation, err error) error {
	c.lock.Release(op)
	if c.closed {
		return ErrClosed
	}
	if err != nil {
		c.errOp, c.errMsg = op, api.Message(err)
		c.logger.Printf("[session] %d %s failed: %v", c.id, op, err)
	}
	return err
}

// Load fetches session metadata and leaves Initializing. It holds the action
// lock, so no other session operation can run while the fetch is in flight.
// A failed fetch still enters Active with "now" as the start mark so the timer
// keeps working; the error is returned for logging only. Load never moves a
// session out of Ended.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if err := c.begin(OpLoad, false); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	sess, err := c.gw.GetSession(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lock.Release(OpLoad)
	if c.closed {
		return ErrClosed
	}
	if c.phase == PhaseEnded {
		return err
	}
	if err != nil {
		c.logger.Printf("[session] %d metadata unavailable, timing from now: %v", c.id, err)
		c.timer.StartSession(c.clock.Now(), 0)
		c.phase = PhaseActive
		return err
	}

	c.timer.StartSession(sess.StartTime.Time, sess.PlannedDuration)
	if sess.Ended() {
		c.timer.Freeze(sess.EndTime.Time)
		c.phase = PhaseEnded
	} else {
		c.phase = PhaseActive
	}
	return nil
}

// GenerateQuestions replaces the whole question list. Selection, draft,
// evaluation and skip marks never survive a new batch.
func (c *Controller) GenerateQuestions(ctx context.Context) error {
	c.mu.Lock()
	if err := c.begin(OpGenerateQuestions, true); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	questions, err := c.gw.GenerateQuestions(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(OpGenerateQuestions, err); err != nil {
		return err
	}

	c.questions = questions
	c.clearSelection()
	c.answer = ""
	c.interim = ""
	c.skipped = make(map[int]bool)
	return nil
}

// Select makes question i current: clears the evaluation, restarts the
// question timer and looks up any cached outline reference.
func (c *Controller) Select(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(c.questions) {
		return ErrInvalidIndex
	}
	c.evaluation = nil
	if i == c.selected {
		return nil
	}

	c.selected = i
	c.epoch++
	c.timer.StartQuestion()
	c.outlineText = ""
	c.outline = nil
	if ref, ok := c.outlines[c.questions[i].Key()]; ok {
		r := ref
		c.outline = &r
	}
	return nil
}

// ClearSelection returns to the no-question state.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelection()
}

func (c *Controller) clearSelection() {
	c.selected = -1
	c.epoch++
	c.evaluation = nil
	c.outline = nil
	c.outlineText = ""
	c.timer.StopQuestion()
}

// Skip marks question i as skipped. Skipping the current question also drops
// its draft and evaluation. A skipped question can still be selected.
func (c *Controller) Skip(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if i < 0 || i >= len(c.questions) {
		return ErrInvalidIndex
	}
	c.skipped[i] = true
	if i == c.selected {
		c.clearSelection()
		c.answer = ""
		c.interim = ""
	}
	return nil
}

func (c *Controller) SetAnswer(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answer = text
}

// AppendDictation folds a recognition result into the draft. Interim text is
// only previewed; final text is appended to the answer.
func (c *Controller) AppendDictation(text string, final bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text = strings.TrimSpace(text)
	if !final {
		c.interim = text
		return
	}
	c.interim = ""
	if text == "" {
		return
	}
	if c.answer != "" && !strings.HasSuffix(c.answer, " ") && !strings.HasSuffix(c.answer, "\n") {
		c.answer += " "
	}
	c.answer += text
}

// CanSubmit is the interaction-boundary check for SubmitAnswer.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmit() == nil
}

func (c *Controller) canSubmit() error {
	if c.closed {
		return ErrClosed
	}
	if c.phase == PhaseEnded {
		return ErrEnded
	}
	if c.selected < 0 || c.selected >= len(c.questions) {
		return ErrNoSelection
	}
	if strings.TrimSpace(c.answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}

// SubmitAnswer sends the selected question, the raw draft and the elapsed
// answering time. On failure the previous evaluation is kept.
func (c *Controller) SubmitAnswer(ctx context.Context) error {
	c.mu.Lock()
	if err := c.canSubmit(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.begin(OpSubmitAnswer, true); err != nil {
		c.mu.Unlock()
		return err
	}
	secs := c.timer.QuestionSeconds()
	req := models.EvaluateAnswerRequest{
		Question:          c.questions[c.selected].Question,
		RawAnswer:         c.answer,
		AnswerTimeSeconds: &secs,
	}
	epoch := c.epoch
	c.mu.Unlock()

	result, err := c.gw.EvaluateAnswer(ctx, c.id, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(OpSubmitAnswer, err); err != nil {
		return err
	}
	if epoch != c.epoch {
		c.logger.Printf("[session] %d dropping evaluation for a deselected question", c.id)
		return ErrStale
	}
	c.evaluation = result
	return nil
}

// GenerateOutline asks the server for a fresh story outline for the selected
// question and caches its reference.
func (c *Controller) GenerateOutline(ctx context.Context) error {
	c.mu.Lock()
	if c.selected < 0 {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if err := c.begin(OpGenerateOutline, true); err != nil {
		c.mu.Unlock()
		return err
	}
	q := c.questions[c.selected]
	epoch := c.epoch
	c.mu.Unlock()

	resp, err := c.gw.GenerateStory(ctx, c.id, q.Question)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(OpGenerateOutline, err); err != nil {
		return err
	}

	// The reference is cached even if the user moved on; only the buffer
	// belongs to the current selection.
	ref := OutlineRef{QuestionID: resp.QuestionID, StoryID: resp.StoryID}
	c.outlines[q.Key()] = ref
	if epoch != c.epoch {
		return ErrStale
	}
	c.outline = &ref
	c.outlineText = resp.StructureText
	return nil
}

// LoadOutline reloads the saved outline text for the selected question.
func (c *Controller) LoadOutline(ctx context.Context) error {
	c.mu.Lock()
	if c.selected < 0 {
		c.mu.Unlock()
		return ErrNoSelection
	}
	ref, ok := c.outlines[c.questions[c.selected].Key()]
	if !ok {
		c.mu.Unlock()
		return ErrNoOutline
	}
	if err := c.begin(OpLoadOutline, false); err != nil {
		c.mu.Unlock()
		return err
	}
	epoch := c.epoch
	c.mu.Unlock()

	story, err := c.gw.GetStory(ctx, ref.QuestionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(OpLoadOutline, err); err != nil {
		return err
	}
	if epoch != c.epoch {
		return ErrStale
	}
	if story.ID != 0 && story.ID != ref.StoryID {
		ref.StoryID = story.ID
		c.outlines[c.questions[c.selected].Key()] = ref
	}
	c.outline = &ref
	c.outlineText = story.StructureText
	return nil
}

func (c *Controller) SetOutlineText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outlineText = text
}

// SaveOutline persists the buffer to the current outline. Cache keys are
// left untouched.
func (c *Controller) SaveOutline(ctx context.Context) error {
	c.mu.Lock()
	if c.outline == nil {
		c.mu.Unlock()
		return ErrNoOutline
	}
	if err := c.begin(OpSaveOutline, true); err != nil {
		c.mu.Unlock()
		return err
	}
	storyID := c.outline.StoryID
	text := c.outlineText
	c.mu.Unlock()

	err := c.gw.UpdateStory(ctx, storyID, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(OpSaveOutline, err); err != nil {
		return err
	}
	c.notice = "Outline saved."
	return nil
}

// EndSession marks the session ended on the server. A failure leaves the
// session Active and the call can be retried.
func (c *Controller) EndSession(ctx context.Context) error {
	c.mu.Lock()
	if err := c.begin(OpEndSession, true); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := c.gw.EndSession(ctx, c.id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(OpEndSession, err); err != nil {
		return err
	}
	c.phase = PhaseEnded
	c.timer.Freeze(c.clock.Now())
	c.notice = "Session ended. Your progress for this topic has been updated."
	return nil
}

// Close tears the view down. Late results from in-flight calls are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.timer.StopQuestion()
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	SessionID   int64
	Phase       Phase
	Questions   []models.Question
	Selected    int
	Answer      string
	Interim     string
	Evaluation  *models.EvaluationResult
	Skipped     map[int]bool
	Outline     *OutlineRef
	OutlineText string
	InFlight    Operation
	ErrorOp     Operation
	Error       string
	Notice      string
	Timer       TimerSnapshot
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		SessionID:   c.id,
		Phase:       c.phase,
		Questions:   append([]models.Question(nil), c.questions...),
		Selected:    c.selected,
		Answer:      c.answer,
		Interim:     c.interim,
		Skipped:     make(map[int]bool, len(c.skipped)),
		OutlineText: c.outlineText,
		InFlight:    c.lock.Current(),
		ErrorOp:     c.errOp,
		Error:       c.errMsg,
		Notice:      c.notice,
		Timer:       c.timer.Snapshot(),
	}
	for k, v := range c.skipped {
		snap.Skipped[k] = v
	}
	if c.evaluation != nil {
		e := *c.evaluation
		snap.Evaluation = &e
	}
	if c.outline != nil {
		o := *c.outline
		snap.Outline = &o
	}
	return snap
}

// SelectedQuestion returns the current question, if any.
func (s Snapshot) SelectedQuestion() (models.Question, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Questions) {
		return models.Question{}, false
	}
	return s.Questions[s.Selected], true
}

// Ended reports the terminal state; generation and ending are disabled.
func (s Snapshot) Ended() bool {
	return s.Phase == PhaseEnded
}

func (s Snapshot) Busy(op Operation) bool {
	return s.InFlight == op
}

func (s Snapshot) CanGenerate() bool {
	return !s.Ended() && s.InFlight == OpNone
}

func (s Snapshot) CanEnd() bool {
	return !s.Ended() && s.InFlight == OpNone
}

func (s Snapshot) CanSubmit() bool {
	_, ok := s.SelectedQuestion()
	return ok && !s.Ended() && s.InFlight == OpNone && strings.TrimSpace(s.Answer) != ""
}
