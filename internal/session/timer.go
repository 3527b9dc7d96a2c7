package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Clock is the wall-clock source for the timers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// Timer derives the session and per-question elapsed displays from start
// marks. It holds no authoritative state.
type Timer struct {
	clock Clock

	mu             sync.Mutex
	sessionStart   time.Time
	frozenAt       time.Time
	plannedMinutes int
	questionStart  time.Time
}

func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Timer{clock: clock}
}

// StartSession sets the session start mark. plannedMinutes <= 0 means unknown.
func (t *Timer) StartSession(start time.Time, plannedMinutes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionStart = start
	t.plannedMinutes = plannedMinutes
	t.frozenAt = time.Time{}
}

// Freeze stops the session display at the given instant.
func (t *Timer) Freeze(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozenAt.IsZero() {
		t.frozenAt = at
	}
}

// StartQuestion resets the question display to zero and restarts it.
func (t *Timer) StartQuestion() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.questionStart = t.clock.Now()
}

// StopQuestion stops and zeroes the question display.
func (t *Timer) StopQuestion() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.questionStart = time.Time{}
}

// TimerSnapshot is one reading of both displays, at one-second granularity.
type TimerSnapshot struct {
	SessionKnown    bool
	SessionSeconds  int
	PlannedMinutes  int
	Frozen          bool
	QuestionActive  bool
	QuestionSeconds int
}

func (t *Timer) Snapshot() TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	snap := TimerSnapshot{
		SessionKnown:   !t.sessionStart.IsZero(),
		PlannedMinutes: t.plannedMinutes,
		Frozen:         !t.frozenAt.IsZero(),
		QuestionActive: !t.questionStart.IsZero(),
	}
	if snap.SessionKnown {
		end := now
		if snap.Frozen {
			end = t.frozenAt
		}
		snap.SessionSeconds = wholeSeconds(end.Sub(t.sessionStart))
	}
	if snap.QuestionActive {
		snap.QuestionSeconds = wholeSeconds(now.Sub(t.questionStart))
	}
	return snap
}

// QuestionSeconds is read once when an answer is submitted.
func (t *Timer) QuestionSeconds() int {
	return t.Snapshot().QuestionSeconds
}

// Watch emits a snapshot immediately and then every interval until ctx is
// done. Slow readers miss ticks rather than block the ticker.
func (t *Timer) Watch(ctx context.Context, interval time.Duration) <-chan TimerSnapshot {
	out := make(chan TimerSnapshot, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case out <- t.Snapshot():
			default:
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

func wholeSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// FormatElapsed renders seconds as m:ss with unbounded minutes.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// SessionDisplay renders "m:ss / N min", dropping the planned part when unknown.
func (s TimerSnapshot) SessionDisplay() string {
	out := FormatElapsed(s.SessionSeconds)
	if s.PlannedMinutes > 0 {
		out += fmt.Sprintf(" / %d min", s.PlannedMinutes)
	}
	return out
}

func (s TimerSnapshot) QuestionDisplay() string {
	return FormatElapsed(s.QuestionSeconds)
}
