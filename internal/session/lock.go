package session

import "sync"

// Operation names a server call the controller makes on the session's behalf.
type Operation string

const (
	OpNone              Operation = ""
	OpLoad              Operation = "load"
	OpGenerateQuestions Operation = "generate_questions"
	OpSubmitAnswer      Operation = "submit_answer"
	OpGenerateOutline   Operation = "generate_outline"
	OpLoadOutline       Operation = "load_outline"
	OpSaveOutline       Operation = "save_outline"
	OpEndSession        Operation = "end_session"
)

// ActionLock admits one session operation at a time. A conflicting request
// is refused immediately instead of queued.
type ActionLock struct {
	mu sync.Mutex
	op Operation
}

func (l *ActionLock) TryAcquire(op Operation) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.op != OpNone {
		return false
	}
	l.op = op
	return true
}

func (l *ActionLock) Release(op Operation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.op == op {
		l.op = OpNone
	}
}

// Current reports the operation in flight, or OpNone.
func (l *ActionLock) Current() Operation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.op
}
