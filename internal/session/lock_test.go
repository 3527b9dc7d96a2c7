package session

import "testing"

func TestActionLock(t *testing.T) {
	var l ActionLock

	if !l.TryAcquire(OpSubmitAnswer) {
		t.Fatalf("expected first acquire to succeed")
	}
	if l.TryAcquire(OpEndSession) {
		t.Errorf("expected conflicting acquire to fail")
	}
	if got := l.Current(); got != OpSubmitAnswer {
		t.Errorf("expected %s in flight, got %s", OpSubmitAnswer, got)
	}

	// Releasing an operation that does not hold the lock is a no-op.
	l.Release(OpEndSession)
	if got := l.Current(); got != OpSubmitAnswer {
		t.Errorf("expected lock to stay with %s, got %s", OpSubmitAnswer, got)
	}

	l.Release(OpSubmitAnswer)
	if got := l.Current(); got != OpNone {
		t.Errorf("expected idle lock, got %s", got)
	}
	if !l.TryAcquire(OpEndSession) {
		t.Errorf("expected acquire after release to succeed")
	}
}
