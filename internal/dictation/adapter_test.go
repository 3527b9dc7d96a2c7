package dictation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeStream struct {
	events chan Event

	mu      sync.Mutex
	stopped bool
	aborted bool
	once    sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan Event, 8)}
}

func (s *fakeStream) Events() <-chan Event { return s.events }

func (s *fakeStream) end() { s.once.Do(func() { close(s.events) }) }

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.end()
	return nil
}

func (s *fakeStream) Abort() error {
	s.mu.Lock()
	s.aborted = true
	s.mu.Unlock()
	s.end()
	return nil
}

func (s *fakeStream) state() (stopped, aborted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped, s.aborted
}

type fakeRecognizer struct {
	mu      sync.Mutex
	streams []*fakeStream
	langs   []string
	err     error
	calls   int

	// entered receives once per Start call; gate, when set, holds Start
	// until closed.
	entered chan struct{}
	gate    chan struct{}
}

func (r *fakeRecognizer) Start(ctx context.Context, lang string) (Stream, error) {
	r.mu.Lock()
	r.calls++
	entered, gate := r.entered, r.gate
	r.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s := newFakeStream()
	r.streams = append(r.streams, s)
	r.langs = append(r.langs, lang)
	return s, nil
}

func (r *fakeRecognizer) last() *fakeStream {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams[len(r.streams)-1]
}

func supported() bool { return true }

func nextUpdate(t *testing.T, a *Adapter) Update {
	t.Helper()
	select {
	case u := <-a.Updates():
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("expected an update")
	}
	return Update{}
}

func TestAdapter_Unsupported(t *testing.T) {
	a := NewAdapter(&fakeRecognizer{}, Unavailable)
	if a.Supported() {
		t.Fatalf("expected unsupported adapter")
	}
	if err := a.Toggle(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if a.Listening() {
		t.Errorf("expected idle adapter")
	}
}

func TestAdapter_CapabilityCheckedOnce(t *testing.T) {
	calls := 0
	capable := func() bool {
		calls++
		return true
	}
	a := NewAdapter(&fakeRecognizer{}, capable)
	a.Supported()
	a.Supported()
	if calls != 1 {
		t.Errorf("expected one capability check, got %d", calls)
	}
}

func TestAdapter_ToggleAndResults(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewAdapter(rec, supported, WithLang("en-GB"))
	defer a.Close()

	if err := a.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !a.Listening() {
		t.Fatalf("expected listening")
	}
	if rec.langs[0] != "en-GB" {
		t.Errorf("expected en-GB, got %q", rec.langs[0])
	}

	s := rec.last()
	s.events <- Event{Text: "  I led  "}
	s.events <- Event{Text: "   ", Final: true}
	s.events <- Event{Text: " I led the team ", Final: true}

	u := nextUpdate(t, a)
	if u.Text != "I led" || u.Final {
		t.Errorf("expected interim 'I led', got %+v", u)
	}
	u = nextUpdate(t, a)
	if u.Text != "I led the team" || !u.Final {
		t.Errorf("expected final 'I led the team', got %+v", u)
	}

	if err := a.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	u = nextUpdate(t, a)
	if !u.Stopped || u.Reason != "" {
		t.Errorf("expected plain stop, got %+v", u)
	}
	if a.Listening() {
		t.Errorf("expected idle after stop")
	}
	if !s.stopped {
		t.Errorf("expected graceful stop")
	}
}

func TestAdapter_StopsOnTerminalErrors(t *testing.T) {
	for _, code := range []string{CodeNotAllowed, CodeNoSpeech} {
		t.Run(code, func(t *testing.T) {
			rec := &fakeRecognizer{}
			a := NewAdapter(rec, supported)
			defer a.Close()

			if err := a.Toggle(context.Background()); err != nil {
				t.Fatalf("Toggle: %v", err)
			}
			rec.last().events <- Event{ErrorCode: code}

			u := nextUpdate(t, a)
			if !u.Stopped || u.Reason != code {
				t.Errorf("expected stop with %s, got %+v", code, u)
			}
			if a.Listening() {
				t.Errorf("expected idle")
			}
		})
	}
}

func TestAdapter_OtherErrorsKeepListening(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewAdapter(rec, supported)
	defer a.Close()

	if err := a.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	s := rec.last()
	s.events <- Event{ErrorCode: "network"}
	s.events <- Event{Text: "still here", Final: true}

	u := nextUpdate(t, a)
	if u.Text != "still here" {
		t.Errorf("expected recognition to continue, got %+v", u)
	}
	if !a.Listening() {
		t.Errorf("expected still listening")
	}
}

func TestAdapter_StreamEndGoesIdle(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewAdapter(rec, supported)
	defer a.Close()

	if err := a.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	rec.last().end()

	if u := nextUpdate(t, a); !u.Stopped {
		t.Errorf("expected stop update, got %+v", u)
	}
	if a.Listening() {
		t.Errorf("expected idle")
	}
}

func TestAdapter_StartFailure(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("no microphone")}
	a := NewAdapter(rec, supported)
	defer a.Close()

	if err := a.Toggle(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	if a.Listening() {
		t.Errorf("expected idle after failed start")
	}
}

func TestAdapter_CloseAborts(t *testing.T) {
	rec := &fakeRecognizer{}
	a := NewAdapter(rec, supported)

	if err := a.Toggle(context.Background()); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	s := rec.last()
	a.Close()

	if !s.aborted {
		t.Errorf("expected abort on close")
	}
	if a.Listening() {
		t.Errorf("expected idle after close")
	}
	if err := a.Toggle(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	for range a.Updates() {
	}
}

func newGatedRecognizer() *fakeRecognizer {
	return &fakeRecognizer{entered: make(chan struct{}, 4), gate: make(chan struct{})}
}

func TestAdapter_ToggleDuringStartCancelsIt(t *testing.T) {
	rec := newGatedRecognizer()
	a := NewAdapter(rec, supported)
	defer a.Close()
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- a.Toggle(ctx) }()
	<-rec.entered

	if err := a.Toggle(ctx); err != nil {
		t.Fatalf("second Toggle: %v", err)
	}
	close(rec.gate)
	if err := <-first; err != nil {
		t.Fatalf("first Toggle: %v", err)
	}

	rec.mu.Lock()
	calls, streams := rec.calls, len(rec.streams)
	rec.mu.Unlock()
	if calls != 1 || streams != 1 {
		t.Fatalf("expected one recognizer start, got %d calls and %d streams", calls, streams)
	}
	if _, aborted := rec.last().state(); !aborted {
		t.Errorf("expected the cancelled stream to be aborted")
	}
	if a.Listening() {
		t.Errorf("expected idle after cancelled start")
	}

	// The adapter is usable again afterwards.
	rec.mu.Lock()
	rec.gate = nil
	rec.mu.Unlock()
	if err := a.Toggle(ctx); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	<-rec.entered
	if !a.Listening() {
		t.Errorf("expected listening")
	}
}

func TestAdapter_CloseDuringStartAborts(t *testing.T) {
	rec := newGatedRecognizer()
	a := NewAdapter(rec, supported)

	done := make(chan error, 1)
	go func() { done <- a.Toggle(context.Background()) }()
	<-rec.entered

	a.Close()
	close(rec.gate)
	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, aborted := rec.last().state(); !aborted {
		t.Errorf("expected stream started after close to be aborted")
	}
	if a.Listening() {
		t.Errorf("expected idle after close")
	}
}
