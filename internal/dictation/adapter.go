package dictation

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
)

var (
	ErrUnsupported = errors.New("speech recognition is not supported here")
	ErrClosed      = errors.New("dictation adapter is closed")
)

const DefaultLang = "en-US"

// Update is delivered to the consumer for every non-empty result and once
// when listening stops.
type Update struct {
	Text    string
	Final   bool
	Stopped bool
	// Reason is the recognition error code that stopped listening, if any.
	Reason string
}

// Adapter turns a Recognizer into a single toggleable microphone. Capability
// is checked once when the adapter is built.
type Adapter struct {
	rec       Recognizer
	supported bool
	lang      string
	logger    *log.Logger
	updates   chan Update

	mu        sync.Mutex
	stream    Stream
	listening bool
	closed    bool
	gen       uint64

	// starting is set while rec.Start runs; cancelStart records a toggle
	// that arrived meanwhile and turns the pending start into a no-op.
	starting    bool
	cancelStart bool
}

type Option func(*Adapter)

func WithLang(lang string) Option {
	return func(a *Adapter) {
		if lang != "" {
			a.lang = lang
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

func NewAdapter(rec Recognizer, capable Capability, opts ...Option) *Adapter {
	a := &Adapter{
		rec:     rec,
		lang:    DefaultLang,
		logger:  log.New(io.Discard, "", 0),
		updates: make(chan Update, 32),
	}
	a.supported = rec != nil && capable != nil && capable()
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Supported() bool { return a.supported }

func (a *Adapter) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Updates delivers trimmed results and stop notifications. It is never
// closed before Close.
func (a *Adapter) Updates() <-chan Update { return a.updates }

// Toggle starts listening when idle and stops it when listening. A toggle
// made while a start is still in progress cancels that start.
func (a *Adapter) Toggle(ctx context.Context) error {
	if !a.supported {
		return ErrUnsupported
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.starting {
		a.cancelStart = true
		a.mu.Unlock()
		return nil
	}
	if a.listening {
		stream := a.stream
		a.mu.Unlock()
		return stream.Stop()
	}
	a.starting = true
	a.cancelStart = false
	a.mu.Unlock()

	stream, err := a.rec.Start(ctx, a.lang)

	a.mu.Lock()
	a.starting = false
	if err != nil {
		a.mu.Unlock()
		a.logger.Printf("[dictation] start failed: %v", err)
		return err
	}
	if a.closed || a.cancelStart {
		closed := a.closed
		a.cancelStart = false
		a.mu.Unlock()
		stream.Abort()
		if closed {
			return ErrClosed
		}
		return nil
	}
	a.gen++
	gen := a.gen
	a.stream = stream
	a.listening = true
	a.mu.Unlock()

	go a.pump(stream, gen)
	return nil
}

func (a *Adapter) pump(stream Stream, gen uint64) {
	var reason string
	for ev := range stream.Events() {
		if ev.ErrorCode != "" {
			a.logger.Printf("[dictation] recognition error: %s", ev.ErrorCode)
			if ev.ErrorCode == CodeNotAllowed || ev.ErrorCode == CodeNoSpeech {
				reason = ev.ErrorCode
				stream.Stop()
			}
			continue
		}
		text := strings.TrimSpace(ev.Text)
		if text == "" {
			continue
		}
		a.emit(gen, Update{Text: text, Final: ev.Final})
	}

	a.mu.Lock()
	current := a.gen == gen
	if current {
		a.listening = false
		a.stream = nil
	}
	a.mu.Unlock()
	if current {
		a.emit(gen, Update{Stopped: true, Reason: reason})
	}
}

func (a *Adapter) emit(gen uint64, u Update) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed || a.gen != gen {
		return
	}
	select {
	case a.updates <- u:
	default:
		a.logger.Printf("[dictation] consumer too slow, dropping result")
	}
}

// Close aborts any active recognition. Nothing is delivered afterwards.
func (a *Adapter) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	stream := a.stream
	a.stream = nil
	a.listening = false
	close(a.updates)
	a.mu.Unlock()

	if stream != nil {
		stream.Abort()
	}
}
