package dictation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CommandRecognizer runs an external speech-to-text program and reads one
// result per stdout line:
//
//	partial: <interim text>
//	final: <final text>
//	error: <code>
//
// Lines without a prefix are treated as final text. The language is passed
// in the DICTATION_LANG environment variable.
type CommandRecognizer struct {
	command string
	logger  *log.Logger
}

func NewCommandRecognizer(command string, logger *log.Logger) *CommandRecognizer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CommandRecognizer{command: command, logger: logger}
}

func (r *CommandRecognizer) Start(ctx context.Context, lang string) (Stream, error) {
	fields := strings.Fields(r.command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("dictation command is empty")
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Env = append(os.Environ(), "DICTATION_LANG="+lang)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("dictation stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting dictation command: %w", err)
	}

	s := &commandStream{
		cmd:     cmd,
		cancel:  cancel,
		events:  make(chan Event, 16),
		aborted: make(chan struct{}),
		logger:  r.logger,
	}
	go s.read(stdout)
	return s, nil
}

type commandStream struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	events  chan Event
	aborted chan struct{}
	logger  *log.Logger

	abortOnce sync.Once
}

func (s *commandStream) Events() <-chan Event { return s.events }

func (s *commandStream) read(stdout io.Reader) {
	defer close(s.events)
	defer s.cancel()

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		ev, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		// Results are dropped once aborted, even if nobody reads them.
		select {
		case <-s.aborted:
			continue
		default:
		}
		select {
		case s.events <- ev:
		case <-s.aborted:
		}
	}
	if err := s.cmd.Wait(); err != nil {
		s.logger.Printf("[dictation] recognizer exited: %v", err)
	}
}

func parseLine(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}
	prefix, rest, found := strings.Cut(line, ":")
	if found {
		rest = strings.TrimSpace(rest)
		switch strings.ToLower(prefix) {
		case "partial":
			return Event{Text: rest}, true
		case "final":
			return Event{Text: rest, Final: true}, true
		case "error":
			return Event{ErrorCode: rest}, true
		}
	}
	return Event{Text: line, Final: true}, true
}

func (s *commandStream) Stop() error {
	if s.cmd.Process == nil {
		return nil
	}
	if err := s.cmd.Process.Signal(os.Interrupt); err != nil {
		// The process may already be gone, or the platform has no SIGINT.
		s.cancel()
	}
	return nil
}

func (s *commandStream) Abort() error {
	s.abortOnce.Do(func() { close(s.aborted) })
	s.cancel()
	return nil
}
