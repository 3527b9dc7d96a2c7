package dictation

import (
	"context"
	"os/exec"
	"strings"
)

// Event is one message from a recognition stream. Exactly one of Text or
// ErrorCode is meaningful.
type Event struct {
	Text      string
	Final     bool
	ErrorCode string
}

// Recognition error codes that end a stream.
const (
	CodeNotAllowed = "not-allowed"
	CodeNoSpeech   = "no-speech"
)

// Stream is a running recognition. Events is closed when recognition ends
// for any reason.
type Stream interface {
	Events() <-chan Event
	// Stop ends recognition gracefully; pending results may still arrive.
	Stop() error
	// Abort ends recognition and drops pending results.
	Abort() error
}

// Recognizer starts continuous recognition with interim results.
type Recognizer interface {
	Start(ctx context.Context, lang string) (Stream, error)
}

// Capability reports whether speech recognition exists on this platform.
type Capability func() bool

// CommandAvailable reports whether the first word of command resolves to an
// executable.
func CommandAvailable(command string) Capability {
	return func() bool {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return false
		}
		_, err := exec.LookPath(fields[0])
		return err == nil
	}
}

// Unavailable is the capability of a platform without speech recognition.
func Unavailable() bool { return false }
