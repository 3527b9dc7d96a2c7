package plan

import (
	"context"
	"log"
)

const contextSavedMessage = "Context saved."

// ContextEditor reads and writes the free-text user context that feeds
// question generation.
type ContextEditor struct {
	gw     Gateway
	logger *log.Logger
}

func NewContextEditor(gw Gateway, logger *log.Logger) *ContextEditor {
	return &ContextEditor{gw: gw, logger: discardIfNil(logger)}
}

// Load returns the saved context. Failures read as an empty context.
func (e *ContextEditor) Load(ctx context.Context) string {
	text, err := e.gw.GetUserContext(ctx)
	if err != nil {
		e.logger.Printf("[plan] loading user context: %v", err)
		return ""
	}
	return text
}

// Save stores text and returns the confirmation shown to the user.
func (e *ContextEditor) Save(ctx context.Context, text string) (string, error) {
	if _, err := e.gw.UpdateUserContext(ctx, text); err != nil {
		return "", err
	}
	return contextSavedMessage, nil
}
