package plan

import (
	"context"
	"log"

	"github.com/interview-prep/studyclient/internal/models"
)

// Suggested surfaces the server's pick for the next session.
type Suggested struct {
	gw     Gateway
	logger *log.Logger
}

func NewSuggested(gw Gateway, logger *log.Logger) *Suggested {
	return &Suggested{gw: gw, logger: discardIfNil(logger)}
}

// Load returns the suggestion, or nil when none is available.
func (s *Suggested) Load(ctx context.Context) *models.SuggestedSession {
	sugg, err := s.gw.GetSuggestedSession(ctx)
	if err != nil {
		s.logger.Printf("[plan] no suggested session: %v", err)
		return nil
	}
	return sugg
}

func (s *Suggested) Start(ctx context.Context, sugg models.SuggestedSession) (*models.StudySession, error) {
	return s.gw.StartSession(ctx, sugg.TopicID, sugg.PlannedStudyTime)
}
