// Package plan implements the plan-facing views: creating and refining a
// study plan, listing its topics, editing the user context, and reading the
// session history. Each view holds only transient form state; the server owns
// every plan and session.
package plan

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/interview-prep/studyclient/internal/models"
)

var (
	ErrMissingInput   = errors.New("role and context are required")
	ErrNoSuggestion   = errors.New("no suggested plan to approve")
	ErrMissingTopicID = errors.New("topic is missing an id")
	ErrRefineLimited  = errors.New("plan refinement is limited to once per day")
)

// Inline notices shown in place of the disabled action.
const (
	MissingTopicIDNotice = "This topic is missing an id; try refreshing the page."
	RefineLimitedNotice  = "You've already refined your plan today. Check back tomorrow."
)

// Gateway is the slice of the API the plan views call.
type Gateway interface {
	SuggestNewPlan(ctx context.Context, req models.SuggestNewPlanRequest) (*models.Plan, error)
	SuggestPlanChanges(ctx context.Context, req models.SuggestChangesRequest) (*models.Plan, error)
	ApprovePlan(ctx context.Context, plan models.Plan) (*models.Ack, error)
	CanRefine(ctx context.Context) (bool, error)
	ViewPlan(ctx context.Context) (*models.Plan, error)
	GetUserContext(ctx context.Context) (string, error)
	UpdateUserContext(ctx context.Context, text string) (string, error)
	StartSession(ctx context.Context, topicID int64, plannedStudyTime int) (*models.StudySession, error)
	GetSuggestedSession(ctx context.Context) (*models.SuggestedSession, error)
	ListSessions(ctx context.Context, req models.SessionListRequest) ([]models.SessionRow, error)
}

func discardIfNil(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}
