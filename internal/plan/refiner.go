package plan

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/interview-prep/studyclient/internal/api"
	"github.com/interview-prep/studyclient/internal/models"
)

const defaultRefineContext = "No additional context provided."

// Refiner proposes changes to the approved plan, at most once per day.
type Refiner struct {
	gw     Gateway
	logger *log.Logger

	mu         sync.Mutex
	current    *models.Plan
	canRefine  bool
	suggestion *models.Plan
}

func NewRefiner(gw Gateway, current *models.Plan, logger *log.Logger) *Refiner {
	return &Refiner{gw: gw, current: current, canRefine: true, logger: discardIfNil(logger)}
}

// CheckCanRefine asks the server whether a refinement is still allowed today.
// A failed check leaves refinement enabled; the server enforces the limit.
func (r *Refiner) CheckCanRefine(ctx context.Context) bool {
	ok, err := r.gw.CanRefine(ctx)
	if err != nil {
		r.logger.Printf("[plan] can_refine check failed: %v", err)
		ok = true
	}
	r.mu.Lock()
	r.canRefine = ok
	r.mu.Unlock()
	return ok
}

func (r *Refiner) CanRefine() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canRefine
}

func (r *Refiner) Current() *models.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Refiner) Suggestion() *models.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suggestion
}

// CurrentProgress collects the topics that carry progress, or nil when none do.
func CurrentProgress(p *models.Plan) *models.PlanProgress {
	if p == nil {
		return nil
	}
	var entries []models.ProgressEntry
	for _, t := range p.Topics {
		if t.Progress == nil {
			continue
		}
		entries = append(entries, models.ProgressEntry{
			TopicName:      t.Name,
			StrengthRating: t.Progress.StrengthRating,
			TotalTimeSpent: t.Progress.TotalTimeSpent,
		})
	}
	if len(entries) == 0 {
		return nil
	}
	return &models.PlanProgress{Topics: entries}
}

// SuggestChanges requests a refined plan. A rate-limit response disables
// further attempts for the lifetime of the view.
func (r *Refiner) SuggestChanges(ctx context.Context, userContext string) (*models.Plan, error) {
	r.mu.Lock()
	if !r.canRefine {
		r.mu.Unlock()
		return nil, ErrRefineLimited
	}
	if r.current == nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("no current plan to refine")
	}
	current := *r.current
	r.suggestion = nil
	r.mu.Unlock()

	if userContext == "" {
		userContext = defaultRefineContext
	}
	req := models.SuggestChangesRequest{
		CurrentPlan:     current,
		RawUserContext:  userContext,
		CurrentProgress: CurrentProgress(&current),
	}

	p, err := r.gw.SuggestPlanChanges(ctx, req)
	if err != nil {
		if api.IsRefineLimited(err) {
			r.mu.Lock()
			r.canRefine = false
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", ErrRefineLimited, err)
		}
		return nil, err
	}

	r.mu.Lock()
	r.suggestion = p
	r.mu.Unlock()
	return p, nil
}

// Approve saves the suggestion, which becomes the current plan.
func (r *Refiner) Approve(ctx context.Context) (*models.Ack, error) {
	r.mu.Lock()
	p := r.suggestion
	r.mu.Unlock()
	if p == nil {
		return nil, ErrNoSuggestion
	}

	ack, err := r.gw.ApprovePlan(ctx, *p)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.current = p
	r.suggestion = nil
	r.mu.Unlock()
	return ack, nil
}

func (r *Refiner) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suggestion = nil
}

// TopicChange compares one suggested topic with the current topic of the
// same name.
type TopicChange struct {
	Topic           models.PlanTopic
	IsNew           bool
	MinutesChanged  bool
	PriorityChanged bool
	PreviousMinutes int
}

func (c TopicChange) Changed() bool {
	return c.MinutesChanged || c.PriorityChanged
}

// Changes lines a suggested plan up against the current one, in suggested
// order.
func Changes(current, suggested *models.Plan) []TopicChange {
	if suggested == nil {
		return nil
	}
	byName := make(map[string]models.PlanTopic)
	if current != nil {
		for _, t := range current.Topics {
			byName[t.Name] = t
		}
	}

	out := make([]TopicChange, 0, len(suggested.Topics))
	for _, t := range suggested.Topics {
		ch := TopicChange{Topic: t}
		prev, ok := byName[t.Name]
		if !ok {
			ch.IsNew = true
		} else {
			ch.MinutesChanged = prev.DailyStudyMinutes != t.DailyStudyMinutes
			ch.PriorityChanged = prev.Priority != t.Priority
			ch.PreviousMinutes = prev.DailyStudyMinutes
		}
		out = append(out, ch)
	}
	return out
}

// ProgressLine renders one topic's progress as "Strength N/10 · M min
// practiced", or "Not assessed" in place of the strength when unrated.
func ProgressLine(p *models.TopicProgress) string {
	if p == nil {
		return ""
	}
	strength := "Not assessed"
	if p.StrengthRating != nil && *p.StrengthRating > 0 {
		strength = fmt.Sprintf("Strength %d/10", *p.StrengthRating)
	}
	return fmt.Sprintf("%s · %d min practiced", strength, p.TotalTimeSpent)
}
