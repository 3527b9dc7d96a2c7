package plan

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/interview-prep/studyclient/internal/models"
)

// CreatorInput is the raw plan-creation form.
type CreatorInput struct {
	Role          string
	Context       string
	TimeAvailable int
	WeakAreas     string
	Motivation    string
}

// Creator drives the new-plan flow: generate a suggestion, then approve or
// discard it.
type Creator struct {
	gw Gateway

	mu         sync.Mutex
	suggestion *models.Plan
}

func NewCreator(gw Gateway) *Creator {
	return &Creator{gw: gw}
}

// BuildRequest validates the form and shapes the request body.
func BuildRequest(in CreatorInput) (models.SuggestNewPlanRequest, error) {
	role := strings.TrimSpace(in.Role)
	text := strings.TrimSpace(in.Context)
	if role == "" || text == "" {
		return models.SuggestNewPlanRequest{}, ErrMissingInput
	}

	req := models.SuggestNewPlanRequest{
		Role:           role,
		RawUserContext: text,
		WeakAreas:      ParseWeakAreas(in.WeakAreas),
	}
	if in.TimeAvailable > 0 {
		minutes := in.TimeAvailable
		req.TimeAvailableMinutes = &minutes
	}
	if in.Motivation != "" {
		level := models.MotivationLevel(strings.ToLower(strings.TrimSpace(in.Motivation)))
		if !models.ValidMotivationLevels[level] {
			return models.SuggestNewPlanRequest{}, fmt.Errorf("motivation must be low, medium or high, got %q", in.Motivation)
		}
		req.MotivationLevel = level
	}
	return req, nil
}

// ParseWeakAreas splits a comma or semicolon separated list, dropping blanks.
func ParseWeakAreas(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Generate replaces any previous suggestion with a fresh one.
func (c *Creator) Generate(ctx context.Context, in CreatorInput) (*models.Plan, error) {
	req, err := BuildRequest(in)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.suggestion = nil
	c.mu.Unlock()

	p, err := c.gw.SuggestNewPlan(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.suggestion = p
	c.mu.Unlock()
	return p, nil
}

func (c *Creator) Suggestion() *models.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suggestion
}

// Approve saves the current suggestion as the user's plan.
func (c *Creator) Approve(ctx context.Context) (*models.Ack, error) {
	c.mu.Lock()
	p := c.suggestion
	c.mu.Unlock()
	if p == nil {
		return nil, ErrNoSuggestion
	}

	ack, err := c.gw.ApprovePlan(ctx, *p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.suggestion = nil
	c.mu.Unlock()
	return ack, nil
}

func (c *Creator) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suggestion = nil
}
