package api

import (
	"context"

	"github.com/interview-prep/studyclient/internal/models"
)

func (c *Client) SuggestNewPlan(ctx context.Context, req models.SuggestNewPlanRequest) (*models.Plan, error) {
	var p models.Plan
	if err := c.post(ctx, "/plan/suggest_new", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SuggestPlanChanges(ctx context.Context, req models.SuggestChangesRequest) (*models.Plan, error) {
	var p models.Plan
	if err := c.post(ctx, "/plan/suggest_changes", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ApprovePlan(ctx context.Context, plan models.Plan) (*models.Ack, error) {
	var ack models.Ack
	if err := c.post(ctx, "/plan/approve_plan", models.ApprovePlanRequest{Plan: plan}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) CanRefine(ctx context.Context) (bool, error) {
	var resp models.CanRefineResponse
	if err := c.get(ctx, "/plan/can_refine", &resp); err != nil {
		return false, err
	}
	return resp.CanRefine, nil
}

func (c *Client) ViewPlan(ctx context.Context) (*models.Plan, error) {
	var p models.Plan
	if err := c.get(ctx, "/plan/view", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetUserContext(ctx context.Context) (string, error) {
	var uc models.UserContext
	if err := c.get(ctx, "/plan/user_context", &uc); err != nil {
		return "", err
	}
	return uc.ContextText, nil
}

func (c *Client) UpdateUserContext(ctx context.Context, text string) (string, error) {
	var uc models.UserContext
	if err := c.post(ctx, "/plan/user_context", models.UserContext{ContextText: text}, &uc); err != nil {
		return "", err
	}
	return uc.ContextText, nil
}
