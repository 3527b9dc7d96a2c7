package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/interview-prep/studyclient/internal/models"
)

func (c *Client) GetSession(ctx context.Context, sessionID int64) (*models.StudySession, error) {
	var s models.StudySession
	if err := c.get(ctx, fmt.Sprintf("/study/session/%d", sessionID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) StartSession(ctx context.Context, topicID int64, plannedStudyTime int) (*models.StudySession, error) {
	req := models.StartSessionRequest{TopicID: topicID, PlannedStudyTime: plannedStudyTime}
	var s models.StudySession
	if err := c.post(ctx, "/study/start_session", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) EndSession(ctx context.Context, sessionID int64) error {
	return c.put(ctx, fmt.Sprintf("/study/end_session/%d", sessionID), nil, nil)
}

func (c *Client) GenerateQuestions(ctx context.Context, sessionID int64) ([]models.Question, error) {
	var resp models.GenerateQuestionsResponse
	if err := c.post(ctx, fmt.Sprintf("/study/generate_questions/%d", sessionID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Questions == nil {
		resp.Questions = []models.Question{}
	}
	return resp.Questions, nil
}

func (c *Client) EvaluateAnswer(ctx context.Context, sessionID int64, req models.EvaluateAnswerRequest) (*models.EvaluationResult, error) {
	var result models.EvaluationResult
	if err := c.post(ctx, fmt.Sprintf("/study/evaluate_answer/%d", sessionID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GenerateStory(ctx context.Context, sessionID int64, question string) (*models.GenerateStoryResponse, error) {
	var resp models.GenerateStoryResponse
	if err := c.post(ctx, fmt.Sprintf("/study/generate_story/%d", sessionID), models.GenerateStoryRequest{Question: question}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetStory(ctx context.Context, questionID int64) (*models.Story, error) {
	var s models.Story
	if err := c.get(ctx, fmt.Sprintf("/study/story/%d", questionID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateStory(ctx context.Context, storyID int64, structureText string) error {
	return c.put(ctx, fmt.Sprintf("/study/story/%d", storyID), models.UpdateStoryRequest{StructureText: structureText}, nil)
}

func (c *Client) GetSuggestedSession(ctx context.Context) (*models.SuggestedSession, error) {
	var s models.SuggestedSession
	if err := c.get(ctx, "/study/suggested_session", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) ListSessions(ctx context.Context, req models.SessionListRequest) ([]models.SessionRow, error) {
	query := url.Values{}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.TopicID != nil {
		query.Set("topic_id", strconv.FormatInt(*req.TopicID, 10))
	}

	path := "/study/sessions"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp models.SessionListResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Sessions == nil {
		resp.Sessions = []models.SessionRow{}
	}
	return resp.Sessions, nil
}
