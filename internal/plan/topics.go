package plan

import (
	"context"
	"sort"

	"github.com/interview-prep/studyclient/internal/models"
)

// Topics lists the approved plan's topics and starts sessions for them.
type Topics struct {
	gw Gateway
}

func NewTopics(gw Gateway) *Topics {
	return &Topics{gw: gw}
}

// List returns the current plan's topics ordered by priority.
func (t *Topics) List(ctx context.Context) ([]models.PlanTopic, error) {
	p, err := t.gw.ViewPlan(ctx)
	if err != nil {
		return nil, err
	}
	topics := append([]models.PlanTopic(nil), p.Topics...)
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Priority < topics[j].Priority
	})
	return topics, nil
}

// StartSession opens a session planned for the topic's daily minutes.
func (t *Topics) StartSession(ctx context.Context, topic models.PlanTopic) (*models.StudySession, error) {
	if topic.TopicID == nil {
		return nil, ErrMissingTopicID
	}
	return t.gw.StartSession(ctx, *topic.TopicID, topic.DailyStudyMinutes)
}
