package session

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/interview-prep/studyclient/internal/api"
	"github.com/interview-prep/studyclient/internal/auth"
	"github.com/interview-prep/studyclient/internal/devserver"
	"github.com/interview-prep/studyclient/internal/models"
)

func TestController_AgainstDevServer(t *testing.T) {
	const secret = "session-test-secret"
	srv := httptest.NewServer(devserver.NewRouter(devserver.NewStore(), devserver.Options{Secret: []byte(secret)}))
	defer srv.Close()

	ctx := context.Background()
	client := api.New(srv.URL, auth.NewDevTokenProvider(secret, "session-user").Token)

	suggested, err := client.SuggestNewPlan(ctx, models.SuggestNewPlanRequest{
		Role:           "Engineering Manager",
		RawUserContext: "First manager loop in a while.",
	})
	if err != nil {
		t.Fatalf("SuggestNewPlan: %v", err)
	}
	if _, err := client.ApprovePlan(ctx, *suggested); err != nil {
		t.Fatalf("ApprovePlan: %v", err)
	}
	plan, err := client.ViewPlan(ctx)
	if err != nil {
		t.Fatalf("ViewPlan: %v", err)
	}
	sess, err := client.StartSession(ctx, *plan.Topics[0].TopicID, 25)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	c := NewController(sess.ID, client)
	defer c.Close()
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := c.Snapshot().Timer.PlannedMinutes; got != 25 {
		t.Errorf("expected 25 planned minutes, got %d", got)
	}

	if err := c.GenerateQuestions(ctx); err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if err := c.Select(0); err != nil {
		t.Fatalf("Select: %v", err)
	}
	c.SetAnswer("I set the goal, aligned the team, and we cut incidents by half.")
	if err := c.SubmitAnswer(ctx); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if c.Snapshot().Evaluation == nil {
		t.Fatalf("expected evaluation")
	}

	if err := c.GenerateOutline(ctx); err != nil {
		t.Fatalf("GenerateOutline: %v", err)
	}
	c.SetOutlineText("Situation: edited in the test")
	if err := c.SaveOutline(ctx); err != nil {
		t.Fatalf("SaveOutline: %v", err)
	}
	c.SetOutlineText("")
	if err := c.LoadOutline(ctx); err != nil {
		t.Fatalf("LoadOutline: %v", err)
	}
	if got := c.Snapshot().OutlineText; got != "Situation: edited in the test" {
		t.Errorf("expected saved outline, got %q", got)
	}

	if err := c.EndSession(ctx); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if !c.Snapshot().Ended() {
		t.Errorf("expected ended session")
	}
}
