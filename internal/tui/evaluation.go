package tui

import (
	"fmt"
	"strings"

	"github.com/interview-prep/studyclient/internal/models"
)

// RenderEvaluation formats a score out of 10 with its feedback lists.
func RenderEvaluation(ev models.EvaluationResult) string {
	var b strings.Builder

	score := fmt.Sprintf("Score: %d/10", ev.Score)
	switch {
	case ev.Score >= 8:
		b.WriteString(StyleGood.Render(score))
	case ev.Score >= 5:
		b.WriteString(StyleWarn.Render(score))
	default:
		b.WriteString(StyleError.Render(score))
	}
	b.WriteString("\n")

	if len(ev.PositiveFeedback) > 0 {
		b.WriteString(StyleTitle.Render("What went well") + "\n")
		for _, s := range ev.PositiveFeedback {
			b.WriteString("  + " + s + "\n")
		}
	}
	if len(ev.ImprovementAreas) > 0 {
		b.WriteString(StyleTitle.Render("To improve") + "\n")
		for _, s := range ev.ImprovementAreas {
			b.WriteString("  - " + s + "\n")
		}
	}
	if len(ev.Anchors) > 0 {
		b.WriteString(StyleTitle.Render("Anchors") + "\n")
		for _, a := range ev.Anchors {
			b.WriteString(fmt.Sprintf("  %s: %s\n", a.Name, a.Anchor))
		}
	}
	return b.String()
}
