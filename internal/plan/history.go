package plan

import (
	"context"
	"fmt"
	"log"

	"github.com/interview-prep/studyclient/internal/models"
)

const historyLimit = 30

// History reads the most recent sessions.
type History struct {
	gw     Gateway
	logger *log.Logger
}

func NewHistory(gw Gateway, logger *log.Logger) *History {
	return &History{gw: gw, logger: discardIfNil(logger)}
}

// Load returns up to 30 recent sessions. A failed load reads as no history.
func (h *History) Load(ctx context.Context) []models.SessionRow {
	rows, err := h.gw.ListSessions(ctx, models.SessionListRequest{Limit: historyLimit})
	if err != nil {
		h.logger.Printf("[plan] loading session history: %v", err)
		return nil
	}
	return rows
}

// TopicSummary aggregates the history rows of one topic.
type TopicSummary struct {
	TopicName    string
	TotalMinutes int
	Sessions     int
	// AverageScore is the mean of the sessions' non-null averages.
	AverageScore *float64
}

// ByTopic groups rows by topic name in order of first appearance.
func ByTopic(rows []models.SessionRow) []TopicSummary {
	type acc struct {
		summary TopicSummary
		sum     float64
		scored  int
	}
	var order []string
	byName := make(map[string]*acc)

	for _, r := range rows {
		a, ok := byName[r.TopicName]
		if !ok {
			a = &acc{summary: TopicSummary{TopicName: r.TopicName}}
			byName[r.TopicName] = a
			order = append(order, r.TopicName)
		}
		a.summary.TotalMinutes += r.PlannedDuration
		a.summary.Sessions++
		if r.AverageScore != nil {
			a.sum += *r.AverageScore
			a.scored++
		}
	}

	out := make([]TopicSummary, 0, len(order))
	for _, name := range order {
		a := byName[name]
		if a.scored > 0 {
			avg := a.sum / float64(a.scored)
			a.summary.AverageScore = &avg
		}
		out = append(out, a.summary)
	}
	return out
}

// FormatScore renders a score with one decimal, or an em dash when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f", *score)
}

// FormatDate renders a session start as "Jan 2, 2006", or an em dash.
func FormatDate(ts *models.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return "—"
	}
	return ts.Local().Format("Jan 2, 2006")
}
