package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/interview-prep/studyclient/internal/models"
	"github.com/interview-prep/studyclient/internal/plan"
	"github.com/interview-prep/studyclient/internal/session"
	"github.com/interview-prep/studyclient/internal/tui"
)

// ── Plan ─────────────────────────────────────────────────

func (a *App) planNew(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan new", flag.ContinueOnError)
	role := fs.String("role", "", "target role (required)")
	text := fs.String("context", "", "background, goals and constraints (required)")
	minutes := fs.Int("time", 0, "minutes available per day")
	weak := fs.String("weak", "", "weak areas, separated by , or ;")
	motivation := fs.String("motivation", "", "low, medium or high")
	yes := fs.Bool("yes", false, "approve without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	creator := plan.NewCreator(a.client)
	p, err := creator.Generate(ctx, plan.CreatorInput{
		Role:          *role,
		Context:       *text,
		TimeAvailable: *minutes,
		WeakAreas:     *weak,
		Motivation:    *motivation,
	})
	if err != nil {
		return err
	}
	printPlan(a.out, p)

	if !*yes && !a.confirm("Approve this plan?") {
		creator.Discard()
		fmt.Fprintln(a.out, "Plan discarded.")
		return nil
	}
	if _, err := creator.Approve(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Plan approved.")
	return nil
}

func (a *App) planView(ctx context.Context) error {
	p, err := a.client.ViewPlan(ctx)
	if err != nil {
		return err
	}
	printPlan(a.out, p)
	return nil
}

func (a *App) planRefine(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan refine", flag.ContinueOnError)
	text := fs.String("context", "", "how things are going or what to change")
	yes := fs.Bool("yes", false, "approve without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	current, err := a.client.ViewPlan(ctx)
	if err != nil {
		return err
	}
	refiner := plan.NewRefiner(a.client, current, a.logger)

	for _, t := range current.Topics {
		if line := plan.ProgressLine(t.Progress); line != "" {
			fmt.Fprintf(a.out, "  %s: %s\n", t.Name, line)
		}
	}
	if !refiner.CheckCanRefine(ctx) {
		fmt.Fprintln(a.out, plan.RefineLimitedNotice)
		return nil
	}

	suggested, err := refiner.SuggestChanges(ctx, *text)
	if errors.Is(err, plan.ErrRefineLimited) {
		fmt.Fprintln(a.out, plan.RefineLimitedNotice)
		return nil
	}
	if err != nil {
		return err
	}

	printOverview(a.out, suggested.Overview)
	for _, ch := range plan.Changes(current, suggested) {
		line := fmt.Sprintf("  %s  Priority %d · %d min/day", ch.Topic.Name, ch.Topic.Priority, ch.Topic.DailyStudyMinutes)
		if ch.MinutesChanged {
			line += fmt.Sprintf(" (was %d min)", ch.PreviousMinutes)
		}
		switch {
		case ch.IsNew:
			line = tui.StyleGood.Render(line + "  new")
		case ch.Changed():
			line = tui.StyleWarn.Render(line)
		}
		fmt.Fprintln(a.out, line)
	}

	if !*yes && !a.confirm("Approve these changes?") {
		refiner.Discard()
		fmt.Fprintln(a.out, "Changes discarded.")
		return nil
	}
	if _, err := refiner.Approve(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Plan updated.")
	return nil
}

// ── Topics & sessions ────────────────────────────────────

func (a *App) topics(ctx context.Context) error {
	topics, err := plan.NewTopics(a.client).List(ctx)
	if err != nil {
		return err
	}
	printTopics(a.out, topics)
	return nil
}

func (a *App) start(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: prep start <topic number>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid topic number %q", args[0])
	}

	views := plan.NewTopics(a.client)
	topics, err := views.List(ctx)
	if err != nil {
		return err
	}
	if n < 1 || n > len(topics) {
		return fmt.Errorf("topic number must be between 1 and %d", len(topics))
	}

	sess, err := views.StartSession(ctx, topics[n-1])
	if errors.Is(err, plan.ErrMissingTopicID) {
		fmt.Fprintln(a.out, plan.MissingTopicIDNotice)
		return nil
	}
	if err != nil {
		return err
	}
	return a.openSession(ctx, sess.ID)
}

func (a *App) suggested(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suggested", flag.ContinueOnError)
	startIt := fs.Bool("start", false, "start the suggested session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	views := plan.NewSuggested(a.client, a.logger)
	sugg := views.Load(ctx)
	if sugg == nil {
		fmt.Fprintln(a.out, "No suggestion right now. Approve a plan first.")
		return nil
	}
	printSuggestion(a.out, sugg)
	if !*startIt {
		return nil
	}

	sess, err := views.Start(ctx, *sugg)
	if err != nil {
		return err
	}
	return a.openSession(ctx, sess.ID)
}

func (a *App) session(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: prep session <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}
	return a.openSession(ctx, id)
}

func (a *App) openSession(ctx context.Context, id int64) error {
	ctrl := session.NewController(id, a.client, session.WithLogger(a.logger))
	dict := a.newDictation()
	defer dict.Close()
	return tui.Run(ctx, ctrl, dict)
}

// ── History & context ────────────────────────────────────

func (a *App) history(ctx context.Context) error {
	rows := plan.NewHistory(a.client, a.logger).Load(ctx)
	printHistory(a.out, rows)
	return nil
}

func (a *App) userContext(ctx context.Context, args []string) error {
	editor := plan.NewContextEditor(a.client, a.logger)
	if len(args) == 0 || args[0] == "get" {
		text := editor.Load(ctx)
		if text == "" {
			fmt.Fprintln(a.out, "No context saved yet.")
			return nil
		}
		fmt.Fprintln(a.out, text)
		return nil
	}
	if args[0] != "set" {
		return fmt.Errorf("usage: prep context get|set <text>")
	}

	text := strings.Join(args[1:], " ")
	if text == "" {
		data, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("reading context: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	msg, err := editor.Save(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

// dashboard loads the plan, the suggestion and the history concurrently.
func (a *App) dashboard(ctx context.Context) error {
	var (
		current *models.Plan
		sugg    *models.SuggestedSession
		rows    []models.SessionRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := a.client.ViewPlan(gctx)
		if err != nil {
			return fmt.Errorf("loading plan: %w", err)
		}
		current = p
		return nil
	})
	g.Go(func() error {
		sugg = plan.NewSuggested(a.client, a.logger).Load(gctx)
		return nil
	})
	g.Go(func() error {
		rows = plan.NewHistory(a.client, a.logger).Load(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printPlan(a.out, current)
	fmt.Fprintln(a.out)
	if sugg != nil {
		printSuggestion(a.out, sugg)
		fmt.Fprintln(a.out)
	}
	printHistory(a.out, rows)
	return nil
}

func (a *App) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	scanner := bufio.NewScanner(a.in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// ── Output ───────────────────────────────────────────────

func printOverview(w io.Writer, o models.PlanOverview) {
	fmt.Fprintln(w, tui.StyleTitle.Render("Plan for "+o.TargetRole))
	fmt.Fprintf(w, "%d min/day · %d weeks\n", o.TotalDailyMinutes, o.TimeHorizonWeeks)
	if o.Rationale != "" {
		fmt.Fprintln(w, tui.StyleSubtle.Render(o.Rationale))
	}
}

func printPlan(w io.Writer, p *models.Plan) {
	printOverview(w, p.Overview)
	fmt.Fprintln(w)
	printTopics(w, p.Topics)
}

func printTopics(w io.Writer, topics []models.PlanTopic) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTOPIC\tPRIORITY\tMIN/DAY\tPROGRESS")
	for i, t := range topics {
		progress := plan.ProgressLine(t.Progress)
		if progress == "" {
			progress = "—"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, t.Name, t.Priority, t.DailyStudyMinutes, progress)
	}
	tw.Flush()
}

func printSuggestion(w io.Writer, s *models.SuggestedSession) {
	fmt.Fprintln(w, tui.StyleTitle.Render("Suggested next session"))
	fmt.Fprintf(w, "%s · %d min\n", s.TopicName, s.PlannedStudyTime)
	if s.Reason != "" {
		fmt.Fprintln(w, tui.StyleSubtle.Render(s.Reason))
	}
}

func printHistory(w io.Writer, rows []models.SessionRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No sessions yet. Start a session from your plan.")
		return
	}

	fmt.Fprintln(w, tui.StyleTitle.Render("Time & score by topic"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range plan.ByTopic(rows) {
		fmt.Fprintf(tw, "%s\t%d min\tavg %s/10\n", s.TopicName, s.TotalMinutes, plan.FormatScore(s.AverageScore))
	}
	tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tDATE\tDURATION\tQUESTIONS\tAVG SCORE")
	for _, r := range rows {
		score := "—"
		if r.AverageScore != nil {
			score = plan.FormatScore(r.AverageScore) + "/10"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d min\t%d\t%s\n", r.TopicName, plan.FormatDate(r.StartTime), r.PlannedDuration, r.QuestionsAnswered, score)
	}
	tw.Flush()
}
