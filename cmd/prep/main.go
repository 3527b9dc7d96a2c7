package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/interview-prep/studyclient/internal/api"
	"github.com/interview-prep/studyclient/internal/auth"
	"github.com/interview-prep/studyclient/internal/config"
	"github.com/interview-prep/studyclient/internal/dictation"
)

const usage = `Usage: prep <command> [flags]

Commands:
  plan new      suggest a new study plan and approve it
  plan view     show the approved plan
  plan refine   suggest changes to the plan (once per day)
  topics        list plan topics
  start <n>     start a session for topic n and open it
  suggested     show the suggested next session (-start to begin it)
  history       recent sessions and per-topic totals
  context get   print the saved user context
  context set   save the user context
  dashboard     plan, suggestion and history at a glance
  session <id>  open a study session
`

// App carries the wiring shared by every subcommand.
type App struct {
	cfg    config.Config
	client *api.Client
	logger *log.Logger
	out    io.Writer
	in     io.Reader
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()

	logger, closeLog, err := openLogger(cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()

	app := &App{
		cfg:    cfg,
		client: newClient(cfg, logger),
		logger: logger,
		out:    os.Stdout,
		in:     os.Stdin,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.run(ctx, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", api.Message(err))
		stop()
		closeLog()
		os.Exit(1)
	}
}

// openLogger writes to PREP_LOG_FILE when set. Otherwise logs are dropped so
// they never draw over the terminal UI.
func openLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "", log.LstdFlags), func() { f.Close() }, nil
}

func newClient(cfg config.Config, logger *log.Logger) *api.Client {
	var tokens auth.TokenProvider
	switch {
	case cfg.APIToken != "":
		tokens = auth.StaticToken(cfg.APIToken)
	case cfg.DevSecret != "":
		tokens = auth.NewDevTokenProvider(cfg.DevSecret, cfg.DevUser).Token
	default:
		tokens = auth.NoToken()
	}

	opts := []api.Option{api.WithLogger(logger), api.WithPrefix(cfg.APIPrefix)}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}
	return api.New(cfg.APIURL, tokens, opts...)
}

func (a *App) newDictation() *dictation.Adapter {
	if a.cfg.DictationCmd == "" {
		return dictation.NewAdapter(nil, dictation.Unavailable)
	}
	rec := dictation.NewCommandRecognizer(a.cfg.DictationCmd, a.logger)
	return dictation.NewAdapter(rec, dictation.CommandAvailable(a.cfg.DictationCmd),
		dictation.WithLang(a.cfg.DictationLang),
		dictation.WithLogger(a.logger),
	)
}

func (a *App) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "plan":
		if len(rest) == 0 {
			return fmt.Errorf("usage: prep plan new|view|refine")
		}
		switch rest[0] {
		case "new":
			return a.planNew(ctx, rest[1:])
		case "view":
			return a.planView(ctx)
		case "refine":
			return a.planRefine(ctx, rest[1:])
		}
		return fmt.Errorf("unknown plan command %q", rest[0])
	case "topics":
		return a.topics(ctx)
	case "start":
		return a.start(ctx, rest)
	case "suggested":
		return a.suggested(ctx, rest)
	case "history":
		return a.history(ctx)
	case "context":
		return a.userContext(ctx, rest)
	case "dashboard":
		return a.dashboard(ctx)
	case "session":
		return a.session(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}
