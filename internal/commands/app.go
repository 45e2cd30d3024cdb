// Package commands implements the subcommands of the volunteer CLI.
package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/volunteermap/internal/api"
	"github.com/mmynk/volunteermap/internal/eventstore"
	"github.com/mmynk/volunteermap/internal/service"
	"github.com/mmynk/volunteermap/internal/session"
)

// errUsage marks a malformed command line; usage has already been printed.
var errUsage = errors.New("usage")

// App holds the collaborators shared by all subcommands.
type App struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	Sessions *session.Manager
	Store    *eventstore.Store
	Signups  *service.SignupService
	Events   *service.EventService

	// Now is the clock used to hide past events.
	Now func() time.Time
	// ReadPassword reads a password without echoing it. When nil, the
	// password is read as a plain line from In.
	ReadPassword func() (string, error)
	Logger       *slog.Logger

	in *bufio.Reader
}

type command struct {
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commandTable = map[string]command{
	"login":     {"Log in and remember the session", (*App).login},
	"logout":    {"Forget the saved session", (*App).logout},
	"events":    {"List upcoming events on the map", (*App).listEvents},
	"show":      {"Show the details of one event", (*App).showEvent},
	"volunteer": {"Volunteer for an event", (*App).volunteer},
	"create":    {"Create a new event", (*App).createEvent},
}

var commandOrder = []string{"login", "logout", "events", "show", "volunteer", "create"}

// Run dispatches args[0] and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	if len(args) == 0 {
		a.usage()
		return 2
	}
	cmd, ok := commandTable[args[0]]
	if !ok {
		fmt.Fprintf(a.Err, "Unknown command %q\n\n", args[0])
		a.usage()
		return 2
	}

	err := cmd.run(a, ctx, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		a.notify(err)
		return 1
	}
}

func (a *App) usage() {
	fmt.Fprintf(a.Err, "Usage: volunteer <command> [OPTIONS]\n\nCommands:\n")
	for _, name := range commandOrder {
		fmt.Fprintf(a.Err, "  %-10s %s\n", name, commandTable[name].summary)
	}
	fmt.Fprintf(a.Err, "\nEnvironment Variables:\n")
	fmt.Fprintf(a.Err, "  API_BASE_URL     Events API (default: http://localhost:3333)\n")
	fmt.Fprintf(a.Err, "  REQUEST_TIMEOUT  Per-request timeout (default: 15s)\n")
	fmt.Fprintf(a.Err, "  CACHE_PATH       Saved session (default: ./data/session.db)\n")
	fmt.Fprintf(a.Err, "  LOG_LEVEL        debug, info, warn, error (default: info)\n")
}

// notify prints the single user-facing notification for err.
func (a *App) notify(err error) {
	a.Logger.Debug("Command failed", "kind", api.KindOf(err), "error", err)
	n := api.Notify(err)
	fmt.Fprintf(a.Err, "%s: %s [%s]\n", n.Title, n.Message, n.Action)
}

func (a *App) flagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Err)
	fs.Usage = func() {
		fmt.Fprintf(a.Err, "Usage: volunteer %s %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// readLine reads one trimmed line from In.
func (a *App) readLine() (string, error) {
	if a.in == nil {
		a.in = bufio.NewReader(a.In)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// oneArg parses a command that takes a single event ID.
func (a *App) oneArg(name string, args []string) (string, error) {
	fs := a.flagSet(name, "<event-id>")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errUsage
	}
	return fs.Arg(0), nil
}
