// Package main is the terminal client for the todo API. Without arguments it
// opens an interactive list; the login, logout and list subcommands manage
// the stored credential and print todos without the UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jsamuelsen11/go-todo-service/internal/adapters/clients/todoapi"
	"github.com/jsamuelsen11/go-todo-service/internal/client/session"
	"github.com/jsamuelsen11/go-todo-service/internal/client/store"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/config"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-todo-service/internal/platform/logging"
)

const defaultProfile = "local"

const usage = `usage: todo [-profile name] [command]

commands:
  (none)          open the interactive list
  list [-view v]  print todos; v is all, active or completed
  login <token>   store a bearer token for later requests
  logout          revoke the stored token on the server and forget it
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+err.Error()))
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	profile := fs.String("profile", envOr("APP_PROFILE", defaultProfile), "configuration profile")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*profile, config.ClientOnly())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sess, err := session.New(cfg.Client.SessionFile)
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return interactive(cfg, sess)
	}

	switch rest[0] {
	case "login":
		if len(rest) != 2 {
			return errors.New("usage: todo login <token>")
		}
		if err := sess.Save(rest[1]); err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✔ logged in"), mutedStyle.Render("("+sess.Path()+")"))
		return nil

	case "logout":
		if err := revoke(cfg, sess, out); err != nil {
			return err
		}
		if err := sess.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(out, successStyle.Render("✔ logged out"))
		if _, source, _ := sess.Lookup(); source == session.SourceEnv {
			fmt.Fprintln(out, mutedStyle.Render(session.EnvToken+" is still set in the environment"))
		}
		return nil

	case "list":
		return printList(cfg, sess, rest[1:], out)

	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

// newGateway wires the HTTP stack the client talks through.
func newGateway(cfg *config.Config, sess *session.Store, logger *slog.Logger) *todoapi.Client {
	client := httpclient.New(&cfg.Client, "todo-api", nil, logger)
	return todoapi.New(client, sess, logger)
}

// newStore wires the cached state store over the gateway.
func newStore(cfg *config.Config, sess *session.Store, logger *slog.Logger) *store.Store {
	return store.New(newGateway(cfg, sess, logger),
		store.WithLogger(logger),
		store.WithErrorMessage(todoapi.Message),
	)
}

func interactive(cfg *config.Config, sess *session.Store) error {
	logger, closeLog, err := logging.NewFile(cfg.Log.Level, cfg.Log.Format, cfg.Client.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	s := newStore(cfg, sess, logger)
	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	p := tea.NewProgram(newModel(ctx, s, updates), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// revoke asks the server to deny-list a stored token. A server that cannot
// revoke is reported but does not stop the local logout.
func revoke(cfg *config.Config, sess *session.Store, out io.Writer) error {
	if _, source, err := sess.Lookup(); err != nil || source != session.SourceFile {
		return nil
	}

	logger, closeLog, err := logging.NewFile(cfg.Log.Level, cfg.Log.Format, cfg.Client.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Client.Timeout)
	defer cancel()

	if err := newGateway(cfg, sess, logger).Logout(ctx); err != nil {
		fmt.Fprintln(out, mutedStyle.Render("server did not revoke the token: "+todoapi.Message(err)))
	}
	return nil
}

func printList(cfg *config.Config, sess *session.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	view := fs.String("view", string(todo.FilterAll), "all, active or completed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	filter, err := todo.ParseViewFilter(*view)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.NewFile(cfg.Log.Level, cfg.Log.Format, cfg.Client.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx := context.Background()
	s := newStore(cfg, sess, logger)

	// The server filters by status; the full list is only fetched for "all".
	switch filter {
	case todo.FilterActive:
		err = s.FetchByStatus(ctx, false)
	case todo.FilterCompleted:
		err = s.FetchByStatus(ctx, true)
	default:
		err = s.FetchAll(ctx)
	}
	if err != nil {
		return errors.New(s.Snapshot().LastError)
	}

	st := s.Snapshot()
	if len(st.Items) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no todos"))
		return nil
	}
	for _, t := range st.Items {
		box, title := pendingStyle.Render(boxUnchecked), t.Title
		if t.IsCompleted {
			box, title = successStyle.Render(boxChecked), doneStyle.Render(t.Title)
		}
		fmt.Fprintf(out, "%s %s %s\n", box, title, mutedStyle.Render(t.ID))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
