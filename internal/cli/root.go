// Package cli implements the tasky command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/client"
	"github.com/BuzzLyutic/tasky/internal/config"
	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/ordering"
	"github.com/BuzzLyutic/tasky/internal/worker"
)

type App struct {
	APIURL    string
	Token     string
	Workers   int
	Format    string
	ListID    string
	Verbose   bool
	TokenFile string

	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	// Ошибки окружения не критичны: флаги всё равно можно задать явно.
	env, err := config.LoadCLI()
	if err != nil {
		env = config.CLIConfig{APIURL: "http://localhost:8080", Workers: 1}
	}

	cmd := &cobra.Command{
		Use:          "tasky",
		Short:        "Ordered task lists from the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  tasky login
  tasky add "Buy milk" --important
  tasky ls
  tasky up 01HZX
  tasky drag 01HZX 01HZY
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch app.Format {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unknown format %q (text|json|yaml)", app.Format)
		}
		if app.Verbose {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			app.logger = logger
		} else {
			app.logger = zap.NewNop()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", env.APIURL, "API base URL (TASKY_API_URL)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", env.Token, "Bearer token (TASKY_TOKEN); defaults to the saved login")
	cmd.PersistentFlags().IntVar(&app.Workers, "workers", env.Workers, "Concurrent persistence calls (TASKY_WORKERS)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "text", "Output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&app.ListID, "list", "", "Only show tasks of this list")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log persistence calls to stderr")
	cmd.PersistentFlags().StringVar(&app.TokenFile, "token-file", defaultTokenFile(), "Where login stores the token")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newMoveCmd(app, ordering.Up))
	cmd.AddCommand(newMoveCmd(app, ordering.Down))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newStarCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newListsCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newCalendarCmd(app))

	return cmd
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tasky", "token")
}

func (app *App) client() *client.Client {
	token := app.Token
	if token == "" && app.TokenFile != "" {
		if raw, err := os.ReadFile(app.TokenFile); err == nil {
			token = strings.TrimSpace(string(raw))
		}
	}
	return client.New(app.APIURL, client.WithToken(token))
}

// session is one loaded engine plus the pool persisting its changes.
type session struct {
	api    *client.Client
	engine *ordering.Engine
	pool   *worker.Pool
}

func (app *App) open(ctx context.Context) (*session, error) {
	api := app.client()
	pool := worker.NewPool(app.logger, app.Workers, 64)
	pool.Start(ctx)

	opts := []ordering.Option{ordering.WithLogger(app.logger)}
	if app.ListID != "" {
		listID := app.ListID
		opts = append(opts, ordering.WithFilter(model.TaskFilter{ListID: &listID}))
	}
	engine := ordering.New(api, api, pool, opts...)

	if err := engine.Load(ctx); err != nil {
		pool.Stop()
		return nil, explain(err)
	}
	return &session{api: api, engine: engine, pool: pool}, nil
}

// close waits for pending writes and stops the pool.
func (s *session) close() {
	s.engine.Wait()
	s.pool.Stop()
}

// resolve accepts a full id or a unique prefix of one.
func (s *session) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var matches []string
	for _, t := range s.engine.View().Order {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(strings.ToLower(t.ID), strings.ToLower(ref)) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", errNotFound(ref)
	case 1:
		return matches[0], nil
	default:
		return "", errAmbiguous(ref, matches)
	}
}

// explain turns transport errors into hints for the user.
func explain(err error) error {
	if client.IsStatus(err, 401) {
		return fmt.Errorf("%w (run `tasky login` first)", err)
	}
	if errors.Is(err, ordering.ErrTaskNotFound) {
		return fmt.Errorf("%w; run `tasky ls` again", err)
	}
	return err
}
