package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/ordering"
)

// run loads the view, applies fn, waits for persistence and prints the result.
func (app *App) run(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := app.open(cmd.Context())
	if err != nil {
		return err
	}
	if fn != nil {
		if err := fn(s); err != nil {
			s.close()
			return explain(err)
		}
	}
	s.close()
	return app.render(cmd, s.engine.View())
}

func newLoginCmd(app *App) *cobra.Command {
	var password string
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Get a token; the first login sets the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			token, err := app.client().Login(cmd.Context(), password)
			if err != nil {
				return err
			}
			if printOnly || app.TokenFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(app.TokenFile), 0o700); err != nil {
				return err
			}
			if err := os.WriteFile(app.TokenFile, []byte(token+"\n"), 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Logged in; token saved to %s\n", app.TokenFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the token instead of saving it")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show tasks grouped as important, regular and completed",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, nil)
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var draft model.TaskDraft
	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Create a task at the top of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Text = strings.Join(args, " ")
			if draft.ListID == "" {
				draft.ListID = app.ListID
			}
			return app.run(cmd, func(s *session) error {
				_, err := s.engine.Create(cmd.Context(), draft)
				return err
			})
		},
	}
	cmd.Flags().BoolVarP(&draft.Important, "important", "i", false, "Mark as important")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "Longer description")
	cmd.Flags().StringVar(&draft.ListID, "to", "", "List id (defaults to --list or the default list)")
	return cmd
}

func newMoveCmd(app *App, dir ordering.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   dir.String() + " <task>",
		Short: fmt.Sprintf("Move a task one step %s within its group", dir),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(s *session) error {
				id, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				moved, err := s.engine.Move(id, dir)
				if err != nil {
					return err
				}
				if !moved {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is already at the %s of its group\n", shortID(id), edge(dir))
				}
				return nil
			})
		},
	}
}

func edge(dir ordering.Direction) string {
	if dir == ordering.Up {
		return "top"
	}
	return "bottom"
}

func newDragCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "drag <task> <target>",
		Short: "Put a task where target is, within the same group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(s *session) error {
				src, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				dst, err := s.resolve(args[1])
				if err != nil {
					return err
				}
				moved, err := s.engine.DragMove(src, dst)
				if err != nil {
					return err
				}
				if !moved && src != dst {
					fmt.Fprintln(cmd.ErrOrStderr(), "tasks are in different groups; nothing moved")
				}
				return nil
			})
		},
	}
}

func newStarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "star <task>",
		Short: "Toggle the important flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(s *session) error {
				id, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				return s.engine.ToggleImportant(id)
			})
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task>",
		Short: "Toggle the completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(s *session) error {
				id, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				return s.engine.ToggleCompleted(id)
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var text, description, listID string
	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Change a task's text, description or list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TaskPatch
			if cmd.Flags().Changed("text") {
				patch.Text = &text
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("to") {
				patch.ListID = &listID
			}
			if patch.Empty() {
				return errors.New("nothing to change; use --text, --description or --to")
			}
			return app.run(cmd, func(s *session) error {
				id, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				return s.engine.Edit(id, patch)
			})
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "New text")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&listID, "to", "", "Move to list id")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(s *session) error {
				id, err := s.resolve(args[0])
				if err != nil {
					return err
				}
				return s.engine.Delete(id)
			})
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count tasks per group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.client().Stats(cmd.Context())
			if err != nil {
				return explain(err)
			}
			return app.writeOut(cmd, stats, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "important %d  regular %d  completed %d  total %d\n",
					stats.Important, stats.Regular, stats.Completed, stats.TotalTasks)
			})
		},
	}
}
