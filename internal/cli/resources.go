package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/tasky/internal/client"
	"github.com/BuzzLyutic/tasky/internal/model"
)

func newListsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Show task lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := app.client().Lists(cmd.Context())
			if err != nil {
				return explain(err)
			}
			return app.writeLists(cmd, lists)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>...",
			Short: "Create a list",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := app.client().CreateList(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return explain(err)
				}
				return app.writeLists(cmd, []model.List{list})
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>...",
			Short: "Rename a list",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := app.client().RenameList(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return explain(err)
				}
				return app.writeLists(cmd, []model.List{list})
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a list; its tasks move to the default list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.client().DeleteList(cmd.Context(), args[0]); err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "list %s deleted\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func (app *App) writeLists(cmd *cobra.Command, lists []model.List) error {
	return app.writeOut(cmd, lists, func() {
		for _, l := range lists {
			idColor.Fprintf(cmd.OutOrStdout(), "%-28s ", l.ID)
			fmt.Fprintln(cmd.OutOrStdout(), l.Name)
		}
	})
}

func newNotesCmd(app *App) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Show notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var day *time.Time
			if date != "" {
				d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
				if err != nil {
					return fmt.Errorf("bad --date %q, want YYYY-MM-DD", date)
				}
				day = &d
			}
			notes, err := app.client().Notes(cmd.Context(), day)
			if err != nil {
				return explain(err)
			}
			return app.writeNotes(cmd, notes)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Only notes created on this day (YYYY-MM-DD)")
	cmd.AddCommand(newNoteAddCmd(app), newNoteEditCmd(app), newNoteRemoveCmd(app))
	return cmd
}

func newNoteAddCmd(app *App) *cobra.Command {
	var draft client.NoteDraft
	cmd := &cobra.Command{
		Use:   "add <title>...",
		Short: "Create a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Title = strings.Join(args, " ")
			note, err := app.client().CreateNote(cmd.Context(), draft)
			if err != nil {
				return explain(err)
			}
			return app.writeNotes(cmd, []model.Note{note})
		},
	}
	cmd.Flags().StringVarP(&draft.Content, "content", "c", "", "Note body")
	cmd.Flags().BoolVarP(&draft.Important, "important", "i", false, "Mark as important")
	return cmd
}

func newNoteEditCmd(app *App) *cobra.Command {
	var title, content string
	var important bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title, body or important flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.NotePatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("content") {
				patch.Content = &content
			}
			if cmd.Flags().Changed("important") {
				patch.Important = &important
			}
			if patch.Title == nil && patch.Content == nil && patch.Important == nil {
				return errors.New("nothing to change; use --title, --content or --important")
			}
			note, err := app.client().UpdateNote(cmd.Context(), args[0], patch)
			if err != nil {
				return explain(err)
			}
			return app.writeNotes(cmd, []model.Note{note})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New body")
	cmd.Flags().BoolVarP(&important, "important", "i", false, "Set or clear the important flag")
	return cmd
}

func newNoteRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client().DeleteNote(cmd.Context(), args[0]); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "note %s deleted\n", args[0])
			return nil
		},
	}
}

func (app *App) writeNotes(cmd *cobra.Command, notes []model.Note) error {
	return app.writeOut(cmd, notes, func() {
		w := cmd.OutOrStdout()
		if len(notes) == 0 {
			fmt.Fprintln(w, "No notes.")
			return
		}
		for _, n := range notes {
			idColor.Fprintf(w, "%s  ", shortID(n.ID))
			if n.Important {
				importantColor.Fprintln(w, n.Title)
			} else {
				fmt.Fprintln(w, n.Title)
			}
			if n.Content != "" {
				fmt.Fprintf(w, "    %s\n", n.Content)
			}
		}
	})
}

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Count tasks and notes per day of a month (default: this month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now().UTC()
			if len(args) == 1 {
				m, err := time.ParseInLocation("2006-01", args[0], time.UTC)
				if err != nil {
					return fmt.Errorf("bad month %q, want YYYY-MM", args[0])
				}
				month = m
			}

			days, err := app.client().Calendar(cmd.Context(), month.Year(), month.Month())
			if err != nil {
				return explain(err)
			}
			return app.writeOut(cmd, days, func() {
				renderCalendar(cmd.OutOrStdout(), month, days)
			})
		},
	}
}

// renderCalendar prints the month heading and only the days with activity.
func renderCalendar(w io.Writer, month time.Time, days []model.CalendarDay) {
	headingColor.Fprintln(w, month.Format("January 2006"))
	active := 0
	for _, d := range days {
		if d.TodoCount == 0 && d.NoteCount == 0 {
			continue
		}
		active++
		fmt.Fprintf(w, "  %s  tasks %d  notes %d\n", d.Date, d.TodoCount, d.NoteCount)
	}
	if active == 0 {
		fmt.Fprintln(w, "  nothing this month")
	}
}
