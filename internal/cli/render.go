package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/ordering"
	"github.com/BuzzLyutic/tasky/internal/partition"
)

const shortIDLen = 8

var (
	headingColor   = color.New(color.Bold)
	importantColor = color.New(color.FgYellow)
	completedColor = color.New(color.Faint, color.CrossedOut)
	idColor        = color.New(color.FgCyan)
	noticeColor    = color.New(color.FgRed)
)

type viewOutput struct {
	State  string           `json:"state" yaml:"state"`
	Notice string           `json:"notice,omitempty" yaml:"notice,omitempty"`
	Groups partition.Groups `json:"groups" yaml:"groups"`
}

func (app *App) render(cmd *cobra.Command, v ordering.View) error {
	if v.Notice != nil {
		noticeColor.Fprintf(cmd.ErrOrStderr(), "! %v\n", v.Notice)
	}

	out := viewOutput{State: v.State.String(), Groups: v.Groups}
	if v.Notice != nil {
		out.Notice = v.Notice.Error()
	}
	return app.writeOut(cmd, out, func() {
		renderGroups(cmd.OutOrStdout(), v.Groups)
	})
}

// writeOut prints data as json or yaml, or calls text for the text format.
func (app *App) writeOut(cmd *cobra.Command, data any, text func()) error {
	w := cmd.OutOrStdout()
	switch app.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		text()
		return nil
	}
}

func renderGroups(w io.Writer, g partition.Groups) {
	if g.Len() == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with `tasky add`.")
		return
	}
	section(w, "Important", g.Important, importantColor)
	section(w, "Tasks", g.Regular, nil)
	section(w, "Completed", g.Completed, completedColor)
}

func section(w io.Writer, title string, tasks []model.Task, c *color.Color) {
	if len(tasks) == 0 {
		return
	}
	headingColor.Fprintf(w, "%s (%d)\n", title, len(tasks))
	for _, t := range tasks {
		idColor.Fprintf(w, "  %s  ", shortID(t.ID))
		if c != nil {
			c.Fprintln(w, t.Text)
		} else {
			fmt.Fprintln(w, t.Text)
		}
	}
}

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}
