package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/taskmanager/internal/board"
	"github.com/rogersnm/taskmanager/internal/editor"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/render"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		statusStr, _ := cmd.Flags().GetString("status")
		status, err := model.ParseStatus(statusStr)
		if err != nil {
			return err
		}

		b := newBoard()
		b.Search = search
		b.Filter = status
		if err := b.Refresh(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.TaskTable(b.Tasks, ""))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a pending task",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := newBoard()
		b.Description, _ = cmd.Flags().GetString("description")
		if b.Description == "" {
			b.Description = strings.TrimSpace(readStdin())
		}

		if len(args) == 1 {
			b.Title = args[0]
		} else {
			err := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Title").Value(&b.Title),
				huh.NewText().Title("Description").Value(&b.Description),
			)).Run()
			if err != nil {
				return err
			}
		}

		if useEditor, _ := cmd.Flags().GetBool("edit"); useEditor {
			desc, err := editor.Compose(b.Description)
			if err != nil {
				return err
			}
			b.Description = desc
		}

		t, err := b.Add(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created task %s (%s)\n", t.Title, t.ID)
		fmt.Fprintln(out, render.TaskTable(b.Tasks, ""))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := st.FindByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			out, err := render.Task(*t)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}

		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a task's status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := newBoard()
		t, err := st.FindByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		b.StartEdit(*t)

		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			status, err := model.ParseStatus(statusStr)
			if err != nil {
				return err
			}
			b.SetDraftStatus(status)
			return saveEdit(cmd, b)
		}

		opts := make([]huh.Option[model.Status], len(model.Statuses))
		for i, s := range model.Statuses {
			opts[i] = huh.NewOption(string(s), s)
		}
		save := true
		err = huh.NewForm(huh.NewGroup(
			huh.NewSelect[model.Status]().
				Title(fmt.Sprintf("Status for %q", t.Title)).
				Options(opts...).
				Value(&b.DraftStatus),
			huh.NewConfirm().
				Title("Save changes?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&save),
		)).Run()
		if err != nil {
			return err
		}
		if !save {
			b.CancelEdit()
			fmt.Fprintln(cmd.OutOrStdout(), "Edit cancelled")
			return nil
		}
		return saveEdit(cmd, b)
	},
}

func saveEdit(cmd *cobra.Command, b *board.Board) error {
	t, err := b.SaveEdit(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Updated task %s: %s\n", t.ID, t.Status)
	fmt.Fprintln(out, render.TaskTable(b.Tasks, ""))
	return nil
}

// statusCmd builds a shortcut that moves a task straight to status.
func statusCmd(use, short string, status model.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := st.FindByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b := newBoard()
			b.StartEdit(*t)
			b.SetDraftStatus(status)
			return saveEdit(cmd, b)
		},
	}
}

var (
	startCmd    = statusCmd("start", "Start a task (set status to in-progress)", model.StatusInProgress)
	completeCmd = statusCmd("complete", "Complete a task (set status to completed)", model.StatusCompleted)
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := st.FindByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Task: %s (%s)\n", t.Title, t.ID)

		b := newBoard()
		if force, _ := cmd.Flags().GetBool("force"); force {
			b.Confirm = nil
		}
		if err := b.Delete(cmd.Context(), *t); err != nil {
			if errors.Is(err, board.ErrDeclined) {
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
			return err
		}
		fmt.Fprintf(out, "Deleted task %s\n", t.ID)
		fmt.Fprintln(out, render.TaskTable(b.Tasks, ""))
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("search", "k", "", "keyword to match in title or description")
	listCmd.Flags().StringP("status", "s", "", "filter by status (pending, in-progress, completed)")

	addCmd.Flags().StringP("description", "d", "", "task description (markdown)")
	addCmd.Flags().Bool("edit", false, "compose the description in $EDITOR")

	showCmd.Flags().Bool("pretty", false, "render with ANSI styling")

	editCmd.Flags().StringP("status", "s", "", "new status (pending, in-progress, completed)")

	deleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(deleteCmd)
}
