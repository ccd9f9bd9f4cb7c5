package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/todokeeper/internal/client/api"
	"github.com/spf13/cobra"
)

func newTodoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage your todos",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <title>",
			Short: "Add a todo",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.authorized(cmd.Context(), func(ctx context.Context) error {
					t, err := app.client.CreateTodo(ctx, strings.Join(args, " "))
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", t.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List your todos, newest first",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.authorized(cmd.Context(), func(ctx context.Context) error {
					list, err := app.client.ListTodos(ctx)
					if err != nil {
						return err
					}
					return printTodos(cmd.OutOrStdout(), list)
				})
			},
		},
		newPatchCmd(app, "done <id>", "Mark a todo completed", func([]string) api.TodoPatch {
			done := true
			return api.TodoPatch{Completed: &done}
		}),
		newPatchCmd(app, "undone <id>", "Mark a todo not completed", func([]string) api.TodoPatch {
			done := false
			return api.TodoPatch{Completed: &done}
		}),
		newPatchCmd(app, "rename <id> <title>", "Change a todo's title", func(rest []string) api.TodoPatch {
			title := strings.Join(rest, " ")
			return api.TodoPatch{Title: &title}
		}),
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a todo",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.authorized(cmd.Context(), func(ctx context.Context) error {
					if err := app.client.DeleteTodo(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					return nil
				})
			},
		},
	)

	return cmd
}

// newPatchCmd builds a subcommand that sends the patch built from the
// arguments following the todo id.
func newPatchCmd(app *App, use, short string, build func(rest []string) api.TodoPatch) *cobra.Command {
	argCheck := cobra.ExactArgs(1)
	if strings.Contains(use, "<title>") {
		argCheck = cobra.MinimumNArgs(2)
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authorized(cmd.Context(), func(ctx context.Context) error {
				t, err := app.client.UpdateTodo(ctx, args[0], build(args[1:]))
				if err != nil {
					return err
				}
				return printTodos(cmd.OutOrStdout(), []api.Todo{*t})
			})
		},
	}
}

func printTodos(w io.Writer, list []api.Todo) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No todos")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tCREATED\tTITLE")
	for _, t := range list {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\n", t.ID, mark, t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Title)
	}
	return tw.Flush()
}
