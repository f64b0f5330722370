package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prime-website/internal/build"
)

func newTasksCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks [task]",
		Short: "List build tasks, or show how one task is composed",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runTasks,
	}
	cmd.Flags().Bool("tree", false, "show the composition of every task")
	return cmd
}

func (c *cli) runTasks(cmd *cobra.Command, args []string) error {
	registry := build.NewPipeline(c.config, newExecutor(c), c.logger).Registry()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		task, err := registry.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(out, task.Tree())
		return nil
	}

	showTree, _ := cmd.Flags().GetBool("tree")

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tKIND\tDESCRIPTION")
	for _, task := range registry.All() {
		name := task.Name
		if name == build.DefaultTask {
			name += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, task.Mode, task.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if showTree {
		for _, task := range registry.All() {
			if task.Mode == build.ModeStep {
				continue
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, strings.TrimRight(task.Tree(), "\n")+"\n")
		}
	}
	return nil
}
