package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prime-website/internal/build"
	"github.com/conneroisu/prime-website/internal/watcher"
)

// watchDebounce groups the bursts of events an editor save produces.
const watchDebounce = 300 * time.Millisecond

// newExecutor is replaced in tests to keep npm and docker out of them.
var newExecutor = func(c *cli) build.Executor {
	return build.NewShellExecutor(c.logger)
}

func newBuildCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build [task...]",
		Aliases: []string{"b"},
		Short:   "Run build tasks (default: build)",
		Long: `Run one or more build tasks in order. Without arguments the "build" task
runs: clean, then styles, scripts, copyOther, replaceUrls, copyData,
copyImages and copyDockerfile in parallel, then npmInstall.

Run "prime tasks" for the full list.

Examples:
  prime build                      # Build dist/
  prime build styles scripts       # Rebuild only the bundles
  prime build docker               # Build, then docker build and run
  prime build dockerClean          # Stop and remove container and image
  prime build --watch              # Build, then rebuild on change`,
		RunE: c.runBuild,
	}

	flags := cmd.Flags()
	flags.BoolP("watch", "w", false, "after the build, rebuild assets when sources change")
	flags.String("source", ".", "site source directory")
	flags.StringP("output", "o", "dist", "output directory")

	_ = c.viper.BindPFlag("build.source_dir", flags.Lookup("source"))
	_ = c.viper.BindPFlag("build.output_dir", flags.Lookup("output"))

	return cmd
}

func (c *cli) runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	names := args
	if len(names) == 0 {
		names = []string{build.DefaultTask}
	}

	pipeline := build.NewPipeline(c.config, newExecutor(c), c.logger)
	runner := build.NewRunner(c.logger)

	// Resolve every name first so a typo fails before anything runs.
	tasks := make([]*build.Task, 0, len(names))
	for _, name := range names {
		task, err := pipeline.Registry().Get(name)
		if err != nil {
			return fmt.Errorf("%w (run \"prime tasks\" to list tasks)", err)
		}
		tasks = append(tasks, task)
	}

	for _, task := range tasks {
		if _, err := runner.Run(ctx, task); err != nil {
			return err
		}
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		return nil
	}
	return c.watchBuild(ctx, pipeline, runner)
}

func (c *cli) watchBuild(ctx context.Context, pipeline *build.Pipeline, runner *build.Runner) error {
	fw, err := watcher.NewFileWatcher(watchDebounce, c.logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	loop := build.NewWatchLoop(pipeline, runner, c.logger)
	loop.Prime()
	if err := loop.Watch(fw); err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	c.logger.Info(ctx, "Watching for changes", "source", c.config.Build.SourceDir)
	<-ctx.Done()
	return nil
}
