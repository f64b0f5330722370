package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prime-website/internal/scaffolding"
)

func newInitCommand(c *cli) *cobra.Command {
	var opts scaffolding.GenerateOptions

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter inventory site",
		Long: `Create a starter site with a view, a partial, sample data, styles,
scripts and a Dockerfile that prime can serve and build.

Examples:
  prime init                    # Scaffold into the current directory
  prime init lot --port 8080    # Scaffold into ./lot exposing port 8080
  prime init --force            # Overwrite existing files`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Dir = "."
			if len(args) == 1 {
				opts.Dir = args[0]
			}
			if opts.Name == "" {
				abs, err := filepath.Abs(opts.Dir)
				if err != nil {
					return err
				}
				opts.Name = strings.ToLower(filepath.Base(abs))
			}
			if !cmd.Flags().Changed("port") {
				opts.Port = c.config.Server.Port
			}

			written, err := scaffolding.NewSiteGenerator().Generate(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range written {
				fmt.Fprintln(out, "created", path)
			}
			c.logger.Info(cmd.Context(), "Site created", "dir", opts.Dir, "files", len(written))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "site name (default is the directory name)")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 3000, "port the container exposes")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite existing files")
	return cmd
}
