package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prime-website/internal/version"
)

func newVersionCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for prime.

Examples:
  prime version                 # Show short version
  prime version --detailed      # Show detailed version info
  prime version --format json   # Output as JSON`,
		// Version output needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			detailed, _ := cmd.Flags().GetBool("detailed")
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(version.GetBuildInfo())
			case "text":
				if detailed {
					fmt.Fprintln(out, version.GetDetailedVersion())
					return nil
				}
				fmt.Fprintf(out, "prime %s\n", version.GetShortVersion())
				return nil
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().Bool("detailed", false, "Show detailed version information")
	return cmd
}
