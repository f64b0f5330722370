package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/server"
)

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the inventory page and static files",
		Long: `Serve the inventory page of a site directory.

GET / reads the data file on every request and renders it through the
inventory view. Everything else is served from the site's public directory.

Examples:
  prime serve                       # Serve ./ on port 3000 (or $PORT)
  prime serve --site dist -p 8080   # Serve a built site
  prime serve --watch               # Reload browsers when the site changes`,
		RunE: c.runServe,
	}

	flags := cmd.Flags()
	flags.IntP("port", "p", 3000, "port to serve on (also PORT, PRIME_SERVER_PORT)")
	flags.String("host", "", "host to bind to (default all interfaces)")
	flags.String("site", ".", "site directory holding data/, views/ and public/")
	flags.BoolP("watch", "w", false, "watch the site and live-reload browsers")

	_ = c.viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = c.viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = c.viper.BindPFlag("server.site_dir", flags.Lookup("site"))
	_ = c.viper.BindPFlag("server.watch", flags.Lookup("watch"))

	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(c.config.Server, c.logger)
	if err := srv.Start(ctx); err != nil {
		errors.NewErrorHandler(c.logger).Handle(ctx, err)
		return err
	}
	return nil
}
