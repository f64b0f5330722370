// Package cmd provides the prime command-line interface.
//
// Configuration is resolved in this order, highest priority first:
//  1. Command-line flags (--port, --output, --log-level, ...)
//  2. PRIME_ prefixed environment variables (PRIME_SERVER_PORT, PRIME_BUILD_OUTPUT_DIR, ...)
//     and PORT for the listening port
//  3. The config file: --config, else PRIME_CONFIG_FILE, else .prime.yml
//  4. Built-in defaults
//
// Variables from .env files are loaded into the environment before any of
// this is resolved and never override variables that are already set.
package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/prime-website/internal/config"
	"github.com/conneroisu/prime-website/internal/errors"
	"github.com/conneroisu/prime-website/internal/logging"
)

// cli carries state shared by the subcommands of one root command.
type cli struct {
	viper    *viper.Viper
	cfgFile  string
	envFiles []string
	stderr   io.Writer

	config *config.Config
	logger logging.Logger
}

// Execute runs the prime command line and reports a failure on stderr.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", errors.FormatError(err))
	}
	return err
}

// NewRootCommand builds the command tree around a fresh viper instance.
func NewRootCommand() *cobra.Command {
	c := &cli{viper: viper.New(), stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "prime",
		Short: "Serve and build the Prime vehicle inventory site",
		Long: `prime serves the vehicle inventory page of a site directory and builds the
site's static assets into a deployable bundle.

Quick Start:
  prime serve                 Serve the site in the current directory on :3000
  prime serve --watch         Serve with live reload
  prime build                 Build dist/ (clean, assets, npm install)
  prime build docker          Build and run the Docker image
  prime tasks                 List the build tasks
  prime init lot              Create a starter site in ./lot`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initialize,
	}
	root.SetGlobalNormalizationFunc(normalizeFlagName)

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is .prime.yml, can also use PRIME_CONFIG_FILE env var)")
	flags.StringSliceVar(&c.envFiles, "env-file", nil, "dotenv files to load (default .env when present)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	_ = c.viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = c.viper.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newServeCommand(c),
		newBuildCommand(c),
		newTasksCommand(c),
		newInitCommand(c),
		newVersionCommand(),
	)
	return root
}

// normalizeFlagName accepts --log_level as well as --log-level.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// initialize loads .env files and the configuration, then builds the logger.
func (c *cli) initialize(cmd *cobra.Command, _ []string) error {
	c.stderr = cmd.ErrOrStderr()

	if err := c.loadEnvFiles(); err != nil {
		return err
	}

	if err := c.readConfigFile(); err != nil {
		return err
	}
	config.BindEnv(c.viper)

	cfg, err := config.LoadFrom(c.viper)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c.config = cfg
	c.logger = logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: c.stderr,
	})
	return nil
}

func (c *cli) loadEnvFiles() error {
	if len(c.envFiles) > 0 {
		if err := godotenv.Load(c.envFiles...); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

// readConfigFile reads the explicit config file, which must exist, or the
// default .prime.yml, which may be absent.
func (c *cli) readConfigFile() error {
	explicit := c.cfgFile
	if explicit == "" {
		explicit = os.Getenv(config.EnvPrefix + "_CONFIG_FILE")
	}

	if explicit != "" {
		c.viper.SetConfigFile(explicit)
	} else {
		c.viper.AddConfigPath(".")
		c.viper.SetConfigType("yaml")
		c.viper.SetConfigName(".prime")
	}

	err := c.viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(c.stderr, "Using config file:", c.viper.ConfigFileUsed())
		return nil
	case explicit == "" && stderrors.As(err, &notFound):
		return nil
	default:
		return fmt.Errorf("failed to read config file: %w", err)
	}
}
