// Package cli implements the mindpack command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindpack/pkg/buildinfo"
	"github.com/matzehuels/mindpack/pkg/cache"
	"github.com/matzehuels/mindpack/pkg/config"
	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	stderr     io.Writer
	configPath string
	logFile    string
	verbose    bool
	closers    []io.Closer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		stderr: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Close releases resources opened during command setup, such as the log file.
func (c *CLI) Close() error {
	var first error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself converts one document: mindpack <input> <output>.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.convertCommand()
	root.Use = "mindpack <input> <output>"
	root.Short = "mindpack converts mind-map documents to .xmind files"
	root.Long = `mindpack converts a mind-map document (JSON or YAML) into an .xmind container
that mind-mapping applications can open.`
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mindpack/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to this file (rotated)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.setup(cmd)
	}

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, applies the log level and log file, and attaches
// the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	logFile := c.logFile
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile != "" {
		rotator := newLogFile(logFile, cfg.Log)
		c.closers = append(c.closers, rotator)
		c.Logger.SetOutput(io.MultiWriter(c.stderr, rotator))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache backend that
// cannot be opened is logged and replaced by a disabled cache.
func (c *CLI) newRunner(ctx context.Context) *pipeline.Runner {
	logger := loggerFromContext(ctx)
	store, err := c.openCache(ctx)
	if err != nil {
		logger.Warn("thumbnail cache disabled", "err", err)
		store = cache.NewNullCache()
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Config.Cache.Prefix)

	runner := pipeline.NewRunner(store, keyer, logger)
	runner.Renderer = pipeline.NewThumbnailRenderer(store, keyer, c.Config.Thumbnail.DPI)
	return runner
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	opts, err := c.Config.CacheOptions()
	if err != nil {
		return nil, fmt.Errorf("cache options: %w", err)
	}
	return cache.Open(ctx, opts)
}

// =============================================================================
// Error Output
// =============================================================================

// FormatError renders err as the CLI error line.
func FormatError(err error) string {
	return styleIconError.Render(iconError) + " " + errors.UserMessage(err)
}

// PrintError writes the error line for err to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, FormatError(err))
}
