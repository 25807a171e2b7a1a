package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/pipeline"
	"github.com/matzehuels/mindpack/pkg/watch"
)

// convertOpts holds the command-line flags of the root command.
// Flags override the [convert] and [thumbnail] config sections.
type convertOpts struct {
	legacy           bool          // write the legacy container layout
	noThumbnail      bool          // skip thumbnail rendering
	deterministicIDs bool          // sequential instead of random identifiers
	watch            bool          // re-convert whenever the input changes
	debounce         time.Duration // quiet period before a watched change is converted
}

// convertCommand creates the conversion command used as the root command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeOpts := c.pipelineOptions(cmd, opts)
			runner := c.newRunner(cmd.Context())
			defer runner.Close()

			if err := c.convertOnce(cmd.Context(), runner, args[0], args[1], pipeOpts); err != nil {
				if !opts.watch || errors.GetCode(err) == errors.ErrCodeInputMissing {
					return err
				}
				printError("%s", errors.UserMessage(err))
			}
			if !opts.watch {
				return nil
			}
			return c.watchAndConvert(cmd.Context(), runner, args[0], args[1], pipeOpts, opts.debounce)
		},
	}

	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "write the legacy container layout (content.xml, META-INF/manifest.xml, meta.xml)")
	cmd.Flags().BoolVar(&opts.noThumbnail, "no-thumbnail", false, "write an empty thumbnail instead of rendering one")
	cmd.Flags().BoolVar(&opts.deterministicIDs, "deterministic-ids", false, "generate sequential identifiers for reproducible output")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "convert again whenever the input file changes")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "quiet period before a change is converted (with --watch)")

	return cmd
}

// pipelineOptions merges configuration with explicitly set flags.
func (c *CLI) pipelineOptions(cmd *cobra.Command, opts convertOpts) pipeline.Options {
	po := c.Config.PipelineOptions()
	po.Logger = loggerFromContext(cmd.Context())
	if cmd.Flags().Changed("legacy") {
		po.Mode = pipeline.ModeModern
		if opts.legacy {
			po.Mode = pipeline.ModeLegacy
		}
	}
	if cmd.Flags().Changed("no-thumbnail") {
		po.NoThumbnail = opts.noThumbnail
	}
	if cmd.Flags().Changed("deterministic-ids") {
		po.DeterministicIDs = opts.deterministicIDs
	}
	return po
}

// convertOnce converts in to out and prints the outcome line.
func (c *CLI) convertOnce(ctx context.Context, runner *pipeline.Runner, in, out string, opts pipeline.Options) error {
	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinner(ctx, fmt.Sprintf("Converting %s...", filepath.Base(in)))
	spinner.Start()

	result, err := runner.ConvertFile(ctx, in, out, opts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		return err
	}

	printSuccess("Created %s", out)
	printStats(result.Stats.Topics, result.Stats.Relationships, result.Stats.ThumbnailBytes, result.Stats.Retried)
	if result.Stats.Retried {
		printWarning("Thumbnail renderer unavailable; wrote an empty thumbnail")
	}
	prog.done(fmt.Sprintf("Converted %s", filepath.Base(in)))
	return nil
}

// watchAndConvert re-runs the conversion on every change until ctx is done.
// Conversion errors are printed and watching continues.
func (c *CLI) watchAndConvert(ctx context.Context, runner *pipeline.Runner, in, out string, opts pipeline.Options, debounce time.Duration) error {
	printInfo("Watching %s (Ctrl+C to stop)", in)
	err := watch.Run(ctx, in, debounce, func(watch.Change) {
		if err := c.convertOnce(ctx, runner, in, out, opts); err != nil && ctx.Err() == nil {
			printError("%s", errors.UserMessage(err))
		}
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}
