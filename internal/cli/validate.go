package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindpack/pkg/errors"
	"github.com/matzehuels/mindpack/pkg/mindmap"
)

// validateCommand creates the validate command, which checks a document
// without writing a container.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Check that a document can be converted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if err := errors.ValidateInputPath(in); err != nil {
				return err
			}
			raw, err := mindmap.Import(in)
			if err != nil {
				return err
			}

			runner := c.newRunner(cmd.Context())
			defer runner.Close()

			opts := c.Config.PipelineOptions()
			opts.Logger = loggerFromContext(cmd.Context())
			doc, err := runner.Check(raw, opts)
			if err != nil {
				if errors.IsInputError(err) {
					printIssues(mindmap.Issues(err))
				}
				return err
			}

			printSuccess("%s is valid", in)
			printStats(doc.TopicCount(), len(doc.Relationships), 0, false)
			return nil
		},
	}
}

// printIssues lists schema issues, one per line, with their input location.
func printIssues(issues []mindmap.Issue) {
	for _, issue := range issues {
		location := issue.Location
		if location == "" {
			location = "/"
		}
		printDetail("%s: %s", location, issue.Message)
	}
}
