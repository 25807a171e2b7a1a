package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindpack/pkg/archive"
)

// inspectCommand creates the inspect command, which lists container entries.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.xmind>",
		Short: "List the entries of an .xmind container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := archive.ListFile(args[0])
			if err != nil {
				return err
			}

			printInfo("%s", args[0])
			width := 0
			for _, info := range infos {
				width = max(width, len(info.Name))
			}
			for _, info := range infos {
				printKeyValue(info.Name, describeEntry(info), width+2)
			}
			return nil
		},
	}
}

func describeEntry(info archive.Info) string {
	if info.UncompressedSize == 0 {
		return "empty"
	}
	return fmt.Sprintf("%s (%s compressed)",
		formatBytes(int(info.UncompressedSize)), formatBytes(int(info.CompressedSize)))
}
