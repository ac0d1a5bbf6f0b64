package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"addonsmith/internal/cli/shared"
)

func newChecksumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksum <file>...",
		Short: "Write md5 sidecar files for repository artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := shared.WriteChecksumFile(path); err != nil {
					return newExitCodeError(shared.ExitChecksumFailed, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", path, shared.ChecksumSuffix)
			}
			return nil
		},
	}
	return cmd
}
