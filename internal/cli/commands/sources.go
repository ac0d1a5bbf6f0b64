package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"addonsmith/internal/cli/repo"
)

func newSourcesCmd(ctx *appContext) *cobra.Command {
	var datadir string
	var readmePath string

	cmd := &cobra.Command{
		Use:   "sources [source...]",
		Short: "List the add-on sources a build would fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sources, err := resolveBuildInputs(cmd, ctx, args, datadir, readmePath)
			if err != nil {
				return err
			}
			for _, src := range sources {
				fmt.Fprintln(cmd.OutOrStdout(), describeSource(src))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&datadir, "datadir", "d", ".", "directory the repository is assembled into")
	cmd.Flags().StringVar(&readmePath, "readme", "README.md", "README listing default add-on sources")
	return cmd
}

func describeSource(src repo.Source) string {
	kind, name := "local", src.Raw
	if src.Remote() {
		kind, name = "remote", src.URL
	}
	desc := fmt.Sprintf("%-6s %s", kind, name)
	if src.Branch != "" {
		desc += " branch=" + src.Branch
	}
	if src.Subpath != "" {
		desc += " subpath=" + src.Subpath
	}
	if src.Checksum != "" {
		desc += " checksum=" + src.Checksum
	}
	return desc
}
