package cli

import (
	"fmt"

	"github.com/fmueller/voxsearch/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd(app *appState) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Args:        usageArgs(cobra.NoArgs),
		Annotations: map[string]string{annotationSkipPipeline: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !long {
				fmt.Fprintf(cmd.OutOrStdout(), "voxsearch v%s\n", version.Resolve())
				return nil
			}
			info := version.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "voxsearch v%s\ncommit: %s\nbuilt:  %s\ngo:     %s\n", info.Version, info.Commit, info.Date, info.GoVersion)
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	cmd.Flags().BoolVar(&long, "long", false, "Include commit, build date and Go version")
	return cmd
}
