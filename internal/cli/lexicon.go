package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLexiconCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Print the effective lexicon as YAML",
		Long: `Prints the word lists the keyword pipeline runs with, after --lexicon
and --trigger are applied. The output is a valid --lexicon file.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := app.lexicon.Marshal()
			if err != nil {
				return fmt.Errorf("encode lexicon: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	bindLoggingFlags(cmd, app)
	bindPipelineFlags(cmd, app)
	return cmd
}
