package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fmueller/voxsearch/internal/keyword"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExtractCmd(app *appState) *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract the search keyword from a transcript",
		Long: `Extracts the keyword following the rightmost trigger phrase. With
arguments, they are joined into one transcript. Without arguments, every
stdin line is a transcript and yields one output line, empty when no
keyword was found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				app.printExtraction(cmd.OutOrStdout(), strings.Join(args, " "), details)
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				app.printExtraction(cmd.OutOrStdout(), scanner.Text(), details)
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read transcripts: %w", err)
			}
			return nil
		},
	}

	bindLoggingFlags(cmd, app)
	bindPipelineFlags(cmd, app)
	cmd.Flags().BoolVar(&details, "details", false, "Print outcome, trigger and keyword as tab-separated columns")
	return cmd
}

func (a *appState) printExtraction(out io.Writer, text string, details bool) {
	res := a.extractor.Extract(text)
	if !res.OK() {
		a.log().Debug("no keyword", zap.String("text", text), zap.String("outcome", string(res.Outcome)))
	}

	if details {
		fmt.Fprintf(out, "%s\t%s\t%s\n", res.Outcome, triggerLabel(res), res.Keyword)
		return
	}
	fmt.Fprintln(out, res.Keyword)
}

func triggerLabel(res keyword.Result) string {
	if res.Outcome == keyword.OutcomeNoTrigger || res.Outcome == keyword.OutcomeDegenerate {
		return "-"
	}
	if res.Candidate.Fuzzy {
		return res.Candidate.Trigger + "~"
	}
	return res.Candidate.Trigger
}
