package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

// UsageError marks a failure caused by how a command was invoked rather
// than by what it did.
type UsageError struct {
	Command *cobra.Command
	Err     error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func flagUsageError(cmd *cobra.Command, err error) error {
	return &UsageError{Command: cmd, Err: err}
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &UsageError{Command: cmd, Err: err}
		}
		return nil
	}
}

// UsageHint returns the command path whose help covers err. Unknown
// subcommands are resolved by cobra before any command runs, so they
// surface as plain errors and point at root.
func UsageHint(root *cobra.Command, err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) && usageErr.Command != nil {
		return usageErr.Command.CommandPath(), true
	}
	if root != nil && strings.HasPrefix(err.Error(), "unknown command ") {
		return root.CommandPath(), true
	}
	return "", false
}
