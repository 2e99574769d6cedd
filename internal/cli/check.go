package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/typegraph"
)

// checkCommand creates the "check" command.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Decode documents and report errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := loggerFromContext(cmd.Context())
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				v, err := typegraph.DecodeFile(path, c.decodeOpt(l))
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s\n", localize(err))
					l.Debug("decode failed", "file", path, "err", err)
					continue
				}
				fmt.Fprintf(out, "ok   %s %s\n", path, rootLabel(v))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}
}

func rootLabel(v typegraph.Value) string {
	if r := v.Ref(); r != nil {
		return refLabel(r)
	}
	return v.Kind().String()
}

// localizedError renders a decode error in the configured language while
// keeping the original error reachable through errors.As.
type localizedError struct{ err *typegraph.Error }

func (e localizedError) Error() string {
	msg := e.err.Localized()
	if e.err.File != "" {
		msg = e.err.File + ": " + msg
	}
	return msg
}

func (e localizedError) Unwrap() error { return e.err }

func localize(err error) error {
	if e, ok := typegraph.AsError(err); ok {
		return localizedError{err: e}
	}
	return err
}
