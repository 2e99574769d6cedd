package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// schemasCommand creates the "schemas" command.
func (c *CLI) schemasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List registered schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range c.Registry.Schemas() {
				line := fmt.Sprintf("%-20s constructors: %s", name, joinInts(c.Registry.Versions(name)))
				if dg := c.Registry.DowngradeVersions(name); len(dg) > 0 {
					line += "  downgrades from: " + joinInts(dg)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func joinInts(vs []int) string {
	if len(vs) == 0 {
		return "-"
	}
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, ",")
}
