package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/checks"
	_ "github.com/punnlert/modular-tutorial-fritzing/pkg/checks/extra"
)

func listCmd() *cobra.Command {
	var sorted bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := checks.Default()
			if err != nil {
				return usageError(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if sorted {
				for _, d := range reg.Descriptors() {
					fmt.Fprintf(tw, "%s\t%s%s\n", d.Name, d.Description, fixable(d.CanFix))
				}
				return tw.Flush()
			}
			fmt.Fprintln(tw, "Available FZP checks:")
			for _, name := range reg.MetadataNames() {
				e, _ := reg.Metadata(name)
				fmt.Fprintf(tw, "  %s\t%s%s\n", name, e.Description, fixable(e.CanFix))
			}
			fmt.Fprintln(tw, "Available SVG checks:")
			for _, name := range reg.GraphicNames() {
				e, _ := reg.Graphic(name)
				fmt.Fprintf(tw, "  %s\t%s%s\n", name, e.Description, fixable(e.CanFix))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&sorted, "sorted", false, "list every check in one alphabetical table")
	return cmd
}

func fixable(ok bool) string {
	if ok {
		return " (fixable)"
	}
	return ""
}
