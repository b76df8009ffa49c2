package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manakau-com/node-nlopt/internal/native"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List algorithms and which backends support them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := native.Names()
		libs := make([]native.Library, len(names))
		for i, name := range names {
			lib, err := native.Lookup(name)
			if err != nil {
				return err
			}
			libs[i] = lib
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprint(tw, "ID\tALGORITHM\tGRADIENT\tGLOBAL")
		for _, name := range names {
			fmt.Fprintf(tw, "\t%s", name)
		}
		fmt.Fprintln(tw)

		for _, a := range native.Algorithms() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s", int(a), a, yesNo(a.NeedsGradient()), yesNo(a.Global()))
			for _, lib := range libs {
				fmt.Fprintf(tw, "\t%s", yesNo(supports(lib, a)))
			}
			fmt.Fprintln(tw)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

func supports(lib native.Library, a native.Algorithm) bool {
	h, code := lib.Create(a, 1)
	if code != native.Success || h == nil {
		return false
	}
	h.Destroy()
	return true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
