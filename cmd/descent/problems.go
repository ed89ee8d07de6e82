package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/descent/internal/problems"
)

var problemsCmd = &cobra.Command{
	Use:   "problems",
	Short: "List the objective catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTART\tMINIMIZER\tHESSIAN\tEXACT STEP\tDESCRIPTION")
		for _, name := range problems.Names() {
			c, err := problems.Lookup(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%v\t%v\t%s\t%s\t%s\n",
				c.Name, c.Start, c.Minimizer,
				yesNo(c.Problem.Hess != nil), yesNo(c.Exact != nil),
				c.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(problemsCmd)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
