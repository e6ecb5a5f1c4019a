package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the registered operators and groups",
	RunE:  runOps,
}

func init() {
	rootCmd.AddCommand(opsCmd)
}

func runOps(cmd *cobra.Command, _ []string) error {
	p, err := newParser()
	if err != nil {
		printError(cmd, "setup", err)
		return err
	}
	reg := p.Registry()

	ops := reg.Operators()
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Precedence != ops[j].Precedence {
			return ops[i].Precedence > ops[j].Precedence
		}
		return ops[i].Name < ops[j].Name
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATOR\tTEXT\tARITY\tPRECEDENCE")
	for _, op := range ops {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", op.Name, op.Text, op.Arity, op.Precedence)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "GROUP\tOPEN\tCLOSE\tMAX")
	for _, g := range reg.Groups() {
		limit := "-"
		if g.MaxElements > 0 {
			limit = fmt.Sprint(g.MaxElements)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Name, g.Open, g.Close, limit)
	}
	return w.Flush()
}
