package main

import (
	"fmt"
	"strings"

	spec "github.com/nihei9/pslrgen/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var explainFlags = struct {
	state *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "explain",
		Short:   "Print the derivation trees of the counterexamples in a report",
		Example: `  pslrgen explain grammar-report.json --state 5`,
		Args:    cobra.ExactArgs(1),
		RunE:    runExplain,
	}
	explainFlags.state = cmd.Flags().IntP("state", "s", -1, "explain only the conflicts of this state")
	rootCmd.AddCommand(cmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	found := false
	for _, s := range report.States {
		if *explainFlags.state >= 0 && s.Number != *explainFlags.state {
			continue
		}
		for _, c := range s.Counterexamples {
			found = true
			pterm.DefaultSection.Println(fmt.Sprintf("State %v: %v conflict on %v", s.Number, c.Kind, report.Terminals[c.Symbol].Name))
			for _, ex := range []struct {
				label string
				text  string
				d     *spec.Derivation
			}{
				{label: c.Label1, text: c.Example1, d: c.Derivation1},
				{label: c.Label2, text: c.Example2, d: c.Derivation2},
			} {
				pterm.Println(fmt.Sprintf("%v: %v", ex.label, ex.text))
				ll := derivationList(report, ex.d, pterm.LeveledList{}, 0)
				if len(ll) == 0 {
					continue
				}
				pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render()
			}
		}
	}
	if !found {
		pterm.Info.Println("No counterexample found. Compile the grammar with --counterexamples to search them.")
	}

	return nil
}

// derivationList flattens a derivation tree into a leveled list. A node lists the items deriving
// its dotted symbol and the symbol after it one level deeper.
func derivationList(report *spec.Report, d *spec.Derivation, ll pterm.LeveledList, level int) pterm.LeveledList {
	if d == nil {
		return ll
	}

	ll = append(ll, pterm.LeveledListItem{
		Level: level,
		Text:  itemText(report, d.Production, d.Dot, d.Empty),
	})
	ll = derivationList(report, d.Left, ll, level+1)
	if d.Right != nil {
		ll = derivationList(report, d.Right.Left, ll, level+1)
	}
	return ll
}

func itemText(report *spec.Report, prodNum int, dot int, empty []int) string {
	isEmpty := map[int]bool{}
	for _, pos := range empty {
		isEmpty[pos] = true
	}

	prod := report.Productions[prodNum]
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %v →", prod.Number, report.NonTerminals[prod.LHS].Name)
	for i, e := range prod.RHS {
		if i == dot {
			fmt.Fprintf(&b, " •")
		}
		if e > 0 {
			fmt.Fprintf(&b, " %v", report.Terminals[e].Name)
		} else {
			fmt.Fprintf(&b, " %v", report.NonTerminals[e*-1].Name)
		}
		if isEmpty[i] {
			fmt.Fprintf(&b, "(ε)")
		}
	}
	if dot >= len(prod.RHS) {
		fmt.Fprintf(&b, " •")
	}
	return b.String()
}
