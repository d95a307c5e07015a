package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/template"

	"github.com/dekarrin/rosed"
	spec "github.com/nihei9/pslrgen/spec/grammar"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print a report file in readable format",
		Example: `  pslrgen describe grammar-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		panicked := false
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				retErr = fmt.Errorf("an unexpected error occurred: %v", v)
				fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
				return
			}

			retErr = err
			panicked = true
		}

		if retErr != nil && panicked {
			fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
		}
	}()

	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	return writeDescription(os.Stdout, report)
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the report file %s: %w", path, err)
	}
	defer f.Close()

	d, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	report := &spec.Report{}
	err = json.Unmarshal(d, report)
	if err != nil {
		return nil, err
	}

	return report, nil
}

const descTemplate = `# Conflicts

{{ printConflictSummary .Summary }}

# Terminals

{{ printTerminals }}

# Non-terminals

{{ printNonTerminals }}

# Productions

{{ printProductions }}

# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ printActions . }}
{{ range .ResolvedConflict -}}
{{ printResolvedConflict . }}
{{ end -}}
{{ range .SRConflict -}}
{{ printSRConflict . }}
{{ end -}}
{{ range .RRConflict -}}
{{ printRRConflict . }}
{{ end -}}
{{ range .Counterexamples }}
{{ printCounterexample . }}
{{- end }}
{{ end -}}
{{ with .PSLR }}
# Scanner

{{ printScannerContexts . }}
{{ range .Inadequacies -}}
{{ printInadequacy . }}
{{ end -}}
{{ end -}}
`

var tableOpts = rosed.Options{
	TableHeaders:             true,
	NoTrailingLineSeparators: true,
}

func writeDescription(w io.Writer, report *spec.Report) error {
	termName := func(sym int) string {
		if report.Terminals[sym].Alias != "" {
			return report.Terminals[sym].Alias
		}
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	termNames := func(syms []int) string {
		names := make([]string, len(syms))
		for i, sym := range syms {
			names[i] = termName(sym)
		}
		return strings.Join(names, ", ")
	}

	prodText := func(prod *spec.Production, dot int) string {
		var b strings.Builder
		fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
		for i, e := range prod.RHS {
			if i == dot {
				fmt.Fprintf(&b, " •")
			}
			if e > 0 {
				fmt.Fprintf(&b, " %v", termName(e))
			} else {
				fmt.Fprintf(&b, " %v", nonTermName(e*-1))
			}
		}
		if dot >= len(prod.RHS) {
			fmt.Fprintf(&b, " •")
		}
		if dot < 0 && len(prod.RHS) == 0 {
			fmt.Fprintf(&b, " ε")
		}
		return b.String()
	}

	prec := func(p int) string {
		if p == 0 {
			return "-"
		}
		return fmt.Sprintf("%v", p)
	}

	assoc := func(a string) string {
		if a == "" {
			return "-"
		}
		return a
	}

	table := func(data [][]string) string {
		return rosed.Edit("").InsertTableOpts(0, data, 100, tableOpts).String()
	}

	fns := template.FuncMap{
		"printConflictSummary": func(s *spec.ConflictSummary) string {
			if msg := conflictMessage(s); msg != "" {
				return msg
			}
			return "No conflict was detected."
		},
		"printTerminals": func() string {
			data := [][]string{{"Number", "Name", "Alias", "Prec", "Assoc", "Pattern"}}
			for _, t := range report.Terminals[1:] {
				data = append(data, []string{
					fmt.Sprintf("%v", t.Number),
					t.Name,
					t.Alias,
					prec(t.Precedence),
					assoc(t.Associativity),
					t.Pattern,
				})
			}
			return table(data)
		},
		"printNonTerminals": func() string {
			data := [][]string{{"Number", "Name", "Nullable", "First"}}
			for _, n := range report.NonTerminals[1:] {
				data = append(data, []string{
					fmt.Sprintf("%v", n.Number),
					n.Name,
					fmt.Sprintf("%v", n.Nullable),
					termNames(n.First),
				})
			}
			return table(data)
		},
		"printProductions": func() string {
			data := [][]string{{"Number", "Prec", "Assoc", "Production"}}
			for _, p := range report.Productions[1:] {
				data = append(data, []string{
					fmt.Sprintf("%v", p.Number),
					prec(p.Precedence),
					assoc(p.Associativity),
					prodText(p, -1),
				})
			}
			return table(data)
		},
		"printItem": func(item *spec.Item) string {
			return fmt.Sprintf("%4v %v", item.Production, prodText(report.Productions[item.Production], item.Dot))
		},
		"printActions": func(s *spec.State) string {
			data := [][]string{{"Symbol", "Action"}}
			for _, t := range s.Shift {
				data = append(data, []string{termName(t.Symbol), fmt.Sprintf("shift %v", t.State)})
			}
			for _, r := range s.Reduce {
				if r.Default {
					data = append(data, []string{"$default", fmt.Sprintf("reduce %v", r.Production)})
					continue
				}
				data = append(data, []string{termNames(r.LookAhead), fmt.Sprintf("reduce %v", r.Production)})
			}
			for _, sym := range s.Errors {
				data = append(data, []string{termName(sym), "error (nonassociative)"})
			}
			for _, t := range s.GoTo {
				data = append(data, []string{nonTermName(t.Symbol), fmt.Sprintf("goto %v", t.State)})
			}
			return table(data)
		},
		"printResolvedConflict": func(c *spec.ResolvedConflict) string {
			return c.Message
		},
		"printSRConflict": func(c *spec.SRConflict) string {
			return fmt.Sprintf("shift/reduce conflict (reduce %v) on %v: shift adopted", c.Production, termNames(c.Symbols))
		},
		"printRRConflict": func(c *spec.RRConflict) string {
			return fmt.Sprintf("reduce/reduce conflict (%v, %v) on %v: reduce %v adopted", c.Production1, c.Production2, termNames(c.Symbols), c.AdoptedProduction)
		},
		"printCounterexample": func(c *spec.Counterexample) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v conflict on %v\n", c.Kind, termName(c.Symbol))
			fmt.Fprintf(&b, "  %v: %v\n", c.Label1, c.Example1)
			for _, l := range c.Rendered1 {
				fmt.Fprintf(&b, "    %v\n", l)
			}
			fmt.Fprintf(&b, "  %v: %v\n", c.Label2, c.Example2)
			for _, l := range c.Rendered2 {
				fmt.Fprintf(&b, "    %v\n", l)
			}
			return b.String()
		},
		"printScannerContexts": func(r *spec.PSLRReport) string {
			data := [][]string{{"Context", "States"}}
			for i, states := range r.Contexts {
				nums := make([]string, len(states))
				for j, s := range states {
					nums[j] = fmt.Sprintf("%v", s)
				}
				data = append(data, []string{fmt.Sprintf("%v", i), strings.Join(nums, ", ")})
			}
			return table(data)
		},
		"printInadequacy": func(in *spec.Inadequacy) string {
			if in.Kind == spec.InadequacyKindPSLR {
				return fmt.Sprintf("%v: state %v (reduce %v) merges the states %v and %v; FSA state %v selects %v and %v respectively",
					in.Kind, in.State, in.Productions[0], in.Origins[0], in.Origins[1], in.FSAState, termName(in.Tokens[0]), termName(in.Tokens[1]))
			}
			return fmt.Sprintf("%v: state %v, productions %v on %v", in.Kind, in.State, in.Productions, termNames(in.Symbols))
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(descTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, report)
}
