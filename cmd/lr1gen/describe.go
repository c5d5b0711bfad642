package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	gspec "github.com/nihei9/lr1gen/spec/grammar"
	"github.com/spf13/cobra"
)

var describeFlags = struct {
	source sourceFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "describe [grammar file path]",
		Short:   "Print the report of a grammar in a readable format",
		Example: `  lr1gen describe expr.grammar --conflicts detect`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runDescribe,
	}
	describeFlags.source.register(cmd.Flags())
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args, &describeFlags.source)
	if err != nil {
		return err
	}
	root, err := src.parse()
	if err != nil {
		return err
	}
	res, err := src.generate(root, true)
	if err != nil {
		return err
	}

	return writeReport(os.Stdout, res.Report)
}

const reportTemplate = `# Conflicts

{{ printConflictSummary . }}

# Terminals

{{ range slice .Terminals 1 -}}
{{ printTerminal . }}
{{ end }}
# Non-terminals

{{ range slice .NonTerminals 1 -}}
{{ printNonTerminal . }}
{{ end }}
# Productions

{{ range .Productions -}}
{{ printProduction . }}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}{{ if .Accept }} (accept){{ end }}

{{ range .Items -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{ range .Conflicts -}}
{{ printConflict . }}
{{ end -}}
{{ end }}`

func writeReport(w io.Writer, report *gspec.Report) error {
	termName := func(sym int) string {
		return report.Terminals[sym].Name
	}

	nonTermName := func(sym int) string {
		return report.NonTerminals[sym].Name
	}

	symName := func(sym int) string {
		if sym > 0 {
			return termName(sym)
		}
		return nonTermName(sym * -1)
	}

	fns := template.FuncMap{
		"printConflictSummary": func(report *gspec.Report) string {
			count := 0
			for _, s := range report.States {
				count += len(s.Conflicts)
			}

			if count == 1 {
				return "1 conflict was detected."
			} else if count > 1 {
				return fmt.Sprintf("%v conflicts were detected.", count)
			}
			return "No conflict was detected."
		},
		"printTerminal": func(term *gspec.Terminal) string {
			return fmt.Sprintf("%4v %v", term.Number, term.Name)
		},
		"printNonTerminal": func(nonTerm *gspec.NonTerminal) string {
			nullable := "-"
			if nonTerm.Nullable {
				nullable = "nullable"
			}
			first := make([]string, len(nonTerm.First))
			for i, t := range nonTerm.First {
				first[i] = termName(t)
			}
			return fmt.Sprintf("%4v %v %v FIRST: {%v}", nonTerm.Number, nonTerm.Name, nullable, strings.Join(first, ", "))
		},
		"printProduction": func(prod *gspec.ReportProduction) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			if len(prod.RHS) > 0 {
				for _, e := range prod.RHS {
					fmt.Fprintf(&b, " %v", symName(e))
				}
			} else {
				fmt.Fprintf(&b, " ε")
			}

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printItem": func(item *gspec.Item) string {
			prod := report.Productions[item.Production]

			var b strings.Builder
			fmt.Fprintf(&b, "%v →", nonTermName(prod.LHS))
			for i, e := range prod.RHS {
				if i == item.Dot {
					fmt.Fprintf(&b, " ・")
				}
				fmt.Fprintf(&b, " %v", symName(e))
			}
			if item.Dot >= len(prod.RHS) {
				fmt.Fprintf(&b, " ・")
			}
			fmt.Fprintf(&b, ", %v", termName(item.LookAhead))

			return fmt.Sprintf("%4v %v", prod.Number, b.String())
		},
		"printShift": func(tran *gspec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, termName(tran.Symbol))
		},
		"printReduce": func(reduce *gspec.Reduce) string {
			las := make([]string, len(reduce.LookAhead))
			for i, a := range reduce.LookAhead {
				las[i] = termName(a)
			}
			return fmt.Sprintf("reduce %4v on %v", reduce.Production, strings.Join(las, ", "))
		},
		"printGoTo": func(tran *gspec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, nonTermName(tran.Symbol))
		},
		"printConflict": func(c *gspec.Conflict) string {
			return fmt.Sprintf("%v conflict on %v: %v overwritten by %v", c.Kind, c.Symbol, c.Overwritten, c.Adopted)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, report)
}
