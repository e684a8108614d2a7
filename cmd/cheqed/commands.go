package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/vito/cheqed/pkg/cheqed"
	"github.com/vito/cheqed/pkg/plan"
	"github.com/vito/cheqed/pkg/printer"
	"github.com/vito/cheqed/pkg/qterm"
	"github.com/vito/cheqed/pkg/rpc"
	"github.com/vito/cheqed/pkg/sequent"
)

func (a *app) parseCmd() *cobra.Command {
	var isSequent bool

	cmd := &cobra.Command{
		Use:   "parse [flags] TEXT",
		Short: "Parse a term and print it back fully parenthesized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if isSequent {
				seq, err := env.ParseSequent(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, env.PrintSequent(seq))
				a.dump(out, seq)
				a.printFree(out, seq.FreeVariables())
				return nil
			}

			term, err := env.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, env.PrintTerm(term))
			a.dump(out, term)
			a.printFree(out, qterm.FreeVariables(term))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&isSequent, "sequent", "s", false, "Parse a sequent instead of a term")
	return cmd
}

// dump prints the structure of v when debugging.
func (a *app) dump(out io.Writer, v any) {
	if a.cfg.Debug {
		_, _ = pretty.Fprintf(out, "%# v\n", v)
	}
}

func (a *app) printFree(out io.Writer, vars qterm.VarSet) {
	for _, v := range vars.Sorted() {
		fmt.Fprintln(out, "  "+a.styles.Dim.Render(printer.Typed(v)))
	}
}

func (a *app) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [GOAL]",
		Short: "List the rules, or those that apply to a goal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env()
			if err != nil {
				return err
			}

			ds := env.Rules()
			if len(args) == 1 {
				goal, err := env.ParseSequent(args[0])
				if err != nil {
					return err
				}
				ds, err = env.ApplicableRules(goal)
				if err != nil {
					return err
				}
			}

			width := 0
			for _, d := range ds {
				width = max(width, lipgloss.Width(d.Signature()))
			}
			out := cmd.OutOrStdout()
			for _, d := range ds {
				sig := d.Signature()
				pad := strings.Repeat(" ", width-lipgloss.Width(sig))
				fmt.Fprintf(out, "%s%s  %s\n", a.styles.Rule.Render(sig), pad, a.styles.Dim.Render(d.Doc))
			}
			return nil
		},
	}
}

func (a *app) proveCmd() *cobra.Command {
	var expand, compact, outline bool

	cmd := &cobra.Command{
		Use:   "prove [flags] GOAL PLAN",
		Short: "Run a plan against a goal and show each step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env()
			if err != nil {
				return err
			}
			goal, err := env.ParseSequent(args[0])
			if err != nil {
				return err
			}
			p, err := env.Evaluate(args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case compact:
				fmt.Fprintln(out, env.Compact(p))
				return nil
			case outline:
				fmt.Fprint(out, env.Outline(p))
				return nil
			case expand:
				step, err := p.Step(goal)
				if err != nil {
					return err
				}
				fmt.Fprint(out, env.RenderStep(step))
				return nil
			}

			tr, err := env.Trace(p, goal)
			if err != nil {
				return err
			}
			a.printTrace(out, env, tr)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "Show what compound rules expand to")
	cmd.Flags().BoolVarP(&compact, "compact", "c", false, "Print the plan on one line")
	cmd.Flags().BoolVarP(&outline, "outline", "o", false, "Print the plan one rule per line")
	cmd.MarkFlagsMutuallyExclusive("expand", "compact", "outline")
	return cmd
}

func (a *app) printTrace(out io.Writer, env *cheqed.Environment, tr *cheqed.Trace) {
	for _, line := range tr.Lines {
		indent := strings.Repeat("  ", line.Depth)
		fmt.Fprintln(out, indent+a.styles.Goal.Render(env.PrintSequent(line.Goal)))
		if _, open := line.Plan.(*plan.Assumption); open {
			fmt.Fprintln(out, indent+"  "+a.styles.Open.Render("?"))
		} else {
			fmt.Fprintln(out, indent+"  "+a.styles.Dim.Render("by ")+a.styles.Rule.Render(env.PrintProof(line.Plan)))
		}
	}
	a.printOpen(out, env, tr.Open)
}

func (a *app) printOpen(out io.Writer, env *cheqed.Environment, open []*sequent.Sequent) {
	if len(open) == 0 {
		fmt.Fprintln(out, a.styles.Qed.Render("qed"))
		return
	}
	fmt.Fprintln(out, a.styles.Open.Render(fmt.Sprintf("%d open:", len(open))))
	for i, g := range open {
		fmt.Fprintf(out, "  %s %s\n", a.styles.Dim.Render(fmt.Sprintf("[%d]", i)), env.PrintSequent(g))
	}
}

func (a *app) advanceCmd() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "advance [flags] GOAL PLAN RULE",
		Short: "Replace an open goal of a plan with a rule",
		Long: `Replace an open goal of a plan with a rule and print the new plan
and the goals it leaves open. Start from the plan "assumption()".`,
		Example: `  cheqed advance '|- a or not a' 'assumption()' 'right_disjunction()'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env()
			if err != nil {
				return err
			}
			goal, err := env.ParseSequent(args[0])
			if err != nil {
				return err
			}
			p, err := env.Evaluate(args[1])
			if err != nil {
				return err
			}
			next, err := env.Advance(p, goal, index, args[2])
			if err != nil {
				return err
			}
			open, err := env.Subgoals(next, goal)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, a.styles.Rule.Render(env.PrintProof(next)))
			a.printOpen(out, env, open)
			return nil
		},
	}
	cmd.Flags().IntVarP(&index, "index", "k", 0, "Index of the open goal to replace")
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Check the proofs in YAML proof scripts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scripts []*cheqed.Script
			for _, path := range args {
				script, err := cheqed.ReadScript(path)
				if err != nil {
					return err
				}
				scripts = append(scripts, script)
			}

			results, err := cheqed.CheckScripts(cmd.Context(), a.cache, a.theories(), scripts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, res := range results {
				name := a.styles.Dim.Render(res.Script+":") + " " + res.Proof
				if res.OK() {
					fmt.Fprintf(out, "%s   %s\n", a.styles.Qed.Render("ok"), name)
					continue
				}
				failed++
				fmt.Fprintf(out, "%s %s\n", a.styles.Failed.Render("FAIL"), name)
				fmt.Fprintf(out, "     %s\n", res.Err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d proofs failed", failed, len(results))
			}
			return nil
		},
	}
}

func (a *app) theoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "theory",
		Short: "Show the declarations of the loaded theories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.env()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, a.styles.Heading.Render("theories"), strings.Join(env.Theories(), ", "))

			fmt.Fprintln(out, a.styles.Heading.Render("constants"))
			for _, c := range env.Constants() {
				fmt.Fprintf(out, "  %s\n", printer.Typed(c))
			}

			fmt.Fprintln(out, a.styles.Heading.Render("precedence"))
			for _, line := range strings.Split(strings.TrimRight(env.Syntax().String(), "\n"), "\n") {
				fmt.Fprintf(out, "  %s\n", line)
			}

			fmt.Fprintln(out, a.styles.Heading.Render("definitions"))
			for _, d := range env.Definitions() {
				fmt.Fprintf(out, "  %s\n", env.PrintTerm(d.Equation))
			}

			fmt.Fprintln(out, a.styles.Heading.Render("axioms"))
			for _, ax := range env.Axioms() {
				fmt.Fprintf(out, "  %s  %s\n", a.styles.Rule.Render(ax.Name), env.PrintTerm(ax.Formula))
			}
			return nil
		},
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve JSON-RPC requests on stdin and stdout, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			logger.InfoContext(cmd.Context(), "starting JSON-RPC server", "theories", a.theories())

			svc := rpc.NewService(a.cache, a.theories())
			srv := jrpc2.NewServer(svc.Assigner(), &jrpc2.ServerOptions{
				Logger: func(text string) { logger.Debug(text) },
			})
			srv.Start(channel.Line(stdrwc{}, stdrwc{}))

			logger.InfoContext(cmd.Context(), "JSON-RPC server closed", "error", srv.Wait())
			return nil
		},
	}
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
