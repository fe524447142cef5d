// Command auditctl audits personnel records offline, without the server.
//
//	auditctl audit record.json --cadre teaching --as-of 2026-01-01
//	auditctl simulate --entry-grade 8 --first-appointment 2018-01-01
//	auditctl diff before.json after.json
//
// Exit codes: 0 ok, 1 usage or runtime error, 2 when --fail-on is met or
// diff --exit-code finds a change, 3 for unreadable input.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/personnel-audit/audit"
	"github.com/warp/personnel-audit/factory"
	"github.com/warp/personnel-audit/generic"
	"github.com/warp/personnel-audit/salary"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// cadreFlags select the cadre and salary table shared by audit and simulate.
type cadreFlags struct {
	cadre       string
	cadreFile   string
	salaryTable string
	asOf        string
}

type auditFlags struct {
	cadreFlags
	format string
	failOn string
}

type simulateFlags struct {
	cadreFlags
	entryGrade       int
	firstAppointment string
}

func main() {
	root := newRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Audit civil service personnel records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	var af auditFlags
	auditCmd := &cobra.Command{
		Use:   "audit <record.json>",
		Short: "Audit one employee snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.OutOrStdout(), args[0], af)
		},
	}
	addCadreFlags(auditCmd, &af.cadreFlags)
	auditCmd.Flags().StringVar(&af.format, "format", "json", "Output format: json or text")
	auditCmd.Flags().StringVar(&af.failOn, "fail-on", "", "Exit 2 if severity >= this level (LOW, MEDIUM, HIGH, CRITICAL)")

	var sf simulateFlags
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Compute the theoretical grade and step for an entry grade and date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.OutOrStdout(), sf)
		},
	}
	addCadreFlags(simulateCmd, &sf.cadreFlags)
	simulateCmd.Flags().IntVar(&sf.entryGrade, "entry-grade", 0, "Entry grade level (0 = default entry grade)")
	simulateCmd.Flags().StringVar(&sf.firstAppointment, "first-appointment", "", "Date of first appointment (YYYY-MM-DD)")
	_ = simulateCmd.MarkFlagRequired("first-appointment")

	var exitCode bool
	diffCmd := &cobra.Command{
		Use:   "diff <before.json> <after.json>",
		Short: "Compare the flag reasons of two audit results",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1], exitCode)
		},
	}
	diffCmd.Flags().BoolVar(&exitCode, "exit-code", false, "Exit 2 when the reasons differ")

	root.AddCommand(auditCmd, simulateCmd, diffCmd)
	return root
}

func addCadreFlags(cmd *cobra.Command, f *cadreFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.cadre, "cadre", "general", "Preset cadre: general, teaching or medical")
	fs.StringVar(&f.cadreFile, "cadre-file", "", "Cadre JSON file (overrides --cadre)")
	fs.StringVar(&f.salaryTable, "salary-table", "", "Salary table YAML (default: built-in CONPSS)")
	fs.StringVar(&f.asOf, "as-of", "", "Audit date (YYYY-MM-DD, default today)")
}

// =============================================================================
// COMMANDS
// =============================================================================

func runAudit(w io.Writer, path string, f auditFlags) error {
	var failOn audit.Severity
	if f.failOn != "" {
		failOn = audit.ParseSeverity(f.failOn)
		if failOn == audit.SeverityNone {
			return codeError(1, "invalid --fail-on %q", f.failOn)
		}
	}

	var snap audit.Snapshot
	if err := readJSON(path, &snap); err != nil {
		return err
	}
	engine, params, asOf, err := f.cadreFlags.resolve()
	if err != nil {
		return err
	}
	if snap.Cadre == "" {
		snap.Cadre = params.ID
	}
	snap.Params = params.Params

	res := engine.AuditAt(snap, asOf)

	switch f.format {
	case "json":
		if err := writeJSON(w, res); err != nil {
			return err
		}
	case "text":
		writeText(w, res)
	default:
		return codeError(1, "invalid --format %q", f.format)
	}

	if failOn != audit.SeverityNone && res.IsFlagged && res.Severity.AtLeast(failOn) {
		return codeError(2, "")
	}
	return nil
}

func runSimulate(w io.Writer, f simulateFlags) error {
	first, err := generic.ParseDate(f.firstAppointment)
	if err != nil {
		return codeError(1, "invalid --first-appointment: %s", err)
	}
	if f.entryGrade < 0 || f.entryGrade > 17 {
		return codeError(1, "--entry-grade must be between 1 and 17")
	}
	engine, params, _, err := f.cadreFlags.resolve()
	if err != nil {
		return err
	}
	return writeJSON(w, engine.Simulate(f.entryGrade, first, params.Params))
}

func runDiff(w io.Writer, beforePath, afterPath string, exitCode bool) error {
	var before, after audit.Result
	if err := readJSON(beforePath, &before); err != nil {
		return err
	}
	if err := readJSON(afterPath, &after); err != nil {
		return err
	}

	change := audit.DiffReasons(before.FlagReason, after.FlagReason)
	fmt.Fprintf(w, "severity: %s -> %s\n", severityLabel(before.Severity), severityLabel(after.Severity))
	fmt.Fprintf(w, "raised %d, cleared %d, unchanged %d\n", len(change.Added), len(change.Removed), change.Unchanged)
	if change.Unified != "" {
		fmt.Fprint(w, change.Unified)
	}

	if exitCode && change.Changed() {
		return codeError(2, "")
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type resolvedCadre struct {
	ID     string
	Params audit.Params
}

// resolve builds the engine, the cadre params and the audit date.
func (f cadreFlags) resolve() (*audit.Engine, resolvedCadre, generic.TimePoint, error) {
	var rc resolvedCadre

	js := ""
	if f.cadreFile != "" {
		b, err := os.ReadFile(f.cadreFile)
		if err != nil {
			return nil, rc, generic.TimePoint{}, codeError(3, "reading cadre: %s", err)
		}
		js = string(b)
	} else {
		preset, ok := factory.Presets()[strings.ToLower(f.cadre)]
		if !ok {
			return nil, rc, generic.TimePoint{}, codeError(1, "unknown cadre %q", f.cadre)
		}
		js = preset
	}
	params, cj, err := factory.NewCadreFactory().ParseCadre(js)
	if err != nil {
		return nil, rc, generic.TimePoint{}, codeError(1, "invalid cadre: %s", err)
	}
	rc = resolvedCadre{ID: cj.ID, Params: *params}

	table := salary.DefaultTable()
	if f.salaryTable != "" {
		table, err = salary.LoadTable(f.salaryTable)
		if err != nil {
			return nil, rc, generic.TimePoint{}, codeError(3, "loading salary table: %s", err)
		}
	}

	asOf := generic.Today()
	if f.asOf != "" {
		asOf, err = generic.ParseDate(f.asOf)
		if err != nil {
			return nil, rc, generic.TimePoint{}, codeError(1, "invalid --as-of: %s", err)
		}
	}
	fixed := asOf.Time
	engine := audit.NewEngine(table, audit.WithClock(func() time.Time { return fixed }))
	return engine, rc, asOf, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return codeError(3, "reading %s: %s", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return codeError(3, "parsing %s: %s", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(w io.Writer, res audit.Result) {
	fmt.Fprintf(w, "as of %s: ", res.AsOf)
	if !res.IsFlagged {
		fmt.Fprintln(w, "clean")
	} else {
		fmt.Fprintf(w, "%s, %d finding(s)\n", res.Severity, len(res.FlagReason))
		for _, r := range res.FlagReason {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	p := res.Progression
	fmt.Fprintf(w, "expected: GL %02d step %02d after %d year(s)\n", p.Grade, p.Step, p.ServiceYears)
}

func severityLabel(s audit.Severity) string {
	if s == audit.SeverityNone {
		return "NONE"
	}
	return string(s)
}
