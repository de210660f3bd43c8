package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/watchdog/internal/doctor"
	"github.com/rileyhilliard/watchdog/internal/errors"
	"github.com/rileyhilliard/watchdog/internal/ui"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	JSON bool
	Fix  bool
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []doctor.Category `json:"categories"`
	Summary    SummaryOutput     `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic.
func doctorCommand(out io.Writer, opts DoctorOptions) error {
	target := doctor.LoadTarget(Config())
	target.LockDir = lockDir
	checks := doctor.All(target)

	report := doctor.Run(checks)
	if opts.Fix {
		report = doctor.FixAll(checks, report.Results())
	}

	if opts.JSON {
		if err := outputDoctorJSON(out, report); err != nil {
			return err
		}
	} else {
		outputDoctorText(out, target, report)
	}

	if doctor.HasFailures(report.Results()) {
		return errors.New(errors.ErrConfig,
			"Some checks failed",
			"Fix the items marked ✗ above, then run 'watchdog doctor' again")
	}
	return nil
}

// outputDoctorJSON writes the report as indented JSON.
func outputDoctorJSON(out io.Writer, report doctor.Report) error {
	results := report.Results()
	counts := doctor.CountByStatus(results)

	output := DoctorOutput{
		Categories: report.Categories,
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// outputDoctorText writes the report grouped by category.
func outputDoctorText(out io.Writer, target *doctor.Target, report doctor.Report) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	source := "config: built-in defaults"
	if target.Path != "" {
		source = "config: " + target.Path
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RenderHeader(ui.HeaderInfo{
		Version: version,
		Tagline: "diagnostic report",
		Source:  source,
	}))
	fmt.Fprintln(out)

	for _, cat := range report.Categories {
		fmt.Fprintln(out, headerStyle.Render(cat.Name))
		fmt.Fprint(out, ui.RenderChecks(checkRows(cat.Results)))
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	results := report.Results()
	summary := doctor.Summary(results)
	if doctor.HasIssues(results) {
		fmt.Fprintln(out, ui.WarningStyle().Render(summary))
		if n := doctor.FixableCount(results); n > 0 {
			fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("%d can be fixed with 'watchdog doctor --fix'", n)))
		}
	} else {
		fmt.Fprintln(out, ui.SuccessStyle().Render(summary))
	}
}

// checkRows converts doctor results for ui.RenderChecks.
func checkRows(results []doctor.CheckResult) []ui.CheckRow {
	rows := make([]ui.CheckRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, ui.CheckRow{
			Status:     r.Status.String(),
			Message:    r.Message,
			Suggestion: r.Suggestion,
		})
	}
	return rows
}
