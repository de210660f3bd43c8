// Package doctor runs diagnostic checks against a watchdog setup: the config
// file, the serial source, the notifier and the metrics endpoint.
package doctor

import (
	"fmt"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText lets JSON output carry the status name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // Whether --fix can address this
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "SERIAL", "NOTIFY").
	Category() string

	// Run executes the check and returns the result.
	Run() CheckResult

	// Fix attempts to automatically fix the issue (if supported).
	// Returns nil if fix was successful or not applicable.
	Fix() error
}

// Category is one group of results in a Report.
type Category struct {
	Name    string        `json:"name"`
	Results []CheckResult `json:"results"`
}

// Report holds results grouped by category, in the order the checks were given.
type Report struct {
	Categories []Category `json:"categories"`
}

// Results flattens the report.
func (r Report) Results() []CheckResult {
	var out []CheckResult
	for _, c := range r.Categories {
		out = append(out, c.Results...)
	}
	return out
}

// RunAll executes all checks in order and returns the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// Run executes checks and groups their results by category.
func Run(checks []Check) Report {
	return group(checks, RunAll(checks))
}

// FixAll runs Fix on every check whose result is fixable, then re-runs the
// whole set. A failed fix is reported as that check's result.
func FixAll(checks []Check, results []CheckResult) Report {
	failed := make(map[int]CheckResult)
	for i, r := range results {
		if !r.Fixable || r.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err != nil {
			failed[i] = CheckResult{
				Name:    r.Name,
				Status:  StatusFail,
				Message: fmt.Sprintf("Fix failed: %v", err),
			}
		}
	}

	fresh := RunAll(checks)
	for i, r := range failed {
		fresh[i] = r
	}
	return group(checks, fresh)
}

func group(checks []Check, results []CheckResult) Report {
	var report Report
	index := make(map[string]int)
	for i, check := range checks {
		cat := check.Category()
		pos, ok := index[cat]
		if !ok {
			pos = len(report.Categories)
			index[cat] = pos
			report.Categories = append(report.Categories, Category{Name: cat})
		}
		report.Categories[pos].Results = append(report.Categories[pos].Results, results[i])
	}
	return report
}

// All returns the full check list for t.
func All(t *Target) []Check {
	return []Check{
		&ConfigFileCheck{Target: t},
		&ConfigSchemaCheck{Target: t},
		&RulesCheck{Target: t},
		&SourceCheck{Target: t},
		&BaudRateCheck{Target: t},
		&PortLockCheck{Target: t},
		&NotifierCheck{Target: t},
		&MetricsEndpointCheck{Target: t},
	}
}

// ConfigChecks is the subset 'watchdog config check' runs.
func ConfigChecks(t *Target) []Check {
	return []Check{
		&ConfigFileCheck{Target: t},
		&ConfigSchemaCheck{Target: t},
		&RulesCheck{Target: t},
	}
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && (r.Status == StatusFail || r.Status == StatusWarn) {
			count++
		}
	}
	return count
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
