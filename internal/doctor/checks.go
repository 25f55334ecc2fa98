// Package doctor runs diagnostic checks for pidash: config validity, the
// SSH tunnel, ICMP reachability of the Pi and a round trip to the
// management API.
package doctor

import (
	"context"
	"fmt"
	"sync"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

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

// MarshalText writes the status by name in JSON reports.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // --fix can address it
}

// IsIssue reports whether r needs attention.
func (r CheckResult) IsIssue() bool {
	return r.Status == StatusWarn || r.Status == StatusFail
}

// Check is one diagnostic.
type Check interface {
	Name() string

	// Category groups checks in the report, one of the Category* constants.
	Category() string

	// Run executes the check. Checks that touch the network honour ctx.
	Run(ctx context.Context) CheckResult

	// Fix attempts to repair a fixable issue. It returns nil when there
	// is nothing to do.
	Fix() error
}

// Check categories.
const (
	CategoryConfig  = "CONFIG"
	CategorySSH     = "SSH"
	CategoryNetwork = "NETWORK"
	CategoryAPI     = "API"
)

// CategoryOrder is the order categories are reported in.
var CategoryOrder = []string{CategoryConfig, CategorySSH, CategoryNetwork, CategoryAPI}

// RunAll executes checks one after another.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run(ctx)
	}
	return results
}

// RunAllParallel executes checks concurrently. Results keep check order.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run(ctx)
		}(i, check)
	}
	wg.Wait()
	return results
}

// FixAll runs Fix for every fixable issue and re-runs the checks it fixed.
// It returns the updated results and the number of successful fixes.
func FixAll(ctx context.Context, checks []Check, results []CheckResult) ([]CheckResult, int) {
	out := make([]CheckResult, len(results))
	copy(out, results)
	fixed := 0
	for i, r := range out {
		if !r.Fixable || !r.IsIssue() {
			continue
		}
		if err := checks[i].Fix(); err != nil {
			out[i].Message = fmt.Sprintf("%s (fix failed: %v)", r.Message, err)
			continue
		}
		out[i] = checks[i].Run(ctx)
		if !out[i].IsIssue() {
			fixed++
		}
	}
	return out, fixed
}

// GroupByCategory organizes checks by their category.
func GroupByCategory(checks []Check) map[string][]Check {
	grouped := make(map[string][]Check)
	for _, check := range checks {
		cat := check.Category()
		grouped[cat] = append(grouped[cat], check)
	}
	return grouped
}

// CategoryResults is one report section.
type CategoryResults struct {
	Name    string        `json:"name"`
	Results []CheckResult `json:"results"`
}

// ReportSummary counts results by status.
type ReportSummary struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// Report is the full doctor output.
type Report struct {
	Categories []CategoryResults `json:"categories"`
	Summary    ReportSummary     `json:"summary"`
}

// BuildReport groups results by category in CategoryOrder. Unknown
// categories follow in first-seen order.
func BuildReport(checks []Check, results []CheckResult) Report {
	grouped := make(map[string][]CheckResult)
	var extra []string
	known := make(map[string]bool, len(CategoryOrder))
	for _, c := range CategoryOrder {
		known[c] = true
	}
	for i, check := range checks {
		cat := check.Category()
		if _, seen := grouped[cat]; !seen && !known[cat] {
			extra = append(extra, cat)
		}
		grouped[cat] = append(grouped[cat], results[i])
	}

	var report Report
	for _, cat := range append(append([]string{}, CategoryOrder...), extra...) {
		if rs := grouped[cat]; len(rs) > 0 {
			report.Categories = append(report.Categories, CategoryResults{Name: cat, Results: rs})
		}
	}

	counts := CountByStatus(results)
	report.Summary = ReportSummary{
		Pass:     counts[StatusPass],
		Warn:     counts[StatusWarn],
		Fail:     counts[StatusFail],
		Fixable:  FixableCount(results),
		AllClear: !HasIssues(results),
	}
	return report
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result failed.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result failed or warned.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.IsIssue() {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues --fix can address.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && r.IsIssue() {
			count++
		}
	}
	return count
}

// Summary returns a one-line verdict.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
