package domain

import "time"

// TestResult represents the result of running cargo test for one package
type TestResult struct {
	Package  string        // Package that was executed
	Success  bool          // Whether cargo test exited cleanly
	Output   string        // Raw combined output
	Error    error         // Error if execution failed
	Duration time.Duration // Time taken to execute
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	LaunchID        string  `json:"launch_id,omitempty"`
	TotalPackages   int     `json:"total_packages"`
	FailedPackages  int     `json:"failed_packages"`
	PassedPackages  int     `json:"passed_packages"`
	TotalTestCases  int     `json:"total_test_cases"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Cases   []CaseResult    `json:"cases"`
	Details []TestFailure   `json:"details"`
}

// FailedPackages returns the set of packages with at least one failure
func (o *TestResultsOutput) FailedPackages() map[string]struct{} {
	failed := make(map[string]struct{})
	for _, d := range o.Details {
		failed[d.Package] = struct{}{}
	}
	return failed
}

func caseKey(pkg, binary, name string) string {
	return pkg + "\x00" + binary + "\x00" + name
}

// Merge folds the outcome of a rerun into o. Failures in replaced and any
// failure of a rerun case are dropped before the new failures are added.
func (o *TestResultsOutput) Merge(replaced []TestFailure, cases []CaseResult, failures []TestFailure) {
	drop := make(map[string]bool, len(replaced)+len(cases))
	for _, f := range replaced {
		drop[caseKey(f.Package, f.Binary, f.TestName)] = true
	}

	index := make(map[string]int, len(o.Cases))
	for i, c := range o.Cases {
		index[caseKey(c.Package, c.Binary, c.Name)] = i
	}
	for _, c := range cases {
		key := caseKey(c.Package, c.Binary, c.Name)
		drop[key] = true
		if i, ok := index[key]; ok {
			o.Cases[i].Status = c.Status
			continue
		}
		index[key] = len(o.Cases)
		o.Cases = append(o.Cases, c)
	}

	details := o.Details[:0]
	for _, d := range o.Details {
		if !drop[caseKey(d.Package, d.Binary, d.TestName)] {
			details = append(details, d)
		}
	}
	o.Details = append(details, failures...)

	failedCases := 0
	for _, c := range o.Cases {
		if c.Status == CaseFailed {
			failedCases++
		}
	}
	o.Meta.TotalTestCases = len(o.Cases)
	o.Meta.FailedTestCases = failedCases
	o.Meta.FailedPackages = len(o.FailedPackages())
	o.Meta.PassedPackages = o.Meta.TotalPackages - o.Meta.FailedPackages
	if o.Meta.PassedPackages < 0 {
		o.Meta.PassedPackages = 0
	}
}
