package parser

import "ctp/internal/domain"

// Parser parses test results and extracts failures
type Parser interface {
	ParseFailure(result domain.TestResult) []domain.TestFailure
	ParseCases(result domain.TestResult) []domain.CaseResult
	ParseTestCounts(result domain.TestResult) (passed, failed int)
}
