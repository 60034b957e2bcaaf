package ui

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// AssertionDiff renders the left and right operands of a failed assert_eq!
// as a unified diff. Equal or missing operands produce no diff.
func AssertionDiff(left, right string) string {
	if left == "" && right == "" || left == right {
		return ""
	}

	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(left),
		B:        difflib.SplitLines(right),
		FromFile: "left",
		ToFile:   "right",
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return ""
	}
	return strings.TrimRight(s, "\n")
}
