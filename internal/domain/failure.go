package domain

// TestFailure represents a failed test case
type TestFailure struct {
	TestName   string   `json:"test_name"`
	Package    string   `json:"package"`
	Binary     string   `json:"binary"`
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace"` // every line of the captured stdout block
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Left       string   `json:"left,omitempty"`  // assert_eq! left operand
	Right      string   `json:"right,omitempty"` // assert_eq! right operand
	Resolved   bool     `json:"resolved,omitempty"`
}
