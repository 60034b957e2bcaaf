package domain

// Test represents a workspace package to be executed
type Test struct {
	Package      string // Cargo package name (cargo test -p)
	ManifestPath string // Path to the package's Cargo.toml
	Dir          string // Package directory
}

// CaseStatus is the libtest outcome of a single test case
type CaseStatus string

const (
	CasePassed  CaseStatus = "ok"
	CaseFailed  CaseStatus = "FAILED"
	CaseIgnored CaseStatus = "ignored"
)

// CaseResult represents a single test case reported by libtest
type CaseResult struct {
	Package string     `json:"package"`
	Binary  string     `json:"binary"` // e.g. "unittests src/lib.rs", "tests/api.rs", "doctests"
	Name    string     `json:"name"`   // full path, e.g. "parser::tests::parses"
	Status  CaseStatus `json:"status"`
}

// DocTestsBinary is the binary name given to cases reported under "Doc-tests <crate>"
const DocTestsBinary = "doctests"
