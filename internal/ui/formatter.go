package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"ctp/internal/config"
	"ctp/internal/discovery"
	"ctp/internal/domain"
	"ctp/internal/testtree"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	parser *discovery.Parser
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config, parser *discovery.Parser) *Formatter {
	return &Formatter{
		config: cfg,
		parser: parser,
		out:    os.Stdout,
	}
}

// SetOutput redirects the formatter's output
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

// ClearScreen clears the terminal before a summary
func (f *Formatter) ClearScreen() {
	fmt.Fprint(f.out, "\033[2J\033[H")
}

// PrintMetaStats displays the run statistics and, on failure, the tree of failed cases
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString("Test Execution Statistics"))

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Value", Align: text.AlignRight},
	})
	t.AppendRows([]table.Row{
		{"Total Packages", meta.TotalPackages},
		{"Passed Packages", meta.PassedPackages},
		{"Failed Packages", meta.FailedPackages},
		{"Total Test Cases", meta.TotalTestCases},
		{"Failed Test Cases", meta.FailedTestCases},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Workers", meta.Workers},
		{"Timestamp", meta.Timestamp},
	})
	if meta.FailedPackages > 0 {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	if color.NoColor {
		t.SetStyle(table.StyleLight)
	}
	t.Render()

	fmt.Fprintln(f.out)
	if meta.FailedPackages == 0 {
		fmt.Fprintln(f.out, color.GreenString("✓ All tests passed!"))
		return
	}

	fmt.Fprintln(f.out, color.RedString("✗ %d package(s) failed with %d test case failure(s)", meta.FailedPackages, meta.FailedTestCases))
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output)
}

// printFailedTestsTree prints the failed branches of the test tree. Build
// failures have no cases, so their packages are listed from the details.
func (f *Formatter) printFailedTestsTree(output *domain.TestResultsOutput) {
	tree := testtree.Build(output.Cases)
	printed := make(map[string]bool)

	tree.Walk(func(r testtree.Ref, depth int) bool {
		if r.Type() == testtree.NodeTypeRoot {
			return true
		}
		if r.Status() != domain.CaseFailed {
			return false
		}

		indent := strings.Repeat("  ", depth-1) + "|_"
		if depth == 1 {
			indent = ""
		}
		switch r.Type() {
		case testtree.NodeTypePackage:
			printed[r.Name()] = true
			fmt.Fprintln(f.out, color.CyanString("%s%s", indent, r.Label()))
		case testtree.NodeTypeCase:
			fmt.Fprintln(f.out, color.RedString("%s%s", indent, r.Label()))
		default:
			fmt.Fprintln(f.out, color.YellowString("%s%s", indent, r.Label()))
		}
		return true
	})

	for _, failure := range output.Details {
		if printed[failure.Package] {
			continue
		}
		printed[failure.Package] = true
		fmt.Fprintln(f.out, color.CyanString("%s", failure.Package))
		fmt.Fprintln(f.out, color.RedString("  |_%s", failure.TestName))
	}
}

// CountTestCases returns the number of test functions found in the packages' sources
func (f *Formatter) CountTestCases(tests []domain.Test) (int, error) {
	var total int
	for _, test := range tests {
		files, err := f.parser.FindPackageTestCases(test.Dir)
		if err != nil {
			return 0, err
		}
		for _, file := range files {
			total += len(file.Cases)
		}
	}
	return total, nil
}

// PrintTestList prints the workspace packages, optionally with their test functions.
// Packages in failed (from the last run) are marked with [F].
func (f *Formatter) PrintTestList(tests []domain.Test, showTestCases bool, failed map[string]struct{}) error {
	if !showTestCases {
		fmt.Fprintln(f.out, color.GreenString("Found %d package(s):\n", len(tests)))

		t := table.NewWriter()
		t.SetOutputMirror(f.out)
		t.AppendHeader(table.Row{"Package", "Manifest", "Last Run"})
		for _, test := range tests {
			status := ""
			if _, ok := failed[test.Package]; ok {
				status = color.RedString("[F]")
			}
			t.AppendRow(table.Row{test.Package, f.relPath(test.ManifestPath), status})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	}

	fmt.Fprintln(f.out, color.GreenString("Found %d package(s) with test cases:\n", len(tests)))

	for i, test := range tests {
		files, err := f.parser.FindPackageTestCases(test.Dir)
		if err != nil {
			fmt.Fprintln(f.out, color.RedString("Error reading package %s: %v", test.Package, err))
			continue
		}

		failMarker := ""
		if _, ok := failed[test.Package]; ok {
			failMarker = " " + color.RedString("[F]")
		}

		isLastPackage := i == len(tests)-1
		branch, stem := "├── ", "│   "
		if isLastPackage {
			branch, stem = "└── ", "    "
		}
		fmt.Fprintln(f.out, color.CyanString("%s%s", branch, test.Package)+failMarker)

		if len(files) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", stem, color.RedString("(no test cases found)"))
		}
		for j, file := range files {
			fileBranch, fileStem := "├── ", "│   "
			if j == len(files)-1 {
				fileBranch, fileStem = "└── ", "    "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", stem, fileBranch, f.relPath(file.File))

			for k, testCase := range file.Cases {
				caseBranch := "├── "
				if k == len(file.Cases)-1 {
					caseBranch = "└── "
				}
				fmt.Fprintf(f.out, "%s%s%s%s\n", stem, fileStem, caseBranch, color.YellowString(testCase))
			}
		}

		if !isLastPackage {
			fmt.Fprintln(f.out)
		}
	}

	return nil
}

// relPath returns path relative to the workspace for cleaner display
func (f *Formatter) relPath(path string) string {
	rel, err := filepath.Rel(f.config.GetTestPath(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
