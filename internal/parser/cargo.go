package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
	"ctp/internal/domain"
	"ctp/internal/trace"
)

// BuildFailure names failures of packages that did not report any test case
const BuildFailure = "(build)"

var (
	runningPattern    = regexp.MustCompile(`^\s*Running (.+?)(?: \(.*\))?\s*$`)
	docTestsPattern   = regexp.MustCompile(`^\s*Doc-tests \S+`)
	caseLinePattern   = regexp.MustCompile(`^test (.+?) \.\.\. (ok|FAILED|ignored)\b`)
	resultLinePattern = regexp.MustCompile(`^test result: \w+\. (\d+) passed; (\d+) failed`)
	blockPattern      = regexp.MustCompile(`^---- (.+?) std(?:out|err) ----$`)
	panicPattern      = regexp.MustCompile(`^thread '(.+?)' panicked at `)
	leftPattern       = regexp.MustCompile("^\\s*left: `?(.*?)`?,?$")
	rightPattern      = regexp.MustCompile("^\\s*right: `?(.*?)`?,?$")
)

// CargoParser parses libtest output produced by cargo test
type CargoParser struct{}

// NewCargoParser creates a new CargoParser
func NewCargoParser() *CargoParser {
	return &CargoParser{}
}

func lines(result domain.TestResult) []string {
	output := stripansi.Strip(result.Output)
	output = strings.ReplaceAll(output, "\r\n", "\n")
	return strings.Split(output, "\n")
}

// binaryOf returns the binary a "Running"/"Doc-tests" line announces, if any
func binaryOf(line string) (string, bool) {
	if m := runningPattern.FindStringSubmatch(line); len(m) == 2 {
		return m[1], true
	}
	if docTestsPattern.MatchString(line) {
		return domain.DocTestsBinary, true
	}
	return "", false
}

// ParseTestCounts sums passed and failed cases over every "test result:" line.
// Returns (1,0) for success or (0,1) for failure when no summary was printed (package-level fallback).
func (p *CargoParser) ParseTestCounts(result domain.TestResult) (passed, failed int) {
	seen := false
	for _, line := range lines(result) {
		m := resultLinePattern.FindStringSubmatch(line)
		if len(m) < 3 {
			continue
		}
		var ps, fs int
		fmt.Sscanf(m[1], "%d", &ps)
		fmt.Sscanf(m[2], "%d", &fs)
		passed += ps
		failed += fs
		seen = true
	}
	if seen {
		return passed, failed
	}

	if result.Success {
		return 1, 0
	}
	return 0, 1
}

// ParseCases extracts every "test <name> ... <status>" line, attributed to its binary
func (p *CargoParser) ParseCases(result domain.TestResult) []domain.CaseResult {
	var cases []domain.CaseResult
	binary := ""
	for _, line := range lines(result) {
		if b, ok := binaryOf(line); ok {
			binary = b
			continue
		}
		m := caseLinePattern.FindStringSubmatch(line)
		if len(m) < 3 {
			continue
		}
		cases = append(cases, domain.CaseResult{
			Package: result.Package,
			Binary:  binary,
			Name:    m[1],
			Status:  domain.CaseStatus(m[2]),
		})
	}
	return cases
}

// ParseFailure parses the captured output blocks of failed cases
func (p *CargoParser) ParseFailure(result domain.TestResult) []domain.TestFailure {
	var failures []domain.TestFailure
	str := lines(result)
	binary := ""

	for i := 0; i < len(str); i++ {
		if b, ok := binaryOf(str[i]); ok {
			binary = b
			continue
		}
		m := blockPattern.FindStringSubmatch(str[i])
		if len(m) < 2 {
			continue
		}

		end := blockEnd(str, i+1)
		failure := p.parseBlock(m[1], str[i+1:end])
		failure.Package = result.Package
		failure.Binary = binary
		failures = append(failures, failure)
		i = end - 1
	}

	if len(failures) == 0 && !result.Success {
		failures = append(failures, p.buildFailure(result, str))
	}
	return failures
}

// blockEnd returns the index of the first line after the block starting at start
func blockEnd(str []string, start int) int {
	for j := start; j < len(str); j++ {
		line := str[j]
		if blockPattern.MatchString(line) || line == "failures:" || strings.HasPrefix(line, "test result:") {
			return j
		}
		if _, ok := binaryOf(line); ok {
			return j
		}
	}
	return len(str)
}

func (p *CargoParser) parseBlock(name string, block []string) domain.TestFailure {
	block = trimEmpty(block)
	failure := domain.TestFailure{
		TestName:   name,
		StackTrace: block,
	}

	var messageLines []string
	inPanic := false
	for _, line := range block {
		trimmed := strings.TrimSpace(line)

		if panicPattern.MatchString(line) {
			inPanic = true
			file, lineNo, inline := panicLocation(line)
			failure.File = file
			failure.Line = lineNo
			if inline != "" {
				messageLines = append(messageLines, inline)
			}
			continue
		}

		if m := leftPattern.FindStringSubmatch(line); len(m) == 2 {
			failure.Left = m[1]
		} else if m := rightPattern.FindStringSubmatch(line); len(m) == 2 {
			failure.Right = m[1]
		}

		// Backtraces and hints are kept in the stack trace only
		if trimmed == "stack backtrace:" || strings.HasPrefix(trimmed, "note: run with `RUST_BACKTRACE") {
			if inPanic {
				break
			}
			continue
		}
		if len(messageLines) == 0 && trimmed == "" {
			continue
		}
		messageLines = append(messageLines, line)
	}

	failure.Message = strings.Join(trimEmpty(messageLines), "\n")
	return failure
}

// panicLocation extracts the location from a panic header. Both the current
// "panicked at src/lib.rs:12:9:" and the older "panicked at 'msg', src/lib.rs:12:9"
// layouts are handled; the older one also yields the inline message.
func panicLocation(header string) (file string, line int, message string) {
	loc, ok, err := trace.Parse(strings.TrimSuffix(strings.TrimSpace(header), ":"))
	if err != nil || !ok {
		return "", 0, ""
	}
	file = loc.TestIdentifier
	if strings.HasPrefix(file, "'") {
		if idx := strings.LastIndex(file, "', "); idx > 0 {
			message = file[1:idx]
			file = file[idx+len("', "):]
		}
	}
	return file, loc.LineNumber, message
}

// buildFailure records a package that failed without reporting any case, e.g. a compile error
func (p *CargoParser) buildFailure(result domain.TestResult, str []string) domain.TestFailure {
	str = trimEmpty(str)
	tail := str
	if len(tail) > 40 {
		tail = tail[len(tail)-40:]
	}
	message := "cargo test exited with an error"
	if result.Error != nil {
		message = fmt.Sprintf("%s: %v", message, result.Error)
	}
	for _, line := range str {
		if strings.HasPrefix(line, "error") {
			message = line
			break
		}
	}
	return domain.TestFailure{
		TestName:   BuildFailure,
		Package:    result.Package,
		Message:    message,
		StackTrace: tail,
	}
}

func trimEmpty(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
