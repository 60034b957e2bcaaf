package trace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FramePrefix separates the frame description from the location it points at,
// e.g. "             at ./src/lib.rs:12:9".
const FramePrefix = " at "

// ErrMalformedTraceLine is returned when a line carries the frame marker but
// no usable "<id>:<line>:<column>" suffix.
var ErrMalformedTraceLine = errors.New("malformed trace line")

// SourceLocation is where a trace line points to
type SourceLocation struct {
	TestIdentifier string `json:"test_identifier"`
	LineNumber     int    `json:"line_number"`
}

func (s SourceLocation) String() string {
	return fmt.Sprintf("%s:%d", s.TestIdentifier, s.LineNumber)
}

// Parse extracts the location from a single trace line.
// Lines without FramePrefix are not errors: ok is false and err is nil.
// Only the first occurrence of FramePrefix is used as the split point, so an
// identifier that itself contains " at " is truncated there.
func Parse(line string) (loc SourceLocation, ok bool, err error) {
	prefixIndex := strings.Index(line, FramePrefix)
	if prefixIndex == -1 {
		return SourceLocation{}, false, nil
	}

	columnIndex := strings.LastIndex(line, ":")
	if columnIndex == -1 {
		return SourceLocation{}, false, fmt.Errorf("%w: no column separator", ErrMalformedTraceLine)
	}
	lineIndex := strings.LastIndex(line[:columnIndex], ":")
	start := prefixIndex + len(FramePrefix)
	if lineIndex == -1 || lineIndex < start {
		return SourceLocation{}, false, fmt.Errorf("%w: no line separator after frame marker", ErrMalformedTraceLine)
	}

	identifier := strings.TrimSpace(line[start:lineIndex])
	lineNumber, err := strconv.Atoi(strings.TrimSpace(line[lineIndex+1 : columnIndex]))
	if err != nil {
		return SourceLocation{}, false, fmt.Errorf("%w: %w", ErrMalformedTraceLine, err)
	}

	return SourceLocation{TestIdentifier: identifier, LineNumber: lineNumber}, true, nil
}
