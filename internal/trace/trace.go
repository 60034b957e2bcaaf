package trace

import "errors"

// Diagnostics receives lines that could not be parsed. Its return is never consulted.
type Diagnostics func(line string, err error)

// LocatedLine is one line of a trace together with its location, if any
type LocatedLine struct {
	Index    int
	Text     string
	Location SourceLocation
	Found    bool
}

// Locator turns trace lines into source locations, absorbing malformed lines
type Locator struct {
	diagnostics Diagnostics
}

// NewLocator creates a Locator reporting malformed lines to diag (may be nil)
func NewLocator(diag Diagnostics) *Locator {
	return &Locator{diagnostics: diag}
}

// Locate returns the location of a trace line. Malformed lines are reported to
// the diagnostics sink and yield no location.
func (l *Locator) Locate(line string) (SourceLocation, bool) {
	loc, ok, err := Parse(line)
	if err != nil {
		if errors.Is(err, ErrMalformedTraceLine) && l.diagnostics != nil {
			l.diagnostics(line, err)
		}
		return SourceLocation{}, false
	}
	return loc, ok
}

// LocateAll locates every line of a trace, in order.
func (l *Locator) LocateAll(lines []string) []LocatedLine {
	located := make([]LocatedLine, 0, len(lines))
	for i, line := range lines {
		loc, ok := l.Locate(line)
		located = append(located, LocatedLine{
			Index:    i,
			Text:     line,
			Location: loc,
			Found:    ok,
		})
	}
	return located
}

// Locations returns only the lines that carry a location
func (l *Locator) Locations(lines []string) []SourceLocation {
	var locs []SourceLocation
	for _, line := range lines {
		if loc, ok := l.Locate(line); ok {
			locs = append(locs, loc)
		}
	}
	return locs
}
