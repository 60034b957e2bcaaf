package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"ctp/internal/trace"
)

// NewDiagnostics returns a sink that reports unparseable trace lines to w
func NewDiagnostics(w io.Writer) trace.Diagnostics {
	var mu sync.Mutex
	return func(line string, err error) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s %v: %s\n",
			color.YellowString("warning:"),
			err,
			strings.TrimSpace(line),
		)
	}
}
