package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"ctp/internal/trace"
	"ctp/internal/ui"
)

// TraceCommand prints the source locations found in a trace
type TraceCommand struct {
	out     io.Writer
	locator *trace.Locator
}

// NewTraceCommand creates a TraceCommand reporting malformed lines to stderr
func NewTraceCommand() *TraceCommand {
	return &TraceCommand{
		out:     os.Stdout,
		locator: trace.NewLocator(ui.NewDiagnostics(os.Stderr)),
	}
}

// Execute reads the trace from the file argument, or stdin without one
func (tc *TraceCommand) Execute(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		in = f
	}
	return tc.locate(in)
}

func (tc *TraceCommand) locate(r io.Reader) error {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read trace: %w", err)
	}

	for _, line := range tc.locator.LocateAll(lines) {
		if line.Found {
			fmt.Fprintf(tc.out, "%s\t%s\n", color.YellowString("%d", line.Index+1), line.Location)
		}
	}
	return nil
}
