package ui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"ctp/internal/config"
	"ctp/internal/domain"
	"ctp/internal/storage"
	"ctp/internal/trace"
)

const maxTraceLines = 40

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	config   *config.Config
	storage  storage.Storage
	locator  *trace.Locator
	rerunner Rerunner
}

// NewErrorViewer creates a new ErrorViewer. rerunner may be nil, which disables X.
func NewErrorViewer(cfg *config.Config, st storage.Storage, locator *trace.Locator, rerunner Rerunner) *ErrorViewer {
	return &ErrorViewer{
		config:   cfg,
		storage:  st,
		locator:  locator,
		rerunner: rerunner,
	}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(results *domain.TestResultsOutput) error {
	if len(results.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	// Marked failures are keyed by index into results.Details
	marked := make(map[int]bool)

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(index int) string {
		failure := results.Details[index]
		testName := failure.TestName
		if testName == "" {
			testName = fmt.Sprintf("Test %d", index+1)
		}
		testName = tview.Escape(testName)

		mark := " "
		if marked[index] {
			mark = "[cyan]●[white]"
		}
		if failure.Resolved {
			return fmt.Sprintf("%s[gray]✓ [yellow]%d.[gray] %s[white]", mark, index+1, testName)
		}
		return fmt.Sprintf("%s[yellow]%d.[white] %s", mark, index+1, testName)
	}

	fillList := func() {
		current := list.GetCurrentItem()
		list.Clear()
		for i := range results.Details {
			list.AddItem(getListItemText(i), "", 0, nil)
		}
		if current >= 0 && current < list.GetItemCount() {
			list.SetCurrentItem(current)
		}
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	statusView := tview.NewTextView().
		SetDynamicColors(true)

	updateHeader := func() {
		unresolved := 0
		for _, failure := range results.Details {
			if !failure.Resolved {
				unresolved++
			}
		}
		headerView.SetText(fmt.Sprintf(
			" Test Failures (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] resolved, [yellow]Space[white] mark, [yellow]X[white] rerun, [yellow]E[white] edit, → details, Ctrl+C exit ",
			len(results.Details), unresolved))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(results.Details) {
			failure := results.Details[index]
			statsView.SetText(ev.formatFailureStats(failure, index+1))
			detailsView.SetText(ev.formatFailureDetails(failure))
			detailsView.ScrollToBeginning()
		}
	}

	refresh := func() {
		fillList()
		updateHeader()
		updateDetails()
	}

	setStatus := func(format string, args ...any) {
		statusView.SetText(fmt.Sprintf(format, args...))
	}

	rerunMarked := func() {
		if ev.rerunner == nil {
			setStatus("[red]rerun is not available[white]")
			return
		}
		var selection []domain.TestFailure
		for i, failure := range results.Details {
			if marked[i] {
				selection = append(selection, failure)
			}
		}
		if len(selection) == 0 {
			index := list.GetCurrentItem()
			if index < 0 || index >= len(results.Details) {
				return
			}
			selection = append(selection, results.Details[index])
		}

		var updated *domain.TestResultsOutput
		var err error
		app.Suspend(func() {
			updated, err = ev.rerunner.RerunFailures(selection)
		})
		if err != nil {
			setStatus("[red]rerun failed: %s[white]", tview.Escape(err.Error()))
			return
		}
		if updated == nil {
			return
		}
		results = updated
		marked = make(map[int]bool)
		if len(results.Details) == 0 {
			app.Stop()
			color.Green("✓ All rerun tests passed!")
			return
		}
		refresh()
		setStatus("[green]rerun finished: %d failure(s) left[white]", len(results.Details))
	}

	openEditor := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(results.Details) {
			return
		}
		cmd, ok := ev.editorCommand(results.Details[index])
		if !ok {
			setStatus("[yellow]no source location for this failure[white]")
			return
		}
		var err error
		app.Suspend(func() {
			err = cmd.Run()
		})
		if err != nil {
			setStatus("[red]editor: %s[white]", tview.Escape(err.Error()))
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			index := list.GetCurrentItem()
			switch event.Rune() {
			case 'r', 'R':
				if index >= 0 && index < len(results.Details) {
					results.Details[index].Resolved = !results.Details[index].Resolved
					refresh()
					if err := ev.storage.SaveOutput(results); err != nil {
						setStatus("[red]save failed: %s[white]", tview.Escape(err.Error()))
					}
				}
				return nil
			case ' ':
				if index >= 0 && index < len(results.Details) {
					marked[index] = !marked[index]
					list.SetItemText(index, getListItemText(index), "")
				}
				return nil
			case 'x', 'X':
				rerunMarked()
				return nil
			case 'e', 'E':
				openEditor()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})

	refresh()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true).
		AddItem(statusView, 1, 0, false)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// formatFailureDetails formats a test failure using tview color tags. Trace
// lines that point at a source location are followed by an arrow to it.
func (ev *ErrorViewer) formatFailureDetails(failure domain.TestFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", tview.Escape(failure.TestName))
	fmt.Fprintf(&b, "[cyan]Package: %s (%s)[white]\n", tview.Escape(failure.Package), tview.Escape(failure.Binary))
	if failure.File != "" && failure.Line > 0 {
		fmt.Fprintf(&b, "[yellow]Location: %s:%d[white]\n", tview.Escape(failure.File), failure.Line)
	}
	b.WriteString("\n")

	if failure.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}

	if diff := AssertionDiff(failure.Left, failure.Right); diff != "" {
		b.WriteString("[yellow]Diff:[white]\n")
		for _, line := range strings.Split(diff, "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				fmt.Fprintf(&b, "[green]%s[white]\n", tview.Escape(line))
			case strings.HasPrefix(line, "-"):
				fmt.Fprintf(&b, "[red]%s[white]\n", tview.Escape(line))
			default:
				fmt.Fprintf(&b, "%s\n", tview.Escape(line))
			}
		}
		b.WriteString("\n")
	}

	if len(failure.StackTrace) > 0 {
		b.WriteString("[yellow]Output:[white]\n")
		for i, line := range ev.locator.LocateAll(failure.StackTrace) {
			if i >= maxTraceLines {
				fmt.Fprintf(&b, "  [gray]... and %d more lines[white]\n", len(failure.StackTrace)-maxTraceLines)
				break
			}
			fmt.Fprintf(&b, "  %s\n", tview.Escape(line.Text))
			if line.Found {
				fmt.Fprintf(&b, "    [cyan]→ %s[white]\n", tview.Escape(line.Location.String()))
			}
		}
	}

	return b.String()
}

// formatFailureStats formats the stats header for a test failure
func (ev *ErrorViewer) formatFailureStats(failure domain.TestFailure, number int) string {
	pkg := failure.Package
	if pkg == "" {
		pkg = "unknown package"
	}

	testCase := failure.TestName
	if testCase == "" {
		testCase = fmt.Sprintf("Test %d", number)
	}

	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white]\n", tview.Escape(pkg), tview.Escape(testCase))
}

// sourceLocation picks where the editor should jump: the panic location,
// else the first located trace line.
func (ev *ErrorViewer) sourceLocation(failure domain.TestFailure) (trace.SourceLocation, bool) {
	if failure.File != "" && failure.Line > 0 {
		return trace.SourceLocation{TestIdentifier: failure.File, LineNumber: failure.Line}, true
	}
	for _, line := range ev.locator.LocateAll(failure.StackTrace) {
		if line.Found {
			return line.Location, true
		}
	}
	return trace.SourceLocation{}, false
}

// editorCommand builds `$EDITOR +line file` for a failure
func (ev *ErrorViewer) editorCommand(failure domain.TestFailure) (*exec.Cmd, bool) {
	loc, ok := ev.sourceLocation(failure)
	if !ok {
		return nil, false
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	path := loc.TestIdentifier
	if !filepath.IsAbs(path) {
		path = filepath.Join(ev.config.GetTestPath(), path)
	}

	cmd := exec.Command(editor, fmt.Sprintf("+%d", loc.LineNumber), path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, true
}
