package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/term"
	"wikiassets/pkg/models"
)

// Banner is printed before a fetch run
const Banner = `
  ┌─────────────────────────────────────────┐
  │  wikiassets · MediaWiki asset cataloger │
  └─────────────────────────────────────────┘
`

var (
	mu       sync.Mutex
	out      io.Writer = os.Stdout
	useColor           = term.IsTerminal(int(os.Stdout.Fd()))
)

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes when
// colors are enabled
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func colorEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return useColor
}

// SetOutput redirects console output. Colors are disabled unless w is a
// terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	useColor = false
	if f, ok := w.(*os.File); ok {
		useColor = term.IsTerminal(int(f.Fd()))
	}
}

func writeLine(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// PrintBanner prints the banner
func PrintBanner() {
	writeLine(Cyan(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		writeLine(Red(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		writeLine(Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	writeLine(Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	writeLine(fmt.Sprintf("%s: %s", Cyan(label), Yellow(value)))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		writeLine(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		writeLine(Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	writeLine(Magenta(msg))
}

// PrintRunSummary prints the outcome of a run
func PrintRunSummary(stats models.RunStats, catalogPath string) {
	PrintHighlight("Run summary")
	PrintInfo("  Items", fmt.Sprintf("%d", stats.Total))
	PrintInfo("  Succeeded", fmt.Sprintf("%d", stats.Succeeded))
	PrintInfo("  Failed", fmt.Sprintf("%d", stats.Failed))

	statuses := make([]string, 0, len(stats.ByStatus))
	for status := range stats.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		writeLine(Dim(fmt.Sprintf("    %-13s %d", status, stats.ByStatus[models.Status(status)])))
	}

	PrintInfo("  Duration", stats.Duration.Round(time.Millisecond).String())
	PrintInfo("  Catalog", catalogPath)

	if !stats.ListingComplete {
		PrintWarning("Category listing was incomplete; the catalog covers a partial item set")
	}
}
