package download

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// minProgressTotal skips the display for tiny or unknown-length bodies.
const minProgressTotal = 1000

// NewProgressPrinter returns a progress callback that redraws a single status
// line in place, plus a finish func that ends the line. The last printed
// string lives in the closure so identical updates are not rewritten.
func NewProgressPrinter(out io.Writer) (ProgressFunc, func()) {
	last := ""

	report := func(total, downloaded int64) {
		if total < minProgressTotal {
			return
		}

		output := FormatProgress(total, downloaded)
		if output == last {
			return
		}

		fmt.Fprint(out, output+strings.Repeat("\b", len(output)))
		last = output
	}

	finish := func() {
		if last != "" {
			fmt.Fprintln(out)
		}
	}

	return report, finish
}

func FormatProgress(total, downloaded int64) string {
	return fmt.Sprintf("%s of %s (%.2f%%)",
		humanize.Bytes(uint64(downloaded)),
		humanize.Bytes(uint64(total)),
		float64(downloaded)/float64(total)*100)
}

// TerminalProgress returns a progress printer factory for f, or nil when f is
// not a terminal.
func TerminalProgress(f *os.File) func() (ProgressFunc, func()) {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return nil
	}
	return func() (ProgressFunc, func()) {
		return NewProgressPrinter(f)
	}
}
