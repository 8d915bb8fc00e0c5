package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lysyi3m/getpods/app/feed"
)

const DefaultMaxLines = 20

// Confirmer decides whether a non-automatic item gets downloaded.
type Confirmer interface {
	Confirm(item *feed.Item) (bool, error)
}

var _ Confirmer = (*Asker)(nil)

// Asker shows an item on out and reads a yes/no answer from in.
type Asker struct {
	in       *bufio.Reader
	out      io.Writer
	maxLines int
}

func NewAsker(in io.Reader, out io.Writer, maxLines int) *Asker {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	return &Asker{
		in:       bufio.NewReader(in),
		out:      out,
		maxLines: maxLines,
	}
}

// Confirm returns false only for an explicit "n" or "no"; an empty answer
// means yes. Input that ends before any answer returns io.EOF.
func (a *Asker) Confirm(item *feed.Item) (bool, error) {
	fmt.Fprintf(a.out, "\n* [%s] %s\n", item.FeedTitle, item.Title)
	if summary := TruncateLines(item.Summary, a.maxLines); summary != "" {
		fmt.Fprintln(a.out, summary)
	}
	fmt.Fprint(a.out, "Download this episode? [Y/n] ")

	answer, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && answer == "" {
		fmt.Fprintln(a.out)
		return false, io.EOF
	}

	return !isNo(answer), nil
}

func isNo(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return true
	}
	return false
}

// TruncateLines keeps the first max lines of text and appends a marker with
// the number of lines left out.
func TruncateLines(text string, max int) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	if max <= 0 || len(lines) <= max {
		return text
	}

	kept := strings.Join(lines[:max], "\n")
	return fmt.Sprintf("%s\n[... %d more lines]", kept, len(lines)-max)
}
