// Package subtitle implements the numbered SRT cue model and an incremental
// file writer that flushes after every translated batch.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/vaibh/v2srt/internal/timecode"
)

// Entry is one subtitle cue. Index is 1-based and strictly increasing in
// output order; Text is replaced or appended to when a translation arrives.
type Entry struct {
	Index int
	Start timecode.TimeCode
	End   timecode.TimeCode
	Text  string
}

// NewEntry builds a cue with the surrounding whitespace stripped from text.
func NewEntry(index int, start, end timecode.TimeCode, text string) *Entry {
	return &Entry{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.TrimSpace(text),
	}
}

// String renders the standard SRT block: index line, time range line, text,
// then a blank line.
func (e *Entry) String() string {
	return fmt.Sprintf("%d\n%s --> %s\n%s\n\n", e.Index, e.Start, e.End, e.Text)
}
