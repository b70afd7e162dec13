package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"sort"
)

// Writer appends cues to an SRT file. The file is opened once and flushed
// per batch so partial progress survives a later failure.
type Writer struct {
	f  *os.File
	bw *bufio.Writer
}

// NewWriter creates (truncating) the output file, UTF-8 encoded.
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %v", err)
	}
	return &Writer{f: f, bw: bufio.NewWriter(f)}, nil
}

// WriteBatch writes a batch of cues in ascending index order and flushes.
func (w *Writer) WriteBatch(entries map[int]*Entry) error {
	indices := make([]int, 0, len(entries))
	for idx := range entries {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		if _, err := w.bw.WriteString(entries[idx].String()); err != nil {
			return fmt.Errorf("failed to write cue %d: %v", idx, err)
		}
	}
	return w.bw.Flush()
}

// Close flushes any buffered cues and closes the file.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
