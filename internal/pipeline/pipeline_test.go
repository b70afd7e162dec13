package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaibh/v2srt/internal/subtitle"
	"github.com/vaibh/v2srt/internal/timecode"
	"github.com/vaibh/v2srt/internal/transcribe"
)

type fakeRunner struct{ calls int }

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls++
	return nil, nil
}

// fakeTranscriber hands out one canned transcript per segment, in order.
type fakeTranscriber struct {
	transcripts [][]transcribe.Segment
	next        int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, wavPath string) ([]transcribe.Segment, error) {
	if f.next >= len(f.transcripts) {
		return nil, fmt.Errorf("unexpected transcription of %s", wavPath)
	}
	t := f.transcripts[f.next]
	f.next++
	return t, nil
}

type fakeTranslator struct {
	batches int
	failOn  int // 1-based batch number to fail at; 0 means never
	prefix  string
}

func (f *fakeTranslator) TranslateBatch(ctx context.Context, entries map[int]*subtitle.Entry) error {
	f.batches++
	if f.failOn > 0 && f.batches >= f.failOn {
		return errors.New("endpoint unreachable")
	}
	if f.prefix != "" {
		for _, e := range entries {
			e.Text = f.prefix + e.Text
		}
	}
	return nil
}

func seg(t *testing.T, from, to, text string) transcribe.Segment {
	t.Helper()
	start, err := timecode.Parse(from)
	if err != nil {
		t.Fatal(err)
	}
	end, err := timecode.Parse(to)
	if err != nil {
		t.Fatal(err)
	}
	return transcribe.Segment{Start: start, End: end, Text: text}
}

func writeInputVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(path, []byte("fake video"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEndToEndSingleSegment(t *testing.T) {
	video := writeInputVideo(t)
	output := filepath.Join(t.TempDir(), "movie.srt")

	transcriber := &fakeTranscriber{transcripts: [][]transcribe.Segment{{
		seg(t, "00:00:00,000", "00:00:01,000", "one"),
		seg(t, "00:00:01,000", "00:00:02,000", "two"),
		seg(t, "00:00:02,000", "00:00:03,500", "three"),
	}}}
	translator := &fakeTranslator{prefix: "T:"}

	p := New(&fakeRunner{}, transcriber, translator, nil, t.TempDir())
	result, err := p.Run(context.Background(), video, output)
	if err != nil {
		t.Fatal(err)
	}

	if result.CueCount != 3 {
		t.Errorf("CueCount = %d, want 3", result.CueCount)
	}
	if result.DurationSeconds != 3.5 {
		t.Errorf("DurationSeconds = %v, want 3.5", result.DurationSeconds)
	}
	if translator.batches != 1 {
		t.Errorf("translator called %d times, want 1", translator.batches)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nT:one\n\n" +
		"2\n00:00:01,000 --> 00:00:02,000\nT:two\n\n" +
		"3\n00:00:02,000 --> 00:00:03,500\nT:three\n\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
}

func TestRunAppliesSegmentBaseTime(t *testing.T) {
	video := writeInputVideo(t)
	output := filepath.Join(t.TempDir(), "movie.srt")

	cut, err := timecode.Parse("00:10:00")
	if err != nil {
		t.Fatal(err)
	}

	// Both segments report timestamps relative to their own start.
	transcriber := &fakeTranscriber{transcripts: [][]transcribe.Segment{
		{seg(t, "00:00:01,000", "00:00:02,000", "first half")},
		{seg(t, "00:00:01,000", "00:00:02,000", "second half")},
	}}

	p := New(&fakeRunner{}, transcriber, &fakeTranslator{}, []timecode.TimeCode{cut}, t.TempDir())
	result, err := p.Run(context.Background(), video, output)
	if err != nil {
		t.Fatal(err)
	}
	if result.CueCount != 2 {
		t.Fatalf("CueCount = %d, want 2", result.CueCount)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	// Second segment's cue sits on the full-video timeline, not at 1s.
	if !strings.Contains(string(data), "2\n00:10:01,000 --> 00:10:02,000\nsecond half") {
		t.Errorf("output missing offset cue:\n%s", data)
	}
	if !strings.Contains(string(data), "1\n00:00:01,000 --> 00:00:02,000\nfirst half") {
		t.Errorf("output missing first cue:\n%s", data)
	}
}

func TestRunGlobalIndexAcrossSegmentsAndBatches(t *testing.T) {
	video := writeInputVideo(t)
	output := filepath.Join(t.TempDir(), "movie.srt")

	// 60 transcript segments in the first audio segment (two batches at the
	// 50-entry threshold) plus 5 in the second: indices must run 1..65.
	first := make([]transcribe.Segment, 60)
	for i := range first {
		first[i] = transcribe.Segment{
			Start: timecode.FromSeconds(float64(i)),
			End:   timecode.FromSeconds(float64(i + 1)),
			Text:  fmt.Sprintf("line %d", i),
		}
	}
	second := make([]transcribe.Segment, 5)
	for i := range second {
		second[i] = transcribe.Segment{
			Start: timecode.FromSeconds(float64(i)),
			End:   timecode.FromSeconds(float64(i + 1)),
			Text:  fmt.Sprintf("tail %d", i),
		}
	}

	cut, err := timecode.Parse("00:01:00")
	if err != nil {
		t.Fatal(err)
	}
	translator := &fakeTranslator{}
	p := New(&fakeRunner{}, &fakeTranscriber{transcripts: [][]transcribe.Segment{first, second}},
		translator, []timecode.TimeCode{cut}, t.TempDir())

	result, err := p.Run(context.Background(), video, output)
	if err != nil {
		t.Fatal(err)
	}
	if result.CueCount != 65 {
		t.Errorf("CueCount = %d, want 65", result.CueCount)
	}
	if translator.batches != 3 {
		t.Errorf("batches = %d, want 3", translator.batches)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	blocks := strings.Split(strings.TrimSuffix(string(data), "\n\n"), "\n\n")
	if len(blocks) != 65 {
		t.Fatalf("got %d cue blocks, want 65", len(blocks))
	}
	for i, block := range blocks {
		wantPrefix := fmt.Sprintf("%d\n", i+1)
		if !strings.HasPrefix(block, wantPrefix) {
			t.Fatalf("block %d starts with %q, want index %d", i, block[:min(len(block), 12)], i+1)
		}
	}
}

func TestRunTranslationFailureKeepsEarlierBatches(t *testing.T) {
	video := writeInputVideo(t)
	output := filepath.Join(t.TempDir(), "movie.srt")

	transcript := make([]transcribe.Segment, 55)
	for i := range transcript {
		transcript[i] = transcribe.Segment{
			Start: timecode.FromSeconds(float64(i)),
			End:   timecode.FromSeconds(float64(i + 1)),
			Text:  fmt.Sprintf("line %d", i),
		}
	}

	p := New(&fakeRunner{}, &fakeTranscriber{transcripts: [][]transcribe.Segment{transcript}},
		&fakeTranslator{failOn: 2}, nil, t.TempDir())

	if _, err := p.Run(context.Background(), video, output); err == nil {
		t.Fatal("want error when a translation batch fails")
	}

	// The first batch was flushed before the failure.
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if count := strings.Count(string(data), " --> "); count != 50 {
		t.Errorf("cues on disk = %d, want the 50 from the first batch", count)
	}
}

func TestRunMissingInput(t *testing.T) {
	p := New(&fakeRunner{}, &fakeTranscriber{}, &fakeTranslator{}, nil, t.TempDir())
	if _, err := p.Run(context.Background(), "/does/not/exist.mp4", "out.srt"); err == nil {
		t.Fatal("want error for missing input file")
	}
}

func TestRunRemovesWorkingDirectory(t *testing.T) {
	video := writeInputVideo(t)
	output := filepath.Join(t.TempDir(), "movie.srt")
	tempRoot := t.TempDir()

	transcriber := &fakeTranscriber{transcripts: [][]transcribe.Segment{{
		seg(t, "00:00:00,000", "00:00:01,000", "only"),
	}}}
	p := New(&fakeRunner{}, transcriber, &fakeTranslator{}, nil, tempRoot)
	if _, err := p.Run(context.Background(), video, output); err != nil {
		t.Fatal(err)
	}

	left, err := os.ReadDir(tempRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("working directory not cleaned up: %v", left)
	}
}
