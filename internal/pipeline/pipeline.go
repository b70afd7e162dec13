// Package pipeline drives the full video-to-subtitle flow: audio extraction,
// optional cut-time segmentation, transcription, batched translation, and
// incremental SRT output.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/vaibh/v2srt/internal/media"
	"github.com/vaibh/v2srt/internal/subtitle"
	"github.com/vaibh/v2srt/internal/timecode"
	"github.com/vaibh/v2srt/internal/transcribe"
	"github.com/vaibh/v2srt/internal/translate"
)

// Transcriber converts one waveform segment into ordered timestamped text
// segments.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) ([]transcribe.Segment, error)
}

// Pipeline holds the collaborators for one or more sequential runs.
type Pipeline struct {
	runner      media.Runner
	transcriber Transcriber
	translator  translate.Translator
	cuts        []timecode.TimeCode
	tempRoot    string

	// Progress, when set, receives the same per-stage lines that go to the
	// log. Serve mode streams them over a websocket.
	Progress func(line string)
}

// New assembles a pipeline. translator must not be nil; use translate.Noop
// when no credential is configured. tempRoot is the parent for the per-run
// working directory ("" means the system default).
func New(runner media.Runner, transcriber Transcriber, translator translate.Translator,
	cuts []timecode.TimeCode, tempRoot string) *Pipeline {
	return &Pipeline{
		runner:      runner,
		transcriber: transcriber,
		translator:  translator,
		cuts:        cuts,
		tempRoot:    tempRoot,
	}
}

// Result summarizes one completed run.
type Result struct {
	OutputPath      string
	CueCount        int
	DurationSeconds float64
}

// Run executes the whole flow for one video, writing cues to outputPath. The
// working directory is removed on every exit path. Cues already flushed to
// the output file survive a mid-run failure.
func (p *Pipeline) Run(ctx context.Context, videoPath, outputPath string) (*Result, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("invalid input file %s: %v", videoPath, err)
	}

	workDir, err := os.MkdirTemp(p.tempRoot, "v2srt")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %v", err)
	}
	defer os.RemoveAll(workDir)
	p.logf("base working directory: %s", workDir)

	wavPath, err := media.NewExtractor(p.runner, workDir).ExtractWav(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	p.logf("wav file path: %s", wavPath)

	segments, err := media.NewSegmenter(p.runner, p.cuts).Cut(ctx, wavPath)
	if err != nil {
		return nil, err
	}

	writer, err := subtitle.NewWriter(outputPath)
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	result := &Result{OutputPath: outputPath}

	// Cue numbering is global across segments and batches: no gaps, no
	// resets at segment boundaries.
	nextIndex := 1
	for _, seg := range segments {
		p.logf("cut wav base time: %s, file path: %s", seg.Base, seg.Path)

		transcript, err := p.transcriber.Transcribe(ctx, seg.Path)
		if err != nil {
			return nil, err
		}

		for start := 0; start < len(transcript); start += translate.BatchSize {
			end := start + translate.BatchSize
			if end > len(transcript) {
				end = len(transcript)
			}
			batch := transcript[start:end]
			p.logf("start to translate from No.%d to No.%d", nextIndex, nextIndex+len(batch)-1)

			entries := make(map[int]*subtitle.Entry, len(batch))
			for i, ts := range batch {
				// Timestamps from the transcriber are relative to the
				// segment; shift them by the segment's base so cues from
				// later segments land on the full-video timeline.
				entry := subtitle.NewEntry(nextIndex+i,
					seg.Base.Add(ts.Start), seg.Base.Add(ts.End), ts.Text)
				entries[entry.Index] = entry
				if s := entry.End.Seconds(); s > result.DurationSeconds {
					result.DurationSeconds = s
				}
			}
			nextIndex += len(batch)

			if err := p.translator.TranslateBatch(ctx, entries); err != nil {
				return nil, fmt.Errorf("translation batch failed: %v", err)
			}
			if err := writer.WriteBatch(entries); err != nil {
				return nil, err
			}
			result.CueCount += len(entries)
		}
	}

	p.logf("finished: %d cues written to %s", result.CueCount, outputPath)
	return result, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	log.Print(line)
	if p.Progress != nil {
		p.Progress(line)
	}
}
