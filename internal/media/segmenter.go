package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaibh/v2srt/internal/timecode"
)

// Segment is one time-bounded slice of the source waveform. Base is the
// absolute offset of the slice within the original timeline; it must be
// added to every relative timestamp the transcriber reports for Path.
type Segment struct {
	Base timecode.TimeCode
	Path string
}

// span is one planned (start, end) boundary pair. A nil end means "until the
// end of the waveform".
type span struct {
	start timecode.TimeCode
	end   *timecode.TimeCode
}

// Segmenter splits a waveform at user-supplied cut times using codec-copy
// ffmpeg trims. Resampling already happened upstream, so the trims never
// re-encode.
type Segmenter struct {
	runner Runner
	cuts   []timecode.TimeCode
}

// NewSegmenter creates a segmenter for the given ordered cut times. An empty
// cut list means the waveform passes through untouched.
func NewSegmenter(runner Runner, cuts []timecode.TimeCode) *Segmenter {
	return &Segmenter{runner: runner, cuts: cuts}
}

// plan builds the consecutive boundary pairs [0, cut1], [cut1, cut2], ...,
// [cutN, end].
func (s *Segmenter) plan() []span {
	spans := make([]span, 0, len(s.cuts)+1)
	start := timecode.Zero
	for i := range s.cuts {
		cut := s.cuts[i]
		spans = append(spans, span{start: start, end: &cut})
		start = cut
	}
	spans = append(spans, span{start: start, end: nil})
	return spans
}

// Cut produces the waveform segments in ascending time order. With no cuts
// the original file is returned unchanged with a zero base and no ffmpeg
// invocation. Otherwise each slice is written as {basename}-{n}.wav with n
// starting at 1.
func (s *Segmenter) Cut(ctx context.Context, wavPath string) ([]Segment, error) {
	basename := strings.TrimSuffix(wavPath, ".wav")

	var segments []Segment
	for i, sp := range s.plan() {
		if sp.start.IsZero() && sp.end == nil {
			segments = append(segments, Segment{Base: timecode.Zero, Path: wavPath})
			break
		}

		args := []string{"-i", wavPath, "-ss", sp.start.WithoutMillis()}
		if sp.end != nil {
			args = append(args, "-to", sp.end.WithoutMillis())
		}
		outputPath := fmt.Sprintf("%s-%d.wav", basename, i+1)
		args = append(args, "-c", "copy", "-loglevel", "error", outputPath)

		if _, err := s.runner.Run(ctx, "ffmpeg", args...); err != nil {
			return nil, fmt.Errorf("trim at %s failed: %v", sp.start, err)
		}
		segments = append(segments, Segment{Base: sp.start, Path: outputPath})
	}
	return segments, nil
}
