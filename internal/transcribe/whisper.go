// Package transcribe wraps the whisper-cli speech recognition binary and
// normalizes its JSON transcript output.
package transcribe

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/vaibh/v2srt/internal/media"
)

// WhisperTranscriber invokes whisper-cli on a waveform segment and reads the
// JSON transcript it writes next to the waveform.
type WhisperTranscriber struct {
	runner    media.Runner
	modelPath string
	vadModel  string
	language  string
}

// NewWhisperTranscriber creates a transcriber. vadModel may be empty, in
// which case voice activity detection is skipped. language defaults to auto
// detection when empty.
func NewWhisperTranscriber(runner media.Runner, modelPath, vadModel, language string) *WhisperTranscriber {
	if language == "" {
		language = "auto"
	}
	return &WhisperTranscriber{
		runner:    runner,
		modelPath: modelPath,
		vadModel:  vadModel,
		language:  language,
	}
}

// Transcribe runs speech recognition on wavPath and returns the ordered
// timestamped segments.
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, wavPath string) ([]Segment, error) {
	basename := strings.TrimSuffix(wavPath, ".wav")

	args := []string{"-l", wt.language, "-oj", "-m", wt.modelPath}
	if wt.vadModel != "" {
		args = append(args, "--vad", "--vad-threshold", "0.3", "--vad-model", wt.vadModel)
	}
	args = append(args, "--output-file", basename, "--no-prints", "--print-progress", wavPath)

	if _, err := wt.runner.Run(ctx, "whisper-cli", args...); err != nil {
		return nil, fmt.Errorf("transcription failed: %v", err)
	}

	jsonPath := basename + ".json"
	log.Printf("transcription file path: %s", jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %v", err)
	}

	segments, err := ParseTranscript(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %v", jsonPath, err)
	}

	log.Printf("transcription completed: %d segments", len(segments))
	return segments, nil
}
