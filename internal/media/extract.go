package media

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// Extractor converts a video file into the mono 16kHz 16-bit PCM waveform
// whisper expects.
type Extractor struct {
	runner  Runner
	tempDir string
}

// NewExtractor creates an extractor writing waveforms into tempDir.
func NewExtractor(runner Runner, tempDir string) *Extractor {
	return &Extractor{runner: runner, tempDir: tempDir}
}

// ExtractWav resamples the video's audio track to 16kHz mono PCM and returns
// the waveform path.
func (e *Extractor) ExtractWav(ctx context.Context, videoPath string) (string, error) {
	name := filepath.Base(videoPath)
	basename := strings.TrimSuffix(name, filepath.Ext(name))
	wavPath := filepath.Join(e.tempDir, basename+".wav")

	log.Printf("convert video file %s to wav file %s", videoPath, wavPath)

	_, err := e.runner.Run(ctx, "ffmpeg",
		"-i", videoPath,
		"-af", "aresample=async=1",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-loglevel", "fatal",
		wavPath,
	)
	if err != nil {
		return "", fmt.Errorf("audio extraction failed: %v", err)
	}
	return wavPath, nil
}
