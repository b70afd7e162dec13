package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaibh/v2srt/internal/config"
	"github.com/vaibh/v2srt/internal/translate"
)

func TestParseCutTimes(t *testing.T) {
	cuts, err := parseCutTimes([]string{"00:10:00", "00:50:00,500"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cuts) != 2 {
		t.Fatalf("got %d cuts, want 2", len(cuts))
	}
	if cuts[0].String() != "00:10:00,000" || cuts[1].String() != "00:50:00,500" {
		t.Errorf("cuts = %s, %s", cuts[0], cuts[1])
	}

	if _, err := parseCutTimes([]string{"ten minutes"}); err == nil {
		t.Fatal("want error for malformed cut time")
	}
}

func TestNewTranslatorSelection(t *testing.T) {
	cfg := config.Default()
	if _, ok := newTranslator(cfg).(translate.Noop); !ok {
		t.Error("want noop translator without an API key")
	}

	cfg.Translate.APIKey = "secret"
	if _, ok := newTranslator(cfg).(*translate.Gemini); !ok {
		t.Error("want Gemini translator with an API key")
	}
}

func TestRootCommandRejectsMissingInput(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"/does/not/exist.mp4", "--model", "/models/ggml-base.bin"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("want error for missing input file")
	}
}

func TestRootCommandRejectsBadCutTime(t *testing.T) {
	video := filepath.Join(t.TempDir(), "movie.mp4")
	if err := os.WriteFile(video, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{video, "--model", "/models/ggml-base.bin", "-c", "bogus"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("want error for malformed cut time")
	}
	if !strings.Contains(err.Error(), "invalid cut time") {
		t.Errorf("error = %v, want invalid cut time", err)
	}
}
