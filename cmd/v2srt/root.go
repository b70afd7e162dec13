package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vaibh/v2srt/internal/config"
	"github.com/vaibh/v2srt/internal/media"
	"github.com/vaibh/v2srt/internal/pipeline"
	"github.com/vaibh/v2srt/internal/queue"
	"github.com/vaibh/v2srt/internal/storage"
	"github.com/vaibh/v2srt/internal/timecode"
	"github.com/vaibh/v2srt/internal/transcribe"
	"github.com/vaibh/v2srt/internal/translate"
)

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		modelPath   string
		vadModel    string
		geminiModel string
		geminiKey   string
		baseURL     string
		textMode    string
		language    string
		cutTimes    []string
		output      string
	)

	rootCmd := &cobra.Command{
		Use:           "v2srt [flags] <input-video>",
		Short:         "Generate a translated SRT subtitle file from a video",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags override the config file.
			flags := cmd.Flags()
			if flags.Changed("model") {
				cfg.Whisper.ModelPath = modelPath
			}
			if flags.Changed("vad-model") {
				cfg.Whisper.VadModelPath = vadModel
			}
			if flags.Changed("gemini-model") {
				cfg.Translate.Model = geminiModel
			}
			if flags.Changed("gemini-key") {
				cfg.Translate.APIKey = geminiKey
			}
			if flags.Changed("base-url") {
				cfg.Translate.BaseURL = baseURL
			}
			if flags.Changed("text-mode") {
				cfg.Translate.TextMode = textMode
			}
			if flags.Changed("language") {
				cfg.Whisper.Language = language
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runPipeline(cmd.Context(), cfg, args[0], output, cutTimes)
		},
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "configuration file path")
	rootCmd.Flags().StringVarP(&modelPath, "model", "m", "", "whisper model file path")
	rootCmd.Flags().StringVar(&vadModel, "vad-model", "", "whisper VAD model file path, VAD is skipped if not provided")
	rootCmd.Flags().StringVar(&geminiModel, "gemini-model", translate.DefaultModel, "translation model identifier")
	rootCmd.Flags().StringVar(&geminiKey, "gemini-key", "", "API key, no translation is done if not set")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "override the translation endpoint base URL")
	rootCmd.Flags().StringVar(&textMode, "text-mode", "replace", "what translation does to cue text: replace or append")
	rootCmd.Flags().StringVarP(&language, "language", "l", "auto", "source language hint for transcription")
	rootCmd.Flags().StringSliceVarP(&cutTimes, "cut-times", "c", nil, "HH:MM:SS times to split the audio, example: -c 00:10:00 -c 00:50:00")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "output filename (default input with .srt extension)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

func runPipeline(ctx context.Context, cfg *config.Config, input, output string, cutTimes []string) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("invalid input file %s: %v", input, err)
	}
	if cfg.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper model path is required (--model or config)")
	}

	cuts, err := parseCutTimes(cutTimes)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".srt"
	}

	p := pipeline.New(
		ffmpegRunner(cfg),
		newTranscriber(cfg),
		newTranslator(cfg),
		cuts,
		cfg.Storage.TempDir,
	)

	result, err := p.Run(ctx, input, output)

	recordRun(cfg, input, output, result, err)
	return err
}

func parseCutTimes(cutTimes []string) ([]timecode.TimeCode, error) {
	cuts := make([]timecode.TimeCode, 0, len(cutTimes))
	for _, ct := range cutTimes {
		tc, err := timecode.Parse(ct)
		if err != nil {
			return nil, fmt.Errorf("invalid cut time %q: %v", ct, err)
		}
		cuts = append(cuts, tc)
	}
	return cuts, nil
}

func ffmpegRunner(cfg *config.Config) media.Runner {
	return media.ExecRunner{Timeout: time.Duration(cfg.Tools.FfmpegTimeoutSeconds) * time.Second}
}

func newTranscriber(cfg *config.Config) *transcribe.WhisperTranscriber {
	runner := media.ExecRunner{Timeout: time.Duration(cfg.Tools.WhisperTimeoutSeconds) * time.Second}
	return transcribe.NewWhisperTranscriber(runner,
		cfg.Whisper.ModelPath, cfg.Whisper.VadModelPath, cfg.Whisper.Language)
}

// newTranslator returns a no-op translator when no credential is
// configured, so transcribed text passes through untranslated.
func newTranslator(cfg *config.Config) translate.Translator {
	if cfg.Translate.APIKey == "" {
		return translate.Noop{}
	}
	return translate.NewGemini(
		cfg.Translate.Model,
		cfg.Translate.APIKey,
		cfg.Translate.BaseURL,
		cfg.Translate.TargetLanguage,
		translate.Mode(cfg.Translate.TextMode),
		time.Duration(cfg.Translate.TimeoutSeconds)*time.Second,
	)
}

// recordRun stores the run in the history database, best effort.
func recordRun(cfg *config.Config, input, output string, result *pipeline.Result, runErr error) {
	history, err := storage.NewHistory(cfg.Storage.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history database unavailable: %v\n", err)
		return
	}
	defer history.Close()

	run := storage.Run{
		JobID:      uuid.New().String(),
		VideoPath:  input,
		OutputPath: output,
		Language:   cfg.Whisper.Language,
		Model:      filepath.Base(cfg.Whisper.ModelPath),
		Status:     queue.StatusCompleted,
		CreatedAt:  time.Now(),
	}
	if runErr != nil {
		run.Status = queue.StatusFailed
		run.Error = runErr.Error()
	}
	if result != nil {
		run.CueCount = result.CueCount
		run.DurationSeconds = result.DurationSeconds
	}
	if err := history.SaveRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record run: %v\n", err)
	}
}
