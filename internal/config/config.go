// Package config loads the application configuration from a YAML file.
// CLI flags override the file values; everything has a workable default so
// the tool runs with nothing but a model path.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vaibh/v2srt/internal/translate"
)

// Config represents the application configuration.
type Config struct {
	Whisper struct {
		ModelPath    string `yaml:"model_path"`
		VadModelPath string `yaml:"vad_model_path"`
		Language     string `yaml:"language"`
	} `yaml:"whisper"`

	Translate struct {
		Model          string `yaml:"model"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		TargetLanguage string `yaml:"target_language"`
		TextMode       string `yaml:"text_mode"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"translate"`

	Tools struct {
		FfmpegTimeoutSeconds  int `yaml:"ffmpeg_timeout_seconds"`
		WhisperTimeoutSeconds int `yaml:"whisper_timeout_seconds"`
	} `yaml:"tools"`

	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir    string `yaml:"temp_dir"`
		OutputDir  string `yaml:"output_dir"`
		ArchiveDir string `yaml:"archive_dir"`
		Database   string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.Whisper.Language = "auto"
	c.Translate.Model = translate.DefaultModel
	c.Translate.TargetLanguage = "Chinese"
	c.Translate.TextMode = string(translate.ModeReplace)
	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Workers.Count = 1
	c.Storage.OutputDir = "outputs"
	c.Storage.Database = "v2srt.db"
	c.Cleanup.IntervalMinutes = 30
	c.Cleanup.MaxAgeHours = 24
	c.GoogleDrive.FolderName = "Subtitles"
	c.Limits.MaxFileSizeMB = 2048
	return c
}

// Load reads path into a Config on top of the defaults. An empty path
// returns the defaults; a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}
	if err := yaml.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	if !translate.Mode(c.Translate.TextMode).Valid() {
		return fmt.Errorf("invalid text_mode %q, want replace or append", c.Translate.TextMode)
	}
	if c.Workers.Count < 1 {
		return fmt.Errorf("workers count must be at least 1, got %d", c.Workers.Count)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
