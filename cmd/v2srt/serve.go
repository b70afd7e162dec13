package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vaibh/v2srt/internal/cleanup"
	"github.com/vaibh/v2srt/internal/config"
	"github.com/vaibh/v2srt/internal/pipeline"
	"github.com/vaibh/v2srt/internal/queue"
	"github.com/vaibh/v2srt/internal/server"
	"github.com/vaibh/v2srt/internal/storage"
)

func newServeCommand() *cobra.Command {
	var configPath string

	serveCmd := &cobra.Command{
		Use:           "serve",
		Short:         "Run the subtitle generation HTTP API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	serveCmd.Flags().StringVar(&configPath, "config", "", "configuration file path")
	return serveCmd
}

func runServer(cfg *config.Config) error {
	tempDir := cfg.Storage.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "v2srt-serve")
	}
	uploadDir := filepath.Join(tempDir, "uploads")
	for _, dir := range []string{tempDir, uploadDir, cfg.Storage.OutputDir} {
		if err := cleanup.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	history, err := storage.NewHistory(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %v", err)
	}
	defer history.Close()

	var archive *storage.Archive
	if cfg.Storage.ArchiveDir != "" {
		archive = storage.NewArchive(cfg.Storage.ArchiveDir)
		log.Printf("archiving finished subtitles under %s", cfg.Storage.ArchiveDir)
	}

	// Google Drive is optional; missing credentials just mean local-only.
	var driveClient *storage.DriveClient
	if _, err := os.Stat(cfg.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err = storage.NewDriveClient(
			cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile,
			cfg.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			driveClient = nil
		} else {
			log.Println("Google Drive integration enabled")
		}
	} else {
		log.Println("Google Drive credentials not found - saving locally only")
	}

	factory := func(progress func(line string)) *pipeline.Pipeline {
		p := pipeline.New(ffmpegRunner(cfg), newTranscriber(cfg), newTranslator(cfg), nil, tempDir)
		p.Progress = progress
		return p
	}

	pool := queue.NewWorkerPool(cfg.Workers.Count, factory, history, archive, driveClient)
	pool.Start()

	scheduler := cleanup.NewScheduler(tempDir, cfg.Cleanup.IntervalMinutes, cfg.Cleanup.MaxAgeHours)
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(pool, history, uploadDir, cfg.Storage.OutputDir, cfg.Limits.MaxFileSizeMB)
	app := srv.App()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint
		log.Println("shutting down gracefully...")
		app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server starting on %s", addr)
	return app.Listen(addr)
}
