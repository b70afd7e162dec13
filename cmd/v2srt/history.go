package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaibh/v2srt/internal/config"
	"github.com/vaibh/v2srt/internal/storage"
)

func newHistoryCommand() *cobra.Command {
	var configPath string
	var limit int

	historyCmd := &cobra.Command{
		Use:           "history",
		Short:         "List recent subtitle runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			history, err := storage.NewHistory(cfg.Storage.Database)
			if err != nil {
				return fmt.Errorf("failed to open history database: %v", err)
			}
			defer history.Close()

			runs, err := history.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			for _, run := range runs {
				line := fmt.Sprintf("%s  %-9s  %4d cues  %s -> %s",
					run.CreatedAt.Format("2006-01-02 15:04:05"), run.Status,
					run.CueCount, run.VideoPath, run.OutputPath)
				if run.Error != "" {
					line += "  (" + run.Error + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	historyCmd.Flags().StringVar(&configPath, "config", "", "configuration file path")
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return historyCmd
}
