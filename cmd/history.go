package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asrvd/repo-guardian/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scans from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := initLogger()
		defer logger.Sync()

		cfg := loadConfig()

		store, err := history.Open(cfg.HistoryDB, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Recent(context.Background(), historyLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}

		for _, r := range records {
			status := "ok"
			if !r.Succeeded {
				status = "failed"
			}
			fmt.Printf("%s  %-30s %-6s %3d findings  %s\n",
				r.ScannedAt.Format("2006-01-02 15:04"), r.Repository, status, r.Findings, r.Message)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records to show")
	rootCmd.AddCommand(historyCmd)
}
