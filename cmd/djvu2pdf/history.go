// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/djvu2pdf/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of records to show")

	rootCmd.AddCommand(historyCmd)
}

// historyDir resolves the directory holding the history database:
// the history_dir config value, or ~/.local/share/djvu2pdf.
func historyDir() string {
	if dir := viper.GetString("history_dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "djvu2pdf")
	}
	return filepath.Join(home, ".local", "share", "djvu2pdf")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(historyDir())
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %4d pages  %s -> %s\n",
			rec.StartedAt.Local().Format(time.DateTime), rec.Status,
			rec.Pages, rec.Input, rec.Output)
		if rec.Status == history.StatusFailed {
			fmt.Fprintf(cmd.OutOrStdout(), "%21s stage %s: %s\n", "", rec.FailedStage, rec.Detail)
		}
	}
	return nil
}
