// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/djvu2pdf/internal/history"
	"github.com/pdiddy/djvu2pdf/internal/pipeline"
	"github.com/pdiddy/djvu2pdf/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.djvu> <output.pdf>",
	Short: "Convert a DjVu document to a searchable PDF",
	Long: `Convert runs the full pipeline on one document: extract metadata, split
pages into images, extract the embedded OCR text per page, transcode the
table of contents, and assemble the final PDF. Intermediate artifacts
live in a scratch workspace that is removed when the job ends.

A bookmark listing supplied with --toc replaces the one extracted from
the document.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("%w: expected <input.djvu> <output.pdf>", pipeline.ErrInvalidArguments)
		}
		return nil
	},
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("toc", "", "bookmark listing to use instead of the document outline")
	convertCmd.Flags().Int("workers", 0, "concurrent per-page tool invocations (default: CPU count)")
	convertCmd.Flags().String("report", "", "write a YAML conversion report to this path")
	convertCmd.Flags().Bool("quiet", false, "suppress the progress bar")
	convertCmd.Flags().Bool("no-history", false, "do not record this conversion in the history database")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	tocPath, _ := cmd.Flags().GetString("toc")
	workers, _ := cmd.Flags().GetInt("workers")
	reportPath, _ := cmd.Flags().GetString("report")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	if workers == 0 {
		workers = viper.GetInt("workers")
	}
	cfg := types.PipelineConfig{
		Tools: types.ToolsConfig{
			Djvused:   viper.GetString("tools.djvused"),
			Ddjvu:     viper.GetString("tools.ddjvu"),
			Djvu2hocr: viper.GetString("tools.djvu2hocr"),
			Pdfbeads:  viper.GetString("tools.pdfbeads"),
		},
		Workers:      workers,
		WorkspaceDir: viper.GetString("workspace_dir"),
	}

	job := pipeline.Job{
		InputPath:  args[0],
		OutputPath: args[1],
		TOCPath:    tocPath,
	}

	var obs pipeline.Observer
	if !quiet {
		bar := progressbar.NewOptions(100,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Starting conversion"),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
		obs = func(p pipeline.Progress) {
			bar.Describe(p.Label)
			_ = bar.Set(p.Percent)
		}
	}

	started := time.Now()
	p := pipeline.New(cfg, nil, obs)
	res, convErr := p.Convert(cmd.Context(), job)

	if !noHistory {
		recordConversion(job, res, convErr, started)
	}
	if convErr != nil {
		return convErr
	}

	if reportPath != "" {
		if err := writeReport(reportPath, res.Report(job.InputPath)); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s (%d pages, %d bookmarks, %s)\n",
		job.InputPath, res.OutputPath, res.Pages, res.TOCEntries,
		res.Duration.Round(time.Millisecond))
	if len(res.TextlessPages) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Pages without embedded text: %v\n", res.TextlessPages)
	}
	return nil
}

// recordConversion writes the job outcome to the history database.
// Best-effort: a history failure only warns.
func recordConversion(job pipeline.Job, res *pipeline.Result, convErr error, started time.Time) {
	store, err := history.Open(historyDir())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: history unavailable:", err)
		return
	}
	defer store.Close()

	rec := history.Record{
		Input:     job.InputPath,
		Output:    job.OutputPath,
		Status:    history.StatusSucceeded,
		Duration:  time.Since(started),
		StartedAt: started,
	}
	if res != nil {
		rec.Pages = res.Pages
		rec.TextlessPages = len(res.TextlessPages)
		rec.TOCEntries = res.TOCEntries
		rec.Duration = res.Duration
	}
	if convErr != nil {
		rec.Status = history.StatusFailed
		rec.Detail = convErr.Error()
		var stageErr *pipeline.StageError
		if errors.As(convErr, &stageErr) {
			rec.FailedStage = string(stageErr.Stage)
		}
	}

	if err := store.Add(context.Background(), rec); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: recording conversion failed:", err)
	}
}

// writeReport serializes the conversion report as YAML.
func writeReport(path string, report types.ConversionReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &pipeline.FSError{Op: "write report", Err: err}
	}
	return nil
}
