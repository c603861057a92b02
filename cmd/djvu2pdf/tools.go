// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/djvu2pdf/internal/runner"
	"github.com/pdiddy/djvu2pdf/pkg/types"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Check availability of the external tools",
	Long: `Tools reports whether each external binary the pipeline depends on can
be located. Conversion itself does not pre-check; a missing tool fails
the stage that first needs it.`,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// requirement describes one external binary the pipeline invokes.
type requirement struct {
	command     string
	description string
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg := types.PipelineConfig{
		Tools: types.ToolsConfig{
			Djvused:   viper.GetString("tools.djvused"),
			Ddjvu:     viper.GetString("tools.ddjvu"),
			Djvu2hocr: viper.GetString("tools.djvu2hocr"),
			Pdfbeads:  viper.GetString("tools.pdfbeads"),
		},
	}.Normalize()

	requirements := []requirement{
		{cfg.Tools.Djvused, "page count and outline extraction"},
		{cfg.Tools.Ddjvu, "page rasterization"},
		{cfg.Tools.Djvu2hocr, "OCR text extraction"},
		{cfg.Tools.Pdfbeads, "PDF assembly"},
	}

	missing := 0
	for _, req := range requirements {
		path, err := runner.LookPath(req.command)
		if err != nil {
			missing++
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s missing   (%s)\n", req.command, req.description)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-12s ok        %s\n", req.command, path)
	}

	if missing > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d tools missing; conversion will fail at the first stage that needs one.\n",
			missing, len(requirements))
	}
	return nil
}
