// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the djvu2pdf CLI, which converts
// DjVu documents into searchable PDFs by orchestrating the djvused,
// ddjvu, djvu2hocr, and pdfbeads external tools.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/djvu2pdf/internal/pipeline"
	"github.com/pdiddy/djvu2pdf/internal/runner"
	"github.com/pdiddy/djvu2pdf/internal/toc"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes, one per failure class, so scripts can distinguish a
// missing tool from a failing one.
const (
	exitOK          = 0
	exitFailure     = 1
	exitBadArgs     = 2
	exitToolMissing = 3
	exitToolFailed  = 4
	exitBadTOC      = 5
	exitFilesystem  = 6
)

// rootCmd is the base command for the djvu2pdf CLI.
var rootCmd = &cobra.Command{
	Use:   "djvu2pdf",
	Short: "Convert DjVu documents to searchable PDFs",
	Long: `djvu2pdf converts DjVu documents into searchable, compressed PDFs with
embedded text layers and bookmarks. The heavy lifting is delegated to
external single-purpose tools (djvused, ddjvu, djvu2hocr, pdfbeads);
djvu2pdf sequences them, tracks progress, and translates the table of
contents between their formats.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./djvu2pdf.yaml or ~/.config/djvu2pdf/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("djvu2pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "djvu2pdf"))
		}
	}

	viper.SetEnvPrefix("DJVU2PDF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitCode maps an error to the CLI exit-status convention.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var notFound *runner.NotFoundError
	var exit *runner.ExitError
	var fsErr *pipeline.FSError

	switch {
	case errors.Is(err, pipeline.ErrInvalidArguments):
		return exitBadArgs
	case errors.As(err, &notFound):
		return exitToolMissing
	case errors.Is(err, toc.ErrMalformed):
		return exitBadTOC
	case errors.As(err, &exit), errors.Is(err, pipeline.ErrMetadataMissing):
		return exitToolFailed
	case errors.As(err, &fsErr):
		return exitFilesystem
	}
	return exitFailure
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
