// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration and report types shared between the
// CLI and the conversion pipeline.
package types

import "runtime"

// ToolsConfig names the external binaries the pipeline invokes. Each
// value may be a bare command name resolved on PATH or an absolute path.
type ToolsConfig struct {
	// Djvused extracts page counts and outline text from DjVu files.
	Djvused string `json:"djvused" yaml:"djvused"`

	// Ddjvu rasterizes DjVu pages into TIFF images.
	Ddjvu string `json:"ddjvu" yaml:"ddjvu"`

	// Djvu2hocr extracts the embedded OCR text of one page as hOCR.
	Djvu2hocr string `json:"djvu2hocr" yaml:"djvu2hocr"`

	// Pdfbeads assembles page images and text fragments into the final PDF.
	Pdfbeads string `json:"pdfbeads" yaml:"pdfbeads"`
}

// DefaultTools returns the standard binary names, resolved on PATH.
func DefaultTools() ToolsConfig {
	return ToolsConfig{
		Djvused:   "djvused",
		Ddjvu:     "ddjvu",
		Djvu2hocr: "djvu2hocr",
		Pdfbeads:  "pdfbeads",
	}
}

// PipelineConfig holds settings for the conversion pipeline.
type PipelineConfig struct {
	// Tools selects the external binaries.
	Tools ToolsConfig `json:"tools" yaml:"tools"`

	// Workers bounds the number of concurrent per-page tool invocations
	// during page splitting and text extraction (default: CPU count).
	Workers int `json:"workers" yaml:"workers"`

	// WorkspaceDir is the base directory for scratch workspaces.
	// Empty means the system temporary directory.
	WorkspaceDir string `json:"workspace_dir" yaml:"workspace_dir"`
}

// Normalize fills in defaults for unset fields.
func (c PipelineConfig) Normalize() PipelineConfig {
	def := DefaultTools()
	if c.Tools.Djvused == "" {
		c.Tools.Djvused = def.Djvused
	}
	if c.Tools.Ddjvu == "" {
		c.Tools.Ddjvu = def.Ddjvu
	}
	if c.Tools.Djvu2hocr == "" {
		c.Tools.Djvu2hocr = def.Djvu2hocr
	}
	if c.Tools.Pdfbeads == "" {
		c.Tools.Pdfbeads = def.Pdfbeads
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}
