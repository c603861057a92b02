// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Job describes one conversion request. It is immutable for the job's
// lifetime; a fresh Job always starts the pipeline from the beginning.
type Job struct {
	// InputPath is the DjVu document to convert.
	InputPath string

	// OutputPath is where the finished PDF is placed.
	OutputPath string

	// TOCPath optionally supplies a ready-made bookmark listing. When
	// set, the pipeline skips outline extraction and transcodes this
	// file instead.
	TOCPath string
}

// Validate fails fast on unusable paths so a doomed job never spawns an
// external process or a workspace.
func (j Job) Validate() error {
	info, err := os.Stat(j.InputPath)
	if err != nil {
		return fmt.Errorf("%w: input %s: %v", ErrInvalidArguments, j.InputPath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: input %s is not a regular file", ErrInvalidArguments, j.InputPath)
	}
	f, err := os.Open(j.InputPath)
	if err != nil {
		return fmt.Errorf("%w: input %s not readable: %v", ErrInvalidArguments, j.InputPath, err)
	}
	f.Close()

	if j.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidArguments)
	}
	parent := filepath.Dir(j.OutputPath)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: output directory %s does not exist", ErrInvalidArguments, parent)
	}
	probe, err := os.CreateTemp(parent, ".djvu2pdf-probe-*")
	if err != nil {
		return fmt.Errorf("%w: output directory %s not writable: %v", ErrInvalidArguments, parent, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	if j.TOCPath != "" {
		if _, err := os.Stat(j.TOCPath); err != nil {
			return fmt.Errorf("%w: TOC file %s: %v", ErrInvalidArguments, j.TOCPath, err)
		}
	}
	return nil
}
