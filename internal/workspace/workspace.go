// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace manages the scratch directory holding one job's
// intermediate artifacts: split page images, per-page OCR fragments,
// the transcoded outline, and the staged output PDF.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
)

// Workspace is a uniquely named temporary directory owned by exactly
// one conversion job. It is created at pipeline start and must be
// released on every exit path.
type Workspace struct {
	// Root is the absolute path of the scratch directory.
	Root string
}

// New creates a fresh workspace under baseDir, or under the system
// temporary directory when baseDir is empty. The directory name embeds
// a UUID so concurrent jobs on the same machine never collide.
func New(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	root := filepath.Join(baseDir, "djvu2pdf-"+uuid.NewString())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", root, err)
	}
	return &Workspace{Root: root}, nil
}

// Release recursively deletes the workspace and everything inside it.
// It is idempotent and tolerates the directory already being gone.
func (w *Workspace) Release() error {
	if w == nil || w.Root == "" {
		return nil
	}
	return os.RemoveAll(w.Root)
}

// PageImage returns the path for page's raster image. Page numbers are
// zero-padded to the width of the total page count so lexical and page
// order agree.
func (w *Workspace) PageImage(page, total int) string {
	return filepath.Join(w.Root, pageName(page, total)+".tiff")
}

// PageText returns the path for page's OCR text fragment.
func (w *Workspace) PageText(page, total int) string {
	return filepath.Join(w.Root, pageName(page, total)+".html")
}

// TOCFile returns the path of the transcoded outline file.
func (w *Workspace) TOCFile() string {
	return filepath.Join(w.Root, "toc.txt")
}

// StagedOutput returns the path the assembly tool writes the PDF to.
// The pipeline renames it to the job's output path only on success, so
// a failed job never leaves a partial file at the destination.
func (w *Workspace) StagedOutput() string {
	return filepath.Join(w.Root, "output.pdf")
}

func pageName(page, total int) string {
	width := len(strconv.Itoa(total))
	return fmt.Sprintf("page_%0*d", width, page)
}
