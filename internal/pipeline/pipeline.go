// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the external tools that turn a DjVu
// document into a searchable PDF: metadata extraction, page splitting,
// per-page OCR text extraction, outline transcoding, and PDF assembly.
// Each job owns an isolated scratch workspace that is torn down on
// every exit path, and the final PDF reaches the caller-visible output
// path only after the whole pipeline has succeeded.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/djvu2pdf/internal/runner"
	"github.com/pdiddy/djvu2pdf/internal/toc"
	"github.com/pdiddy/djvu2pdf/internal/workspace"
	"github.com/pdiddy/djvu2pdf/pkg/types"
)

// Stage names one step of the fixed conversion sequence.
type Stage string

const (
	StageMetadata Stage = "extract-metadata"
	StageSplit    Stage = "split-pages"
	StageText     Stage = "extract-text"
	StageTOC      Stage = "transcode-toc"
	StageAssemble Stage = "assemble-pdf"
)

// Pipeline converts DjVu documents. It is safe for concurrent use;
// each Convert call owns its job, workspace, and progress state.
type Pipeline struct {
	cfg types.PipelineConfig
	run runner.Runner
	obs Observer
}

// New builds a pipeline. A nil runner selects the os/exec-backed
// production runner; a nil observer discards progress.
func New(cfg types.PipelineConfig, r runner.Runner, obs Observer) *Pipeline {
	if r == nil {
		r = runner.ExecRunner{}
	}
	return &Pipeline{cfg: cfg.Normalize(), run: r, obs: obs}
}

// Result summarizes a successful conversion.
type Result struct {
	OutputPath    string
	Pages         int
	TextlessPages []int
	TOCEntries    int
	Duration      time.Duration
}

// Report converts the result into the shared report type.
func (r *Result) Report(input string) types.ConversionReport {
	return types.ConversionReport{
		Input:         input,
		Output:        r.OutputPath,
		Pages:         r.Pages,
		TextlessPages: r.TextlessPages,
		TOCEntries:    r.TOCEntries,
		Duration:      r.Duration,
		ConvertedAt:   time.Now().UTC(),
	}
}

// Convert runs the job through every stage in order, aborting on the
// first unrecoverable failure. Fatal errors are returned as a
// *StageError naming the stage, except argument validation, which runs
// before the pipeline proper. Workspace cleanup is unconditional.
func (p *Pipeline) Convert(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()

	if err := job.Validate(); err != nil {
		return nil, err
	}

	ws, err := workspace.New(p.cfg.WorkspaceDir)
	if err != nil {
		return nil, &FSError{Op: "create workspace", Err: err}
	}
	defer ws.Release()

	prog := newTracker(p.obs)
	prog.report(0, "Starting conversion")

	pages, tocText, err := p.extractMetadata(ctx, job)
	if err != nil {
		return nil, stageFail(ctx, StageMetadata, err)
	}
	prog.report(10, fmt.Sprintf("Extracted metadata (%d pages)", pages))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := p.splitPages(ctx, job, ws, pages, prog); err != nil {
		return nil, stageFail(ctx, StageSplit, err)
	}
	prog.report(20, "Split pages")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	textless, err := p.extractText(ctx, job, ws, pages, prog)
	if err != nil {
		return nil, stageFail(ctx, StageText, err)
	}
	prog.report(90, "Extracted OCR text")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tocEntries, hasTOC, err := p.transcodeTOC(tocText, ws)
	if err != nil {
		return nil, &StageError{Stage: StageTOC, Err: err}
	}
	prog.report(92, "Transcoded table of contents")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog.report(95, "Assembling PDF")
	if err := p.assemble(ctx, job, ws, pages, textless, hasTOC); err != nil {
		return nil, stageFail(ctx, StageAssemble, err)
	}

	prog.report(100, "Conversion complete")
	return &Result{
		OutputPath:    job.OutputPath,
		Pages:         pages,
		TextlessPages: textless,
		TOCEntries:    tocEntries,
		Duration:      time.Since(start),
	}, nil
}

// stageFail attributes err to its stage, except when the failure is the
// job's own cancellation: that is reported as the context error, since
// the stage did nothing wrong.
func stageFail(ctx context.Context, stage Stage, err error) error {
	if cause := ctx.Err(); cause != nil && errors.Is(err, cause) {
		return cause
	}
	return &StageError{Stage: stage, Err: err}
}

// extractMetadata obtains the page count and the raw bookmark listing.
// An absent or empty listing is tolerated; an unusable page count is
// fatal because every later stage is sized by it.
func (p *Pipeline) extractMetadata(ctx context.Context, job Job) (int, string, error) {
	res, err := p.run.Run(ctx, runner.Invocation{
		Tool: p.cfg.Tools.Djvused,
		Args: []string{"-e", "n", job.InputPath},
	})
	if err != nil {
		return 0, "", err
	}
	raw := strings.TrimSpace(res.Stdout)
	pages, convErr := strconv.Atoi(raw)
	if convErr != nil || pages <= 0 {
		return 0, "", fmt.Errorf("%w: got %q", ErrMetadataMissing, raw)
	}

	if job.TOCPath != "" {
		data, err := os.ReadFile(job.TOCPath)
		if err != nil {
			return 0, "", &FSError{Op: "read supplied TOC", Err: err}
		}
		return pages, string(data), nil
	}

	res, err = p.run.Run(ctx, runner.Invocation{
		Tool: p.cfg.Tools.Djvused,
		Args: []string{"-e", "print-outline", job.InputPath},
	})
	if err != nil {
		return 0, "", err
	}
	return pages, res.Stdout, nil
}

// splitPages rasterizes each page into a TIFF in the workspace, one
// tool invocation per page across the worker pool.
func (p *Pipeline) splitPages(ctx context.Context, job Job, ws *workspace.Workspace, pages int, prog *tracker) error {
	return p.forEachPage(ctx, pages, func(page int) error {
		_, err := p.run.Run(ctx, runner.Invocation{
			Tool: p.cfg.Tools.Ddjvu,
			Args: []string{
				"-format=tiff",
				fmt.Sprintf("-page=%d", page),
				job.InputPath,
				ws.PageImage(page, pages),
			},
		})
		return err
	}, func(done int) {
		prog.report(span(10, 20, done, pages), fmt.Sprintf("Splitting pages (%d/%d)", done, pages))
	})
}

// extractText runs the OCR tool per page and writes each fragment into
// the workspace. A page for which the tool emits nothing is recorded as
// textless rather than failing the stage; assembly then omits that
// page's text layer. The returned page numbers are sorted.
func (p *Pipeline) extractText(ctx context.Context, job Job, ws *workspace.Workspace, pages int, prog *tracker) ([]int, error) {
	var mu sync.Mutex
	var textless []int

	err := p.forEachPage(ctx, pages, func(page int) error {
		res, err := p.run.Run(ctx, runner.Invocation{
			Tool: p.cfg.Tools.Djvu2hocr,
			Args: []string{job.InputPath, "-p", strconv.Itoa(page)},
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(res.Stdout) == "" {
			mu.Lock()
			textless = append(textless, page)
			mu.Unlock()
			return nil
		}
		// The OCR tool emits hOCR with ocrx_* class names; the assembly
		// tool understands only the plain ocr_* classes.
		content := strings.ReplaceAll(res.Stdout, "ocrx", "ocr")
		if err := os.WriteFile(ws.PageText(page, pages), []byte(content), 0o644); err != nil {
			return &FSError{Op: "write OCR fragment", Err: err}
		}
		return nil
	}, func(done int) {
		prog.report(span(30, 90, done, pages), fmt.Sprintf("Extracting OCR text (%d/%d)", done, pages))
	})
	if err != nil {
		return nil, err
	}

	sort.Ints(textless)
	return textless, nil
}

// transcodeTOC reshapes the bookmark listing into the assembly tool's
// syntax and writes it into the workspace. An empty listing yields no
// file; assembly then runs without a bookmark argument.
func (p *Pipeline) transcodeTOC(tocText string, ws *workspace.Workspace) (entries int, hasTOC bool, err error) {
	root, err := toc.Parse(tocText)
	if err != nil {
		return 0, false, err
	}
	serialized := toc.Serialize(root)
	if serialized == "" {
		return 0, false, nil
	}
	if err := os.WriteFile(ws.TOCFile(), []byte(serialized), 0o644); err != nil {
		return 0, false, &FSError{Op: "write transcoded TOC", Err: err}
	}
	return root.Count(), true, nil
}

// assemble invokes the assembly tool inside the workspace with every
// page image in order, the text fragment of each page that has one, and
// the transcoded TOC when present. The PDF is staged inside the
// workspace and moved to the job's output path only on success.
func (p *Pipeline) assemble(ctx context.Context, job Job, ws *workspace.Workspace, pages int, textless []int, hasTOC bool) error {
	skip := make(map[int]bool, len(textless))
	for _, page := range textless {
		skip[page] = true
	}

	var args []string
	if hasTOC {
		args = append(args, "--toc", filepath.Base(ws.TOCFile()))
	}
	args = append(args, "-o", filepath.Base(ws.StagedOutput()))
	for page := 1; page <= pages; page++ {
		args = append(args, filepath.Base(ws.PageImage(page, pages)))
		if !skip[page] {
			args = append(args, filepath.Base(ws.PageText(page, pages)))
		}
	}

	if _, err := p.run.Run(ctx, runner.Invocation{
		Tool: p.cfg.Tools.Pdfbeads,
		Args: args,
		Dir:  ws.Root,
	}); err != nil {
		return err
	}

	if err := moveFile(ws.StagedOutput(), job.OutputPath); err != nil {
		return &FSError{Op: "move output into place", Err: err}
	}
	return nil
}

// moveFile renames src to dst, falling back to copy-and-delete when the
// paths sit on different filesystems. A failed copy removes the partial
// destination so the output path never holds a half-written PDF.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
