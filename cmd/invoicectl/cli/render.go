package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
)

// Exit codes shared by the commands.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitPartial = 10
)

// Generator renders one job.
type Generator interface {
	Generate(ctx context.Context, job *invoice.Job) (export.Artifact, error)
}

// InvoiceCLI offers offline rendering helpers.
type InvoiceCLI struct {
	gen Generator
}

// NewInvoiceCLI constructs a helper around the generator.
func NewInvoiceCLI(gen Generator) (*InvoiceCLI, error) {
	if gen == nil {
		return nil, errors.New("invoice cli: generator required")
	}
	return &InvoiceCLI{gen: gen}, nil
}

// RenderOptions defines available flags for the render command.
type RenderOptions struct {
	Files       []string
	OutDir      string
	Concurrency int
	JSONOutput  bool
	Stdout      io.Writer
	Stderr      io.Writer
}

// RenderSummary describes the JSON response for render.
type RenderSummary struct {
	OK      bool           `json:"ok"`
	Results []RenderResult `json:"results"`
}

// RenderResult reports one input file.
type RenderResult struct {
	Source  string          `json:"source"`
	Output  string          `json:"output,omitempty"`
	Variant invoice.Variant `json:"variant,omitempty"`
	Pages   int             `json:"pages,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RenderCommand renders every job file and writes the PDFs under OutDir.
// Failures are reported per file; the exit code is ExitPartial when any file
// failed.
func (c *InvoiceCLI) RenderCommand(ctx context.Context, opts RenderOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if len(opts.Files) == 0 {
		_, _ = fmt.Fprintln(opts.Stderr, "render: at least one job file is required")
		return ExitUsage
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "render: create output dir: %v\n", err)
		return ExitUsage
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	results := make([]RenderResult, len(opts.Files))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, file := range opts.Files {
		g.Go(func() error {
			results[i] = c.renderFile(ctx, file, opts.OutDir)
			return nil
		})
	}
	_ = g.Wait()

	summary := RenderSummary{OK: true, Results: results}
	for _, res := range results {
		if res.Error != "" {
			summary.OK = false
		}
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "render: encode json: %v\n", err)
			return ExitUsage
		}
	} else {
		renderHuman(opts.Stdout, opts.Stderr, results)
	}
	if !summary.OK {
		return ExitPartial
	}
	return ExitOK
}

func (c *InvoiceCLI) renderFile(ctx context.Context, file, outDir string) RenderResult {
	res := RenderResult{Source: file}
	job, err := ReadJob(file)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	art, err := c.gen.Generate(ctx, job)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if art.Filename == "" || filepath.Base(art.Filename) != art.Filename {
		res.Error = fmt.Sprintf("unsafe output filename %q", art.Filename)
		return res
	}
	out := filepath.Join(outDir, art.Filename)
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		res.Error = fmt.Sprintf("write %s: %v", out, err)
		return res
	}
	res.Output = out
	res.Variant = art.Variant
	res.Pages = art.Pages
	return res
}

// ReadJob decodes a job JSON file.
func ReadJob(path string) (*invoice.Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	var job invoice.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", path, err)
	}
	return &job, nil
}

func renderHuman(out, errOut io.Writer, results []RenderResult) {
	for _, res := range results {
		if res.Error != "" {
			_, _ = fmt.Fprintf(errOut, "FAIL %s: %s\n", res.Source, res.Error)
			continue
		}
		_, _ = fmt.Fprintf(out, "ok   %s -> %s (%s, %d page(s))\n", res.Source, res.Output, res.Variant, res.Pages)
	}
}
