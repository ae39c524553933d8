package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/layout"
)

// ContentType of every generated artifact.
const ContentType = "application/pdf"

// Generation outcomes reported to the Recorder.
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Recorder receives generation telemetry. A nil Recorder is allowed.
type Recorder interface {
	ObserveGeneration(variant invoice.Variant, status string, elapsed time.Duration)
	LogoFallback()
}

// Artifact is one rendered invoice. The caller owns Data.
type Artifact struct {
	ID          uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
	Variant     invoice.Variant
	Pages       int
}

// Options wires a Generator.
type Options struct {
	Config  layout.Config
	Logo    layout.LogoLoader
	Logger  *slog.Logger
	Metrics Recorder
}

// Generator turns jobs into invoice PDFs. It holds no per-run state and is
// safe for concurrent use.
type Generator struct {
	cfg     layout.Config
	logo    layout.LogoLoader
	logger  *slog.Logger
	metrics Recorder
}

// NewGenerator constructs a Generator.
func NewGenerator(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: opts.Config, logo: opts.Logo, logger: logger, metrics: opts.Metrics}
}

// Layout classifies and lays out the job without rendering bytes.
func (g *Generator) Layout(ctx context.Context, job *invoice.Job) (*layout.Document, string, error) {
	doc, err := layout.Layout(ctx, job, layout.Options{Config: g.cfg, Logo: g.logo})
	if err != nil {
		return nil, "", err
	}
	if doc.LogoErr != nil {
		g.logoFallback(job, doc.LogoErr)
	}
	if !job.Reconciles() {
		g.logger.Warn("invoice totals do not reconcile",
			slog.String("job_number", job.JobNumber),
			slog.String("total_due", job.TotalDue.StringFixed(2)),
			slog.String("amount_paid", job.AmountPaid.StringFixed(2)),
			slog.String("balance_due", job.BalanceDue.StringFixed(2)),
		)
	}
	return doc, Filename(job, doc.InvoiceDate, doc.InvoiceNumber), nil
}

// Generate lays out and renders the job. Only structural problems with the
// job or a rendering failure return an error; a missing logo degrades to the
// text header.
func (g *Generator) Generate(ctx context.Context, job *invoice.Job) (Artifact, error) {
	start := time.Now()
	doc, filename, err := g.Layout(ctx, job)
	if err != nil {
		status := StatusError
		if errors.Is(err, invoice.ErrInvalidJob) {
			status = StatusInvalid
		}
		g.observe(invoice.Classify(job), status, start)
		return Artifact{}, err
	}

	id, err := DocumentID(job)
	if err != nil {
		g.observe(doc.Variant, StatusError, start)
		return Artifact{}, err
	}

	var buf bytes.Buffer
	meta := Metadata{
		Title:      "Invoice " + doc.InvoiceNumber,
		Author:     g.companyName(),
		Subject:    job.CustomerName(),
		DocumentID: id.String(),
		CreatedAt:  doc.InvoiceDate,
	}
	if err := WritePDF(&buf, doc, meta); err != nil {
		g.observe(doc.Variant, StatusError, start)
		return Artifact{}, err
	}
	g.observe(doc.Variant, StatusSuccess, start)
	g.logger.Debug("invoice generated",
		slog.String("job_number", job.JobNumber),
		slog.String("variant", string(doc.Variant)),
		slog.Int("pages", doc.PageCount()),
		slog.String("filename", filename),
	)
	return Artifact{
		ID:          id,
		Filename:    filename,
		ContentType: ContentType,
		Data:        buf.Bytes(),
		Variant:     doc.Variant,
		Pages:       doc.PageCount(),
	}, nil
}

// DocumentID derives a stable identifier from the job's canonical JSON, so
// any change to the job yields a new ID.
func DocumentID(job *invoice.Job) (uuid.UUID, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("export: encode job: %w", err)
	}
	return uuid.NewSHA1(uuid.Nil, append([]byte("invoice:"), raw...)), nil
}

func (g *Generator) companyName() string {
	if g.cfg.Company.Name != "" {
		return g.cfg.Company.Name
	}
	return layout.DefaultConfig().Company.Name
}

func (g *Generator) logoFallback(job *invoice.Job, err error) {
	if errors.Is(err, layout.ErrNoLogo) {
		g.logger.Debug("no logo configured, using text header", slog.String("job_number", job.JobNumber))
		return
	}
	g.logger.Warn("logo unavailable, using text header",
		slog.String("job_number", job.JobNumber),
		slog.Any("error", err),
	)
	if g.metrics != nil {
		g.metrics.LogoFallback()
	}
}

func (g *Generator) observe(variant invoice.Variant, status string, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.ObserveGeneration(variant, status, time.Since(start))
}
