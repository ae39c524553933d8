package invoicing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/artifacts"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobstore"
)

// Store loads jobs and records generated invoices.
type Store interface {
	GetByNumber(ctx context.Context, jobNumber string) (*invoice.Job, error)
	RecordInvoice(ctx context.Context, rec jobstore.InvoiceRecord) error
}

// ArtifactCache keeps rendered invoices between requests.
type ArtifactCache interface {
	Get(ctx context.Context, id uuid.UUID) (export.Artifact, error)
	Put(ctx context.Context, art export.Artifact) error
}

// Generator renders a job into an artifact.
type Generator interface {
	Generate(ctx context.Context, job *invoice.Job) (export.Artifact, error)
}

// Config wires a Service. Store and Cache are optional.
type Config struct {
	Store     Store
	Cache     ArtifactCache
	Generator Generator
	Logger    *slog.Logger
	Now       func() time.Time
}

// Service serves invoices for stored jobs. Concurrent requests for the same
// document share one generation.
type Service struct {
	store  Store
	cache  ArtifactCache
	gen    Generator
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group
}

// NewService constructs a Service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, gen: cfg.Generator, logger: logger, now: now}
}

// Generate returns the artifact for job, from cache when possible.
func (s *Service) Generate(ctx context.Context, job *invoice.Job) (export.Artifact, error) {
	if err := invoice.Validate(job); err != nil {
		return export.Artifact{}, err
	}
	id, err := export.DocumentID(job)
	if err != nil {
		return export.Artifact{}, err
	}
	if art, ok := s.cached(ctx, id); ok {
		return art, nil
	}

	resultChan := s.group.DoChan(id.String(), func() (interface{}, error) {
		art, err := s.gen.Generate(ctx, job)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, art); err != nil {
				s.logger.Warn("cache invoice", slog.String("job_number", job.JobNumber), slog.Any("error", err))
			}
		}
		return art, nil
	})
	select {
	case <-ctx.Done():
		return export.Artifact{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return export.Artifact{}, res.Err
		}
		return res.Val.(export.Artifact), nil
	}
}

// ForJob loads a stored job, generates its invoice and records it.
func (s *Service) ForJob(ctx context.Context, jobNumber string) (export.Artifact, error) {
	if s.store == nil {
		return export.Artifact{}, errors.New("invoicing: job store not configured")
	}
	job, err := s.store.GetByNumber(ctx, jobNumber)
	if err != nil {
		return export.Artifact{}, err
	}
	art, err := s.Generate(ctx, job)
	if err != nil {
		return export.Artifact{}, err
	}
	rec := jobstore.InvoiceRecord{
		JobNumber:   job.JobNumber,
		DocumentID:  art.ID,
		Filename:    art.Filename,
		Variant:     art.Variant,
		Pages:       art.Pages,
		GeneratedAt: s.now().UTC(),
	}
	if err := s.store.RecordInvoice(ctx, rec); err != nil {
		s.logger.Warn("record invoice", slog.String("job_number", jobNumber), slog.Any("error", err))
	}
	return art, nil
}

func (s *Service) cached(ctx context.Context, id uuid.UUID) (export.Artifact, bool) {
	if s.cache == nil {
		return export.Artifact{}, false
	}
	art, err := s.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, artifacts.ErrMiss) {
			s.logger.Warn("read invoice cache", slog.String("document_id", id.String()), slog.Any("error", err))
		}
		return export.Artifact{}, false
	}
	return art, true
}
