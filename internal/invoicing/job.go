package invoicing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/artifacts"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
	jobmetrics "github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobs"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobstore"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/jobs"
)

const jobName = "invoice_generate"

// Archiver persists rendered invoices.
type Archiver interface {
	Save(art export.Artifact) (string, error)
}

// JobConfig wires dependencies required by the worker job.
type JobConfig struct {
	Service *Service
	Archive Archiver
	Metrics *jobmetrics.Metrics
	Logger  *slog.Logger
}

// Job processes invoice generation requests coming from the queue.
type Job struct {
	service *Service
	archive Archiver
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewJob constructs a Job handler.
func NewJob(cfg JobConfig) *Job {
	archive := cfg.Archive
	if archive == nil {
		archive = artifacts.Archive{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Job{service: cfg.Service, archive: archive, metrics: cfg.Metrics, logger: logger}
}

// TaskHandler registers the job with the worker.
func (j *Job) TaskHandler() jobs.TaskHandler {
	return jobs.TaskHandler{Type: jobs.TaskGenerateInvoice, Handler: j.Handle}
}

// Handle fulfils the asynq.HandlerFunc contract. Unknown and invalid jobs and
// artifacts the archive rejects are not retried; store, cache and disk errors
// are.
func (j *Job) Handle(ctx context.Context, task *asynq.Task) error {
	tracker := j.metrics.Track(jobName)
	return tracker.End(j.handle(ctx, task))
}

func (j *Job) handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.service == nil {
		return fmt.Errorf("invoice job not configured")
	}
	payload, err := jobs.DecodeGenerateInvoice(task)
	if err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	art, err := j.service.ForJob(ctx, payload.JobNumber)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) || errors.Is(err, invoice.ErrInvalidJob) {
			j.logger.Warn("invoice job skipped", slog.String("job_number", payload.JobNumber), slog.Any("error", err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	path, err := j.archive.Save(art)
	if err != nil {
		if errors.Is(err, artifacts.ErrInvalidArtifact) {
			j.logger.Warn("invoice archive rejected", slog.String("job_number", payload.JobNumber), slog.Any("error", err))
			return fmt.Errorf("archive invoice: %v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("archive invoice: %w", err)
	}
	j.metrics.Archived()
	j.logger.Info("invoice archived",
		slog.String("job_number", payload.JobNumber),
		slog.String("variant", string(art.Variant)),
		slog.Int("pages", art.Pages),
		slog.String("path", path),
	)
	return nil
}
