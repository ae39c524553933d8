package jobs

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGenerateInvoice renders and archives the invoice of a stored job.
	TaskGenerateInvoice = "invoice:generate"

	invoiceTaskRetention = time.Hour
)

// GenerateInvoicePayload identifies the job to invoice.
type GenerateInvoicePayload struct {
	JobNumber string `json:"jobNumber"`
}

// NewGenerateInvoiceTask constructs the task. Its ID is derived from the job
// number so a job is queued at most once while a task for it is retained.
func NewGenerateInvoiceTask(payload GenerateInvoicePayload) (*asynq.Task, error) {
	payload.JobNumber = strings.TrimSpace(payload.JobNumber)
	if payload.JobNumber == "" {
		return nil, errors.New("jobs: job number required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateInvoice, data,
		asynq.TaskID(InvoiceTaskID(payload.JobNumber)),
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Retention(invoiceTaskRetention),
	), nil
}

// InvoiceTaskID is the queue task ID for a job number.
func InvoiceTaskID(jobNumber string) string {
	return TaskGenerateInvoice + ":" + jobNumber
}

// DecodeGenerateInvoice parses a task payload.
func DecodeGenerateInvoice(task *asynq.Task) (GenerateInvoicePayload, error) {
	var payload GenerateInvoicePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.JobNumber) == "" {
		return payload, errors.New("jobs: job number required")
	}
	return payload, nil
}
