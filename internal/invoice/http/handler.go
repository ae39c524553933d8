package invoicehttp

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/export"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/layout"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobstore"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/httpx"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/jobs"
)

// Invoices serves rendered invoices.
type Invoices interface {
	Generate(ctx context.Context, job *invoice.Job) (export.Artifact, error)
	ForJob(ctx context.Context, jobNumber string) (export.Artifact, error)
}

// Previewer lays out a job without rendering it.
type Previewer interface {
	Layout(ctx context.Context, job *invoice.Job) (*layout.Document, string, error)
}

// Enqueuer schedules background generation.
type Enqueuer interface {
	EnqueueGenerateInvoice(ctx context.Context, jobNumber string) (*asynq.TaskInfo, error)
}

// Handler wires HTTP endpoints for invoices.
type Handler struct {
	logger    *slog.Logger
	invoices  Invoices
	previewer Previewer
	queue     Enqueuer
}

// NewHandler constructs a Handler value. queue may be nil, in which case the
// queue endpoint answers 503.
func NewHandler(logger *slog.Logger, invoices Invoices, previewer Previewer, queue Enqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, invoices: invoices, previewer: previewer, queue: queue}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/invoices", h.create)
	r.Post("/invoices/preview", h.preview)
	r.Get("/jobs/{jobNumber}/invoice", h.forJob)
	r.Post("/jobs/{jobNumber}/invoice/queue", h.enqueue)
}

// create renders a posted job and returns the PDF as an attachment.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	job, ok := h.decodeJob(w, r)
	if !ok {
		return
	}
	art, err := h.invoices.Generate(r.Context(), job)
	if err != nil {
		h.fail(w, "generate invoice", job.JobNumber, err)
		return
	}
	h.attach(w, art)
}

type pagePreview struct {
	Number   int              `json:"number"`
	Sections []layout.Section `json:"sections"`
}

type previewResponse struct {
	Variant       invoice.Variant `json:"variant"`
	Filename      string          `json:"filename"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	Subtotal      string          `json:"subtotal"`
	Pages         []pagePreview   `json:"pages"`
}

// preview returns the classification and page plan of a posted job.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	job, ok := h.decodeJob(w, r)
	if !ok {
		return
	}
	doc, filename, err := h.previewer.Layout(r.Context(), job)
	if err != nil {
		h.fail(w, "preview invoice", job.JobNumber, err)
		return
	}
	resp := previewResponse{
		Variant:       doc.Variant,
		Filename:      filename,
		InvoiceNumber: doc.InvoiceNumber,
		InvoiceDate:   invoice.FormatDate(doc.InvoiceDate),
		Subtotal:      invoice.FormatMoney(doc.Subtotal),
		Pages:         make([]pagePreview, 0, doc.PageCount()),
	}
	for _, p := range doc.Pages {
		resp.Pages = append(resp.Pages, pagePreview{Number: p.Number, Sections: doc.SectionsOn(p.Number)})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// forJob serves the invoice of a stored job.
func (h *Handler) forJob(w http.ResponseWriter, r *http.Request) {
	jobNumber := strings.TrimSpace(chi.URLParam(r, "jobNumber"))
	art, err := h.invoices.ForJob(r.Context(), jobNumber)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "job "+jobNumber+" not found")
			return
		}
		h.fail(w, "invoice for job", jobNumber, err)
		return
	}
	h.attach(w, art)
}

type queuedResponse struct {
	JobNumber string `json:"jobNumber"`
	TaskID    string `json:"taskId"`
	Status    string `json:"status"`
}

// enqueue schedules background generation for a stored job.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "background generation is not configured")
		return
	}
	jobNumber := strings.TrimSpace(chi.URLParam(r, "jobNumber"))
	resp := queuedResponse{JobNumber: jobNumber, TaskID: jobs.InvoiceTaskID(jobNumber), Status: "queued"}
	if _, err := h.queue.EnqueueGenerateInvoice(r.Context(), jobNumber); err != nil {
		if !errors.Is(err, jobs.ErrAlreadyQueued) {
			h.logger.Error("enqueue invoice", slog.String("job_number", jobNumber), slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "could not queue invoice")
			return
		}
		resp.Status = "already_queued"
	}
	httpx.JSON(w, http.StatusAccepted, resp)
}

func (h *Handler) decodeJob(w http.ResponseWriter, r *http.Request) (*invoice.Job, bool) {
	var job invoice.Job
	if err := httpx.DecodeJSON(w, r, &job); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return nil, false
	}
	return &job, true
}

func (h *Handler) fail(w http.ResponseWriter, op, jobNumber string, err error) {
	if errors.Is(err, invoice.ErrInvalidJob) {
		h.logger.Warn(op, slog.String("job_number", jobNumber), slog.Any("error", err))
	} else {
		h.logger.Error(op, slog.String("job_number", jobNumber), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func (h *Handler) attach(w http.ResponseWriter, art export.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Invoice-Variant", string(art.Variant))
	w.Header().Set("X-Invoice-Pages", strconv.Itoa(art.Pages))
	w.Header().Set("ETag", `"`+art.ID.String()+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		h.logger.Warn("stream invoice", slog.String("filename", art.Filename), slog.Any("error", err))
	}
}
