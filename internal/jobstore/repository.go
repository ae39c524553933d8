package jobstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/db"
)

// ErrNotFound is returned when no job matches the requested number.
var ErrNotFound = errors.New("job not found")

// Schema creates the job store tables.
//
//go:embed schema.sql
var Schema string

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	dbtx
	db.TxStarter
}

// InvoiceRecord describes one generated invoice for the audit log.
type InvoiceRecord struct {
	JobNumber   string
	DocumentID  uuid.UUID
	Filename    string
	Variant     invoice.Variant
	Pages       int
	GeneratedAt time.Time
}

// Repository loads jobs for invoicing and records generated invoices.
type Repository struct {
	pool Pool
}

// NewRepository constructs a Repository over a pgx pool.
func NewRepository(pool Pool) *Repository {
	return &Repository{pool: pool}
}

const selectJob = `SELECT id, job_number, customer_type, is_business,
	COALESCE(business_name, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(street_address, ''), COALESCE(city, ''), COALESCE(state, ''), COALESCE(zip_code, ''),
	COALESCE(phone, ''), COALESCE(email, ''), install_date, created_at,
	total_due::text, amount_paid::text, balance_due::text, calibration_declined
FROM glass_jobs WHERE job_number = $1`

const selectLines = `SELECT v.id, COALESCE(v.vehicle_year, ''), COALESCE(v.vehicle_make, ''),
	COALESCE(v.vehicle_model, ''), COALESCE(v.vin, ''),
	p.id, COALESCE(p.job_type, ''), COALESCE(p.part_total::text, '0')
FROM glass_job_vehicles v
LEFT JOIN glass_job_parts p ON p.vehicle_id = v.id
WHERE v.job_id = $1
ORDER BY v.position, v.id, p.position, p.id`

// GetByNumber loads a job with its vehicles and parts in stored order.
func (r *Repository) GetByNumber(ctx context.Context, jobNumber string) (*invoice.Job, error) {
	var id int64
	var job invoice.Job
	var customerType, totalDue, amountPaid, balDue string
	err := r.pool.QueryRow(ctx, selectJob, jobNumber).Scan(
		&id, &job.JobNumber, &customerType, &job.IsBusiness,
		&job.BusinessName, &job.FirstName, &job.LastName,
		&job.StreetAddress, &job.City, &job.State, &job.ZipCode,
		&job.Phone, &job.Email, &job.InstallDate, &job.CreatedAt,
		&totalDue, &amountPaid, &balDue, &job.CalibrationDeclined,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("jobstore: load job %s: %w", jobNumber, err)
	}
	job.CustomerType = invoice.CustomerType(customerType)
	if job.TotalDue, err = parseAmount("total_due", totalDue); err != nil {
		return nil, err
	}
	if job.AmountPaid, err = parseAmount("amount_paid", amountPaid); err != nil {
		return nil, err
	}
	if job.BalanceDue, err = parseAmount("balance_due", balDue); err != nil {
		return nil, err
	}

	vehicles, err := r.loadVehicles(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("jobstore: load vehicles for %s: %w", jobNumber, err)
	}
	job.Vehicles = vehicles
	return &job, nil
}

func (r *Repository) loadVehicles(ctx context.Context, jobID int64) ([]invoice.Vehicle, error) {
	rows, err := r.pool.Query(ctx, selectLines, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		vehicles []invoice.Vehicle
		lastID   int64 = -1
	)
	for rows.Next() {
		var (
			vehicleID int64
			v         invoice.Vehicle
			partID    *int64
			jobType   string
			total     string
		)
		if err := rows.Scan(&vehicleID, &v.Year, &v.Make, &v.Model, &v.VIN, &partID, &jobType, &total); err != nil {
			return nil, err
		}
		if vehicleID != lastID {
			vehicles = append(vehicles, v)
			lastID = vehicleID
		}
		if partID == nil {
			continue
		}
		amount, err := parseAmount("part_total", total)
		if err != nil {
			return nil, err
		}
		cur := &vehicles[len(vehicles)-1]
		cur.Parts = append(cur.Parts, invoice.Part{JobType: invoice.JobType(jobType), PartTotal: amount})
	}
	return vehicles, rows.Err()
}

// RecordInvoice stamps the job with its latest invoice and appends to the
// invoice log in one transaction.
func (r *Repository) RecordInvoice(ctx context.Context, rec InvoiceRecord) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE glass_jobs SET last_invoice_filename = $2, last_invoiced_at = $3 WHERE job_number = $1`,
			rec.JobNumber, rec.Filename, rec.GeneratedAt)
		if err != nil {
			return fmt.Errorf("jobstore: stamp invoice: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO glass_invoice_log (job_number, document_id, filename, variant, pages, generated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.JobNumber, rec.DocumentID, rec.Filename, string(rec.Variant), rec.Pages, rec.GeneratedAt)
		if err != nil {
			return fmt.Errorf("jobstore: log invoice: %w", err)
		}
		return nil
	})
}

const upsertJob = `INSERT INTO glass_jobs (
	job_number, customer_type, is_business, business_name, first_name, last_name,
	street_address, city, state, zip_code, phone, email, install_date, created_at,
	total_due, amount_paid, balance_due, calibration_declined
) VALUES (
	$1, COALESCE(NULLIF($2, ''), 'retail'), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
	NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), $13, $14,
	$15::numeric, $16::numeric, $17::numeric, $18
)
ON CONFLICT (job_number) DO UPDATE SET
	customer_type = EXCLUDED.customer_type,
	is_business = EXCLUDED.is_business,
	business_name = EXCLUDED.business_name,
	first_name = EXCLUDED.first_name,
	last_name = EXCLUDED.last_name,
	street_address = EXCLUDED.street_address,
	city = EXCLUDED.city,
	state = EXCLUDED.state,
	zip_code = EXCLUDED.zip_code,
	phone = EXCLUDED.phone,
	email = EXCLUDED.email,
	install_date = EXCLUDED.install_date,
	created_at = EXCLUDED.created_at,
	total_due = EXCLUDED.total_due,
	amount_paid = EXCLUDED.amount_paid,
	balance_due = EXCLUDED.balance_due,
	calibration_declined = EXCLUDED.calibration_declined
RETURNING id`

// Save inserts or replaces a job with its vehicles and parts. Positions follow
// slice order so GetByNumber returns lines as saved.
func (r *Repository) Save(ctx context.Context, job *invoice.Job) error {
	if err := invoice.Validate(job); err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var jobID int64
		err := tx.QueryRow(ctx, upsertJob,
			job.JobNumber, string(job.CustomerType), job.IsBusiness, job.BusinessName, job.FirstName, job.LastName,
			job.StreetAddress, job.City, job.State, job.ZipCode, job.Phone, job.Email, job.InstallDate, job.CreatedAt,
			job.TotalDue.StringFixed(2), job.AmountPaid.StringFixed(2), job.BalanceDue.StringFixed(2), job.CalibrationDeclined,
		).Scan(&jobID)
		if err != nil {
			return fmt.Errorf("jobstore: save job %s: %w", job.JobNumber, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM glass_job_vehicles WHERE job_id = $1`, jobID); err != nil {
			return fmt.Errorf("jobstore: clear vehicles: %w", err)
		}
		for vi, v := range job.Vehicles {
			var vehicleID int64
			err := tx.QueryRow(ctx,
				`INSERT INTO glass_job_vehicles (job_id, position, vehicle_year, vehicle_make, vehicle_model, vin)
				VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, '')) RETURNING id`,
				jobID, vi, v.Year, v.Make, v.Model, v.VIN,
			).Scan(&vehicleID)
			if err != nil {
				return fmt.Errorf("jobstore: save vehicle %d: %w", vi, err)
			}
			for pi, p := range v.Parts {
				_, err := tx.Exec(ctx,
					`INSERT INTO glass_job_parts (vehicle_id, position, job_type, part_total) VALUES ($1, $2, $3, $4::numeric)`,
					vehicleID, pi, string(p.JobType), p.PartTotal.StringFixed(2))
				if err != nil {
					return fmt.Errorf("jobstore: save part %d of vehicle %d: %w", pi, vi, err)
				}
			}
		}
		return nil
	})
}

// Migrate applies the schema. It is idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("jobstore: migrate: %w", err)
	}
	return nil
}

func parseAmount(column, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jobstore: parse %s %q: %w", column, raw, err)
	}
	return amount, nil
}
