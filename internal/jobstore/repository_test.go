package jobstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

type execCall struct {
	sql  string
	args []interface{}
}

type stubDB struct {
	job      []interface{}
	lines    [][]interface{}
	affected int64
	execs    []execCall
	commits  int
	rollback int
	nextID   int64
}

func (s *stubDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{sql: sql, args: args})
	if strings.HasPrefix(strings.TrimSpace(sql), "UPDATE") {
		return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", s.affected)), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (s *stubDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return &stubRows{rows: s.lines, index: -1}, nil
}

func (s *stubDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if s.job == nil {
		return &stubRow{err: pgx.ErrNoRows}
	}
	return &stubRow{values: s.job}
}

func (s *stubDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return &stubTx{db: s}, nil
}

type stubTx struct {
	pgx.Tx
	db   *stubDB
	done bool
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	t.db.execs = append(t.db.execs, execCall{sql: sql, args: args})
	t.db.nextID++
	return &stubRow{values: []interface{}{t.db.nextID}}
}

func (t *stubTx) Commit(ctx context.Context) error {
	t.done = true
	t.db.commits++
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.db.rollback++
	return nil
}

func scanInto(values []interface{}, dest []interface{}) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values into %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(values[i]))
	}
	return nil
}

type stubRow struct {
	values []interface{}
	err    error
}

func (r *stubRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

type stubRows struct {
	rows  [][]interface{}
	index int
}

func (r *stubRows) Close()                                       { r.index = len(r.rows) }
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	if r.index+1 >= len(r.rows) {
		r.index = len(r.rows)
		return false
	}
	r.index++
	return true
}

func (r *stubRows) Scan(dest ...interface{}) error {
	if r.index < 0 || r.index >= len(r.rows) {
		return errors.New("no row available")
	}
	return scanInto(r.rows[r.index], dest)
}

func (r *stubRows) Values() ([]interface{}, error) {
	if r.index < 0 || r.index >= len(r.rows) {
		return nil, errors.New("no row available")
	}
	return r.rows[r.index], nil
}

func int64Ptr(v int64) *int64 { return &v }

func jobRow(installed *time.Time) []interface{} {
	return []interface{}{
		int64(7), "JOB-2024-1042", "retail", false,
		"", "Ana", "Ruiz",
		"118 Blanco Rd", "San Antonio", "TX", "78212",
		"(210) 555-0199", "ana@example.com", installed, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"380.00", "80.00", "300.00", true,
	}
}

func TestGetByNumberLoadsJobInStoredOrder(t *testing.T) {
	installed := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	stub := &stubDB{
		job: jobRow(&installed),
		lines: [][]interface{}{
			{int64(1), "2019", "Toyota", "Camry", "4T1B11HK5KU123456", int64Ptr(10), "windshield_replacement", "300.00"},
			{int64(1), "2019", "Toyota", "Camry", "4T1B11HK5KU123456", int64Ptr(11), "side_mirror", "80.00"},
			{int64(2), "2021", "Ford", "F-150", "", nil, "", "0"},
		},
	}
	repo := NewRepository(stub)

	job, err := repo.GetByNumber(context.Background(), "JOB-2024-1042")
	require.NoError(t, err)

	assert.Equal(t, "JOB-2024-1042", job.JobNumber)
	assert.Equal(t, invoice.CustomerRetail, job.CustomerType)
	assert.Equal(t, "Ana Ruiz", job.CustomerName())
	require.NotNil(t, job.InstallDate)
	assert.Equal(t, installed, *job.InstallDate)
	assert.True(t, job.CalibrationDeclined)
	assert.True(t, decimal.RequireFromString("380").Equal(job.TotalDue))
	assert.True(t, job.Reconciles())

	require.Len(t, job.Vehicles, 2)
	require.Len(t, job.Vehicles[0].Parts, 2)
	assert.Equal(t, invoice.JobTypeWindshieldReplacement, job.Vehicles[0].Parts[0].JobType)
	assert.Equal(t, invoice.JobTypeSideMirror, job.Vehicles[0].Parts[1].JobType)
	assert.Empty(t, job.Vehicles[1].Parts)
	assert.Equal(t, "2021 Ford F-150", job.Vehicles[1].Description())
	assert.True(t, decimal.RequireFromString("380").Equal(job.Subtotal()))
}

func TestGetByNumberNotFound(t *testing.T) {
	repo := NewRepository(&stubDB{})
	_, err := repo.GetByNumber(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByNumberRejectsBadAmount(t *testing.T) {
	row := jobRow(nil)
	row[15] = "not-a-number"
	repo := NewRepository(&stubDB{job: row})
	_, err := repo.GetByNumber(context.Background(), "JOB-2024-1042")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "total_due")
}

func TestRecordInvoice(t *testing.T) {
	stub := &stubDB{affected: 1}
	repo := NewRepository(stub)
	rec := InvoiceRecord{
		JobNumber:   "JOB-2024-1042",
		DocumentID:  uuid.NewSHA1(uuid.Nil, []byte("doc")),
		Filename:    "Ruiz_Ana_March42024_INV-1042.pdf",
		Variant:     invoice.VariantWindshieldReplacement,
		Pages:       2,
		GeneratedAt: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, repo.RecordInvoice(context.Background(), rec))
	require.Len(t, stub.execs, 2)
	assert.Contains(t, stub.execs[0].sql, "UPDATE glass_jobs")
	assert.Equal(t, rec.Filename, stub.execs[0].args[1])
	assert.Contains(t, stub.execs[1].sql, "INSERT INTO glass_invoice_log")
	assert.Equal(t, "windshield_replacement", stub.execs[1].args[3])
	assert.Equal(t, 1, stub.commits)
	assert.Zero(t, stub.rollback)
}

func TestRecordInvoiceUnknownJobRollsBack(t *testing.T) {
	stub := &stubDB{affected: 0}
	repo := NewRepository(stub)

	err := repo.RecordInvoice(context.Background(), InvoiceRecord{JobNumber: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, stub.execs, 1)
	assert.Zero(t, stub.commits)
	assert.Equal(t, 1, stub.rollback)
}

func TestMigrateExecutesSchema(t *testing.T) {
	stub := &stubDB{}
	require.NoError(t, NewRepository(stub).Migrate(context.Background()))
	require.Len(t, stub.execs, 1)
	assert.Contains(t, stub.execs[0].sql, "CREATE TABLE IF NOT EXISTS glass_jobs")
}

func TestSaveWritesLinesInOrder(t *testing.T) {
	stub := &stubDB{}
	repo := NewRepository(stub)
	job := &invoice.Job{
		JobNumber: "JOB-2024-1042",
		FirstName: "Ana",
		LastName:  "Ruiz",
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Vehicles: []invoice.Vehicle{
			{Year: "2019", Make: "Toyota", Model: "Camry", Parts: []invoice.Part{
				{JobType: invoice.JobTypeWindshieldReplacement, PartTotal: decimal.RequireFromString("300")},
				{JobType: invoice.JobTypeSideMirror, PartTotal: decimal.RequireFromString("80.5")},
			}},
			{Year: "2021", Make: "Ford", Model: "F-150"},
		},
		TotalDue: decimal.RequireFromString("380.5"),
	}

	require.NoError(t, repo.Save(context.Background(), job))

	var sqls []string
	for _, e := range stub.execs {
		sqls = append(sqls, strings.Fields(e.sql)[0]+" "+strings.Fields(e.sql)[2])
	}
	assert.Equal(t, []string{
		"INSERT glass_jobs",
		"DELETE glass_job_vehicles",
		"INSERT glass_job_vehicles",
		"INSERT glass_job_parts",
		"INSERT glass_job_parts",
		"INSERT glass_job_vehicles",
	}, sqls)
	assert.Equal(t, "380.50", stub.execs[0].args[14])
	assert.Equal(t, int64(1), stub.execs[1].args[0])
	assert.Equal(t, int64(2), stub.execs[3].args[0])
	assert.Equal(t, 1, stub.execs[4].args[1])
	assert.Equal(t, "80.50", stub.execs[4].args[3])
	assert.Equal(t, 1, stub.execs[5].args[1])
	assert.Equal(t, 1, stub.commits)
}

func TestSaveRejectsInvalidJob(t *testing.T) {
	stub := &stubDB{}
	err := NewRepository(stub).Save(context.Background(), &invoice.Job{})
	assert.ErrorIs(t, err, invoice.ErrInvalidJob)
	assert.Empty(t, stub.execs)
}
