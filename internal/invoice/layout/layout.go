package layout

import (
	"context"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

// Options configures a layout run. A nil Measurer gets a fresh PDFMeasurer;
// a nil Logo always prints the text header.
type Options struct {
	Config   Config
	Measurer Measurer
	Logo     LogoLoader
}

// Layout classifies the job and sequences the sections in their fixed order:
// header, invoice header, customer, line items, totals, payment info,
// calibration disclaimer (when applicable), warranty, signature (when
// applicable). Every call owns its own cursor, so concurrent runs are
// independent.
func Layout(ctx context.Context, job *invoice.Job, opts Options) (*Document, error) {
	if err := invoice.Validate(job); err != nil {
		return nil, err
	}
	cfg := withDefaults(opts.Config)
	measure := opts.Measurer
	if measure == nil {
		measure = NewPDFMeasurer()
	}

	variant := invoice.Classify(job)
	invoiceDate := job.InvoiceDate()
	sc := &sectionContext{
		job:           job,
		variant:       variant,
		cfg:           cfg,
		measure:       measure,
		invoiceNumber: invoice.InvoiceNumber(cfg.InvoicePrefix, job.JobNumber),
		invoiceDate:   invoiceDate,
		dueDate:       invoiceDate.AddDate(0, 0, cfg.DueDays),
	}
	doc := &Document{
		Variant:       variant,
		InvoiceNumber: sc.invoiceNumber,
		InvoiceDate:   sc.invoiceDate,
		DueDate:       sc.dueDate,
		Geometry:      cfg.Geometry,
	}

	e := newEngine(cfg.Geometry, doc)

	logo := loadLogo(ctx, opts.Logo)
	doc.LogoErr = logo.err
	e.place(headerBlock(sc, logo))
	e.gap(sectionGap)
	e.place(invoiceHeaderBlock(sc))
	e.gap(sectionGap)
	e.place(customerBlock(sc))
	e.gap(sectionGap)

	items, subtotal := lineItemsBlock(sc)
	doc.Subtotal = subtotal
	e.place(items)
	e.place(totalsBlock(sc, subtotal))
	e.gap(sectionGap)

	e.place(paymentInfoBlock(sc))
	e.checkpoint(cfg.Thresholds.AfterPayment)
	e.gap(sectionGap)

	if invoice.IncludesCalibrationDisclaimer(job, variant) {
		e.checkpoint(cfg.Thresholds.BeforeCalibration)
		e.place(calibrationDisclaimerBlock(sc))
		e.gap(sectionGap)
	}

	e.place(warrantyBlock(sc))

	if invoice.IncludesSignature(job, variant) {
		e.gap(sectionGap)
		e.checkpoint(cfg.Thresholds.BeforeSignature)
		e.place(signatureBlock(sc))
	}
	return doc, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Geometry.Width <= 0 || cfg.Geometry.Height <= 0 {
		cfg.Geometry = def.Geometry
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = def.Thresholds
	}
	if cfg.Company == (Company{}) {
		cfg.Company = def.Company
	}
	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = def.InvoicePrefix
	}
	return cfg
}
