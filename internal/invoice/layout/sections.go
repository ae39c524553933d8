package layout

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

var (
	fontBody    = Font{Family: "Helvetica", Size: 9}
	fontBold    = Font{Family: "Helvetica", Style: "B", Size: 9}
	fontSmall   = Font{Family: "Helvetica", Size: 8}
	fontHeading = Font{Family: "Helvetica", Style: "B", Size: 11}
	fontTitle   = Font{Family: "Helvetica", Style: "B", Size: 20}
	fontCompany = Font{Family: "Helvetica", Style: "B", Size: 16}
)

const (
	logoWidth     = 50.0
	logoMaxHeight = 22.0
	sectionGap    = 6.0
	rowPadding    = 1.5
)

// sectionContext is the read-only input shared by every section of one run.
type sectionContext struct {
	job           *invoice.Job
	variant       invoice.Variant
	cfg           Config
	measure       Measurer
	invoiceNumber string
	invoiceDate   time.Time
	dueDate       time.Time
}

func (sc *sectionContext) left() float64  { return sc.cfg.Geometry.MarginLeft }
func (sc *sectionContext) width() float64 { return sc.cfg.Geometry.ContentWidth() }

// headerBlock places the logo, or the bold company name when the logo is
// unavailable, followed by the shop contact lines.
func headerBlock(sc *sectionContext, logo logoResult) Block {
	b := newBlock(SectionHeader).keepTogether()
	x, w := sc.left(), sc.width()
	switch {
	case logo.err == nil:
		lw := logoWidth
		lh := lw * float64(logo.logo.Height) / float64(logo.logo.Width)
		if lh > logoMaxHeight {
			lh = logoMaxHeight
			lw = lh * float64(logo.logo.Width) / float64(logo.logo.Height)
		}
		b.image(x, lw, lh, logo.logo)
		b.advance(lh + 2)
	default:
		b.wrapped(sc.measure, x, w, sc.cfg.Company.Name, fontCompany, ColorText, AlignLeft)
	}
	c := sc.cfg.Company
	for _, l := range []string{c.AddressLine, c.CityLine, c.Phone, c.Email} {
		if l == "" {
			continue
		}
		b.wrapped(sc.measure, x, w, l, fontSmall, ColorMuted, AlignLeft)
	}
	return b.build()
}

func invoiceHeaderBlock(sc *sectionContext) Block {
	b := newBlock(SectionInvoiceHeader).keepTogether()
	x, w := sc.left(), sc.width()
	b.line(x, w, "INVOICE", fontTitle, ColorText, AlignRight)
	b.wrapped(sc.measure, x, w, "Invoice #: "+sc.invoiceNumber, fontBold, ColorText, AlignRight)
	b.line(x, w, "Date: "+invoice.FormatDate(sc.invoiceDate), fontBody, ColorText, AlignRight)
	return b.build()
}

// customerBlock prints only the lines whose fields are present.
func customerBlock(sc *sectionContext) Block {
	b := newBlock(SectionCustomer).keepTogether()
	x, w := sc.left(), sc.width()
	job := sc.job
	b.line(x, w, "BILL TO", fontBold, ColorMuted, AlignLeft)
	for _, l := range []string{job.CustomerName(), job.StreetAddress, job.CityLine(), job.Phone} {
		if l == "" {
			continue
		}
		b.paragraph(sc.measure, x, w, l, fontBody, ColorText)
	}
	return b.build()
}

type column struct {
	x, w  float64
	align Align
}

type itemColumns struct {
	num, vehicle, service, qty, unit, total column
}

func lineItemColumns(left float64) itemColumns {
	return itemColumns{
		num:     column{left, 8, AlignLeft},
		vehicle: column{left + 8, 60, AlignLeft},
		service: column{left + 68, 50, AlignLeft},
		qty:     column{left + 118, 12, AlignCenter},
		unit:    column{left + 130, 22, AlignRight},
		total:   column{left + 152, 23.9, AlignRight},
	}
}

// lineItemsBlock emits one row per part, vehicles then parts in storage
// order, and returns the subtotal of every part total.
func lineItemsBlock(sc *sectionContext) (Block, decimal.Decimal) {
	b := newBlock(SectionLineItems)
	cols := lineItemColumns(sc.left())
	lh := lineHeight(fontBody)

	b.text(cols.num.x, cols.num.w, "#", fontBold, ColorText, cols.num.align)
	b.text(cols.vehicle.x, cols.vehicle.w, "Vehicle", fontBold, ColorText, cols.vehicle.align)
	b.text(cols.service.x, cols.service.w, "Service", fontBold, ColorText, cols.service.align)
	b.text(cols.qty.x, cols.qty.w, "Qty", fontBold, ColorText, cols.qty.align)
	b.text(cols.unit.x, cols.unit.w, "Unit Price", fontBold, ColorText, cols.unit.align)
	b.text(cols.total.x, cols.total.w, "Total", fontBold, ColorText, cols.total.align)
	b.advance(lh + 0.5)
	b.rule(sc.left(), sc.width())
	b.advance(rowPadding)
	b.split()

	subtotal := decimal.Zero
	row := 0
	for _, v := range sc.job.Vehicles {
		desc := v.Description()
		if desc == "" {
			desc = "Vehicle"
		}
		for _, p := range v.Parts {
			row++
			subtotal = subtotal.Add(p.PartTotal)
			price := invoice.FormatMoney(p.PartTotal)

			vehicleLines := sc.measure.SplitText(desc, fontBody, cols.vehicle.w-2)
			serviceLines := sc.measure.SplitText(invoice.FormatJobType(p.JobType), fontBody, cols.service.w-2)

			b.text(cols.num.x, cols.num.w, strconv.Itoa(row), fontBody, ColorText, cols.num.align)
			b.text(cols.qty.x, cols.qty.w, "1", fontBody, ColorText, cols.qty.align)
			b.text(cols.unit.x, cols.unit.w, price, fontBody, ColorText, cols.unit.align)
			b.text(cols.total.x, cols.total.w, price, fontBody, ColorText, cols.total.align)

			var left float64
			for _, l := range vehicleLines {
				b.text(cols.vehicle.x, cols.vehicle.w, l, fontBody, ColorText, cols.vehicle.align)
				b.advance(lh)
				left += lh
			}
			if v.VIN != "" {
				for _, l := range sc.measure.SplitText("VIN: "+v.VIN, fontSmall, cols.vehicle.w-2) {
					b.text(cols.vehicle.x, cols.vehicle.w, l, fontSmall, ColorMuted, cols.vehicle.align)
					b.advance(lineHeight(fontSmall))
					left += lineHeight(fontSmall)
				}
			}
			b.advance(-left)

			var right float64
			for _, l := range serviceLines {
				b.text(cols.service.x, cols.service.w, l, fontBody, ColorText, cols.service.align)
				b.advance(lh)
				right += lh
			}
			b.advance(-right)

			b.advance(max(left, right, lh) + rowPadding)
			b.split()
		}
	}
	if row == 0 {
		b.line(cols.vehicle.x, cols.vehicle.w+cols.service.w, "No billable items", fontBody, ColorMuted, AlignLeft)
		b.split()
	}
	return b.build(), subtotal
}

// totalsBlock prints amount paid and balance due only when positive.
func totalsBlock(sc *sectionContext, subtotal decimal.Decimal) Block {
	b := newBlock(SectionTotals).keepTogether()
	right := sc.left() + sc.width()
	labelX, labelW := right-75, 45.0
	valueX, valueW := right-30, 30.0
	job := sc.job

	b.rule(sc.left(), sc.width())
	b.advance(2)
	row := func(label string, amount decimal.Decimal, font Font) {
		b.text(labelX, labelW, label, font, ColorText, AlignRight)
		b.line(valueX, valueW, invoice.FormatMoney(amount), font, ColorText, AlignRight)
	}
	row("Subtotal:", subtotal, fontBody)
	row("Total Due:", job.TotalDue, fontBold)
	if job.AmountPaid.IsPositive() {
		row("Amount Paid:", job.AmountPaid, fontBody)
	}
	if job.BalanceDue.IsPositive() {
		row("Balance Due:", job.BalanceDue, fontBold)
	}
	return b.build()
}

func paymentInfoBlock(sc *sectionContext) Block {
	b := newBlock(SectionPaymentInfo).keepTogether()
	x, w := sc.left(), sc.width()
	b.line(x, w, PaymentHeading, fontHeading, ColorText, AlignLeft)
	b.line(x, w, "Due Date: "+invoice.FormatDate(sc.dueDate), fontBold, ColorText, AlignLeft)
	b.advance(1)
	b.paragraph(sc.measure, x, w, cardPaymentNotice, fontSmall, ColorText)
	return b.build()
}

func calibrationDisclaimerBlock(sc *sectionContext) Block {
	b := newBlock(SectionCalibrationDisclaimer).keepTogether()
	x, w := sc.left(), sc.width()
	b.line(x, w, CalibrationHeading, fontHeading, ColorAttention, AlignLeft)
	b.paragraph(sc.measure, x, w, calibrationDeclined, fontSmall, ColorAttention)
	return b.build()
}

// warrantyBlock places each paragraph as an atomic unit. Headings stay with
// the paragraph that follows them.
func warrantyBlock(sc *sectionContext) Block {
	b := newBlock(SectionWarranty)
	entry := warrantyFor(sc.variant)
	if entry == nil {
		return b.build()
	}
	x, w := sc.left(), sc.width()
	for _, p := range entry() {
		if p.heading {
			b.wrapped(sc.measure, x, w, p.text, fontHeading, ColorText, AlignLeft)
			b.advance(1)
			continue
		}
		b.paragraph(sc.measure, x, w, p.text, fontSmall, ColorText)
		b.advance(2)
		b.split()
	}
	return b.build()
}

func signatureBlock(sc *sectionContext) Block {
	b := newBlock(SectionSignature).keepTogether()
	x, w := sc.left(), sc.width()
	b.paragraph(sc.measure, x, w, SignatureAcknowledgment, fontBody, ColorText)
	b.advance(14)
	b.rule(x, 100)
	b.rule(x+115, w-115)
	b.advance(1.5)
	b.text(x, 100, "Customer Signature", fontSmall, ColorMuted, AlignLeft)
	b.line(x+115, w-115, "Date", fontSmall, ColorMuted, AlignLeft)
	return b.build()
}
