package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

func retailJob(parts ...invoice.Part) *invoice.Job {
	installed := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p.PartTotal)
	}
	return &invoice.Job{
		JobNumber:     "JOB-2024-1042",
		CustomerType:  invoice.CustomerRetail,
		FirstName:     "Ana",
		LastName:      "Ruiz",
		StreetAddress: "118 Blanco Rd",
		City:          "San Antonio",
		State:         "TX",
		ZipCode:       "78212",
		Phone:         "(210) 555-0199",
		InstallDate:   &installed,
		CreatedAt:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Vehicles: []invoice.Vehicle{{
			Year: "2019", Make: "Toyota", Model: "Camry", VIN: "4T1B11HK5KU123456",
			Parts: parts,
		}},
		TotalDue:   total,
		BalanceDue: total,
	}
}

func part(t invoice.JobType, amount int64) invoice.Part {
	return invoice.Part{JobType: t, PartTotal: decimal.NewFromInt(amount)}
}

func flat(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type stubLogo struct {
	logo *Logo
	err  error
}

func (s stubLogo) LoadLogo(ctx context.Context) (*Logo, error) {
	return s.logo, s.err
}

func TestLayoutRockChipRepair(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldRepair, 80))

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	assert.Equal(t, invoice.VariantRockChipRepair, doc.Variant)
	assert.True(t, decimal.NewFromInt(80).Equal(doc.Subtotal))
	assert.Equal(t, "INV-1042", doc.InvoiceNumber)
	assert.Equal(t, []Section{
		SectionHeader, SectionInvoiceHeader, SectionCustomer, SectionLineItems,
		SectionTotals, SectionPaymentInfo, SectionWarranty, SectionSignature,
	}, doc.Sections())
	assert.False(t, doc.Has(SectionCalibrationDisclaimer))

	warranty := flat(doc.Text(SectionWarranty))
	assert.Contains(t, warranty, "at no charge, up to two (2) times")
	assert.Contains(t, warranty, "forty percent (40%)")
	assert.NotContains(t, warranty, "ADAS NOTICE")
}

func TestLayoutFleetBusinessWithDeclinedCalibration(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 300))
	job.CustomerType = invoice.CustomerFleet
	job.IsBusiness = true
	job.BusinessName = "Alamo Fleet Services"
	job.CalibrationDeclined = true

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	assert.Equal(t, invoice.VariantFleet, doc.Variant)
	assert.False(t, doc.Has(SectionCalibrationDisclaimer))
	assert.False(t, doc.Has(SectionSignature))
	assert.Contains(t, doc.Text(SectionCustomer), "Alamo Fleet Services")
	assert.Contains(t, flat(doc.Text(SectionWarranty)), flat(adasNotice))
}

func TestLayoutWindshieldReplacementWarrantyIncludesFleetText(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 425))

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	warranty := flat(doc.Text(SectionWarranty))
	bonus := strings.Index(warranty, flat(freeRockChipBonus))
	workmanship := strings.Index(warranty, flat(workmanshipWarranty))
	adas := strings.Index(warranty, flat(adasNotice))
	assert.True(t, strings.HasPrefix(warranty, WarrantyHeading))
	assert.Equal(t, 1, strings.Count(warranty, WarrantyHeading))
	require.Greater(t, bonus, 0)
	require.Greater(t, workmanship, bonus)
	require.Greater(t, adas, workmanship)
	assert.Contains(t, warranty, flat(nonTransferable))
}

func TestLayoutOtherGlassSharesFleetWarranty(t *testing.T) {
	other, err := Layout(context.Background(), retailJob(part(invoice.JobTypeDoorGlass, 210)), Options{})
	require.NoError(t, err)

	fleetJob := retailJob(part(invoice.JobTypeDoorGlass, 210))
	fleetJob.CustomerType = invoice.CustomerFleet
	fleet, err := Layout(context.Background(), fleetJob, Options{})
	require.NoError(t, err)

	assert.Equal(t, invoice.VariantOtherGlassReplacement, other.Variant)
	assert.Equal(t, fleet.Text(SectionWarranty), other.Text(SectionWarranty))
}

func TestLayoutDealerHasNoWarrantyOrSignature(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 300))
	job.CustomerType = invoice.CustomerDealer
	job.CalibrationDeclined = true

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	assert.Equal(t, invoice.VariantDealer, doc.Variant)
	assert.False(t, doc.Has(SectionWarranty))
	assert.False(t, doc.Has(SectionSignature))
	assert.False(t, doc.Has(SectionCalibrationDisclaimer))
}

func TestLayoutCalibrationDisclaimerPrecedesWarranty(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 300))
	job.CalibrationDeclined = true

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	sections := doc.Sections()
	assert.Equal(t, []Section{
		SectionHeader, SectionInvoiceHeader, SectionCustomer, SectionLineItems, SectionTotals,
		SectionPaymentInfo, SectionCalibrationDisclaimer, SectionWarranty, SectionSignature,
	}, sections)
	assert.Contains(t, doc.Text(SectionCalibrationDisclaimer), CalibrationHeading)

	for _, p := range doc.Pages {
		for _, el := range p.Elements {
			if el.Section == SectionCalibrationDisclaimer && el.Kind == ElementText {
				assert.Equal(t, ColorAttention, el.Color)
			}
		}
	}
}

func TestLayoutCustomerLinesAreConditional(t *testing.T) {
	job := retailJob(part(invoice.JobTypeBackGlass, 150))
	job.StreetAddress = ""
	job.ZipCode = ""

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	assert.Equal(t, "BILL TO\nAna Ruiz\n(210) 555-0199", doc.Text(SectionCustomer))
}

func TestLayoutLineItemsFollowStorageOrder(t *testing.T) {
	job := retailJob(part(invoice.JobTypeBackGlass, 150), part(invoice.JobTypeSunroof, 90))
	job.Vehicles = append(job.Vehicles, invoice.Vehicle{
		Year: "2021", Make: "Ford", Model: "F-150",
		Parts: []invoice.Part{part(invoice.JobTypeDoorGlass, 175)},
	})

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	items := doc.Text(SectionLineItems)
	back := strings.Index(items, "Back Glass")
	sunroof := strings.Index(items, "Sunroof")
	door := strings.Index(items, "Door Glass")
	require.GreaterOrEqual(t, back, 0)
	assert.Less(t, back, sunroof)
	assert.Less(t, sunroof, door)
	assert.Contains(t, items, "VIN: 4T1B11HK5KU123456")
	assert.Contains(t, items, "2021 Ford F-150")
	assert.True(t, decimal.NewFromInt(415).Equal(doc.Subtotal))
	assert.Contains(t, doc.Text(SectionTotals), "$415.00")
}

func TestLayoutTotalsSkipZeroAmounts(t *testing.T) {
	job := retailJob(part(invoice.JobTypeBackGlass, 150))
	job.BalanceDue = decimal.Zero
	job.AmountPaid = decimal.NewFromInt(150)

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	totals := doc.Text(SectionTotals)
	assert.Contains(t, totals, "Amount Paid:")
	assert.NotContains(t, totals, "Balance Due:")

	job.AmountPaid = decimal.Zero
	job.BalanceDue = decimal.NewFromInt(150)
	doc, err = Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	totals = doc.Text(SectionTotals)
	assert.NotContains(t, totals, "Amount Paid:")
	assert.Contains(t, totals, "Balance Due:")
}

func TestLayoutNoParts(t *testing.T) {
	job := retailJob()
	job.Vehicles = nil

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)

	assert.Equal(t, invoice.VariantOtherGlassReplacement, doc.Variant)
	assert.True(t, doc.Subtotal.IsZero())
	assert.Contains(t, doc.Text(SectionLineItems), "No billable items")
}

func TestLayoutInvalidJob(t *testing.T) {
	job := retailJob(part(invoice.JobTypeBackGlass, 150))
	job.JobNumber = ""

	_, err := Layout(context.Background(), job, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, invoice.ErrInvalidJob))
}

func TestLayoutDueDateOffset(t *testing.T) {
	job := retailJob(part(invoice.JobTypeBackGlass, 150))
	cfg := DefaultConfig()
	cfg.DueDays = 30

	doc, err := Layout(context.Background(), job, Options{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, "March 4, 2024", invoice.FormatDate(doc.InvoiceDate))
	assert.Contains(t, doc.Text(SectionPaymentInfo), "Due Date: April 3, 2024")
	assert.Contains(t, doc.Text(SectionInvoiceHeader), "Date: March 4, 2024")
}

func TestLayoutCheckpointAfterPayment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.AfterPayment = 40

	doc, err := Layout(context.Background(), retailJob(part(invoice.JobTypeWindshieldRepair, 80)), Options{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, 1, doc.PageOf(SectionPaymentInfo))
	assert.Equal(t, 2, doc.PageOf(SectionWarranty))
	assert.Equal(t, []Section{SectionWarranty, SectionSignature}, doc.SectionsOn(2))
}

func TestLayoutCheckpointBeforeCalibration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds = Thresholds{AfterPayment: 270, BeforeCalibration: 40, BeforeSignature: 270}
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 300))
	job.CalibrationDeclined = true

	doc, err := Layout(context.Background(), job, Options{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, 1, doc.PageOf(SectionPaymentInfo))
	assert.Equal(t, 2, doc.PageOf(SectionCalibrationDisclaimer))
	assert.Equal(t, SectionCalibrationDisclaimer, doc.SectionsOn(2)[0])
}

func TestLayoutCheckpointBeforeSignature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds = Thresholds{AfterPayment: 270, BeforeCalibration: 270, BeforeSignature: 40}
	job := retailJob(part(invoice.JobTypeWindshieldRepair, 80))

	doc, err := Layout(context.Background(), job, Options{Config: cfg})
	require.NoError(t, err)

	last := doc.PageCount()
	assert.Equal(t, last, doc.PageOf(SectionSignature))
	assert.Less(t, doc.PageOf(SectionWarranty), last)
	assert.Equal(t, []Section{SectionSignature}, doc.SectionsOn(last))
}

func TestLayoutLongTableNeverCutsContent(t *testing.T) {
	parts := make([]invoice.Part, 0, 60)
	for i := 0; i < 60; i++ {
		parts = append(parts, part(invoice.JobTypeDoorGlass, int64(100+i)))
	}
	job := retailJob(parts...)
	job.CalibrationDeclined = true

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)
	require.Greater(t, doc.PageCount(), 1)

	geo := doc.Geometry
	rows := 0
	for _, p := range doc.Pages {
		for _, el := range p.Elements {
			assert.GreaterOrEqual(t, el.Y, geo.MarginTop-0.001, "page %d %s", p.Number, el.Text)
			assert.LessOrEqual(t, el.Y+el.H, geo.Bottom()+0.001, "page %d %s", p.Number, el.Text)
			if el.Section == SectionLineItems && el.Kind == ElementText && el.X == geo.MarginLeft {
				if el.Text == fmt.Sprint(rows+1) {
					rows++
				}
			}
		}
	}
	assert.Equal(t, 60, rows)
	assert.True(t, decimal.NewFromInt(60*100+59*60/2).Equal(doc.Subtotal))
}

func TestLayoutRowStaysOnOnePage(t *testing.T) {
	parts := make([]invoice.Part, 0, 40)
	for i := 0; i < 40; i++ {
		parts = append(parts, part(invoice.JobTypeBackGlass, 100))
	}
	doc, err := Layout(context.Background(), retailJob(parts...), Options{})
	require.NoError(t, err)

	for _, p := range doc.Pages {
		var numbers, vins int
		for _, el := range p.Elements {
			if el.Section != SectionLineItems || el.Kind != ElementText {
				continue
			}
			if strings.HasPrefix(el.Text, "VIN: ") {
				vins++
			} else if el.X == doc.Geometry.MarginLeft && el.Text != "#" {
				numbers++
			}
		}
		assert.Equal(t, numbers, vins, "page %d", p.Number)
	}
}

func assertWithinPrintableArea(t *testing.T, doc *Document) {
	t.Helper()
	geo := doc.Geometry
	for _, p := range doc.Pages {
		for _, el := range p.Elements {
			assert.GreaterOrEqual(t, el.Y, geo.MarginTop-0.001, "page %d %q", p.Number, el.Text)
			assert.LessOrEqual(t, el.Y+el.H, geo.Bottom()+0.001, "page %d %q", p.Number, el.Text)
		}
	}
}

func TestLayoutOversizedRowBreaksBetweenLines(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 425))
	job.Vehicles[0].Model = strings.Repeat("Camry Hybrid LE ", 400)

	doc, err := Layout(context.Background(), job, Options{})
	require.NoError(t, err)
	require.Greater(t, doc.PageCount(), 2)

	assertWithinPrintableArea(t, doc)
	items := doc.Text(SectionLineItems)
	assert.Equal(t, 400, strings.Count(items, "Hybrid"))
	assert.Contains(t, items, "VIN: 4T1B11HK5KU123456")
	assert.Greater(t, doc.PageOf(SectionTotals), doc.PageOf(SectionLineItems))

	sections := doc.Sections()
	assert.Equal(t, SectionSignature, sections[len(sections)-1])
}

func TestLayoutTextFitsItsBox(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldReplacement, 425))
	job.StreetAddress = strings.Repeat("12345 Northwest Military Highway Suite 200 ", 4)
	job.FirstName = strings.Repeat("Anastasia", 12)
	job.Vehicles[0].VIN = strings.Repeat("4T1B11HK5KU123456", 5)
	cfg := DefaultConfig()
	cfg.Company.Name = strings.Repeat("Windshield Repair San Antonio ", 5)
	cfg.InvoicePrefix = strings.Repeat("GLASS-", 20)

	measure := NewPDFMeasurer()
	doc, err := Layout(context.Background(), job, Options{Config: cfg, Measurer: measure})
	require.NoError(t, err)

	assertWithinPrintableArea(t, doc)
	geo := doc.Geometry
	for _, p := range doc.Pages {
		for _, el := range p.Elements {
			if el.Kind != ElementText {
				continue
			}
			assert.LessOrEqual(t, measure.TextWidth(el.Text, el.Font), el.W+0.001, "page %d %q", p.Number, el.Text)
			assert.LessOrEqual(t, el.X+el.W, geo.Width-geo.MarginRight+0.001, "page %d %q", p.Number, el.Text)
		}
	}
	assert.Contains(t, flat(doc.Text(SectionCustomer)), "Suite 200")
}

func TestLayoutLogoFallback(t *testing.T) {
	job := retailJob(part(invoice.JobTypeWindshieldRepair, 80))

	doc, err := Layout(context.Background(), job, Options{Logo: stubLogo{err: errors.New("open logo.png: no such file")}})
	require.NoError(t, err)
	require.Error(t, doc.LogoErr)
	assert.Contains(t, doc.Text(SectionHeader), DefaultConfig().Company.Name)

	doc, err = Layout(context.Background(), job, Options{})
	require.NoError(t, err)
	assert.ErrorIs(t, doc.LogoErr, ErrNoLogo)
}

func TestLayoutLogoPlacesImage(t *testing.T) {
	logo := &Logo{PNG: []byte{0x89, 'P', 'N', 'G'}, Width: 600, Height: 200}
	doc, err := Layout(context.Background(), retailJob(part(invoice.JobTypeWindshieldRepair, 80)), Options{Logo: stubLogo{logo: logo}})
	require.NoError(t, err)
	require.NoError(t, doc.LogoErr)

	var images []Element
	for _, el := range doc.Pages[0].Elements {
		if el.Kind == ElementImage {
			images = append(images, el)
		}
	}
	require.Len(t, images, 1)
	assert.Equal(t, SectionHeader, images[0].Section)
	assert.InDelta(t, 50.0, images[0].W, 0.001)
	assert.InDelta(t, 50.0/3, images[0].H, 0.001)
	assert.NotContains(t, doc.Text(SectionHeader), DefaultConfig().Company.Name)
}

func TestLayoutConcurrentRunsAreIndependent(t *testing.T) {
	jobs := []*invoice.Job{
		retailJob(part(invoice.JobTypeWindshieldRepair, 80)),
		retailJob(part(invoice.JobTypeWindshieldReplacement, 300)),
	}
	want := make([]*Document, len(jobs))
	for i, job := range jobs {
		doc, err := Layout(context.Background(), job, Options{})
		require.NoError(t, err)
		want[i] = doc
	}

	var wg sync.WaitGroup
	got := make([]*Document, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], _ = Layout(context.Background(), jobs[i%2], Options{})
		}(i)
	}
	wg.Wait()

	for i, doc := range got {
		require.NotNil(t, doc)
		assert.Equal(t, want[i%2].Pages, doc.Pages)
	}
}
