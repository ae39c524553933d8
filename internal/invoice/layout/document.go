package layout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice"
)

// Section names one self-contained content unit of an invoice.
type Section string

const (
	SectionHeader                Section = "header"
	SectionInvoiceHeader         Section = "invoice_header"
	SectionCustomer              Section = "customer"
	SectionLineItems             Section = "line_items"
	SectionTotals                Section = "totals"
	SectionPaymentInfo           Section = "payment_info"
	SectionCalibrationDisclaimer Section = "calibration_disclaimer"
	SectionWarranty              Section = "warranty"
	SectionSignature             Section = "signature"
)

// ElementKind distinguishes what an element draws.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
	ElementRule  ElementKind = "rule"
)

// Align is a horizontal text alignment inside an element's width.
type Align string

const (
	AlignLeft   Align = "L"
	AlignRight  Align = "R"
	AlignCenter Align = "C"
)

// Color is an RGB triple.
type Color struct {
	R, G, B int
}

var (
	ColorText      = Color{33, 33, 33}
	ColorMuted     = Color{110, 110, 110}
	ColorAttention = Color{192, 32, 32}
	ColorRule      = Color{160, 160, 160}
)

// Font selects a core PDF font. Style is "", "B", "I" or "BI"; Size is in points.
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Element is one positioned drawing instruction. Coordinates are page
// millimetres measured from the top-left corner.
type Element struct {
	Section Section
	Kind    ElementKind
	X, Y    float64
	W, H    float64
	Text    string
	Align   Align
	Font    Font
	Color   Color
	Image   *Logo
}

// Page holds the elements placed on one physical page.
type Page struct {
	Number   int
	Elements []Element
}

// Document is the laid-out invoice: what text appears, in what order and on
// which page. The PDF writer is a projection of it.
type Document struct {
	Variant       invoice.Variant
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	Subtotal      decimal.Decimal
	Geometry      Geometry
	Pages         []Page

	// LogoErr is set when the header fell back to the text company name.
	LogoErr error
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Sections lists sections in the order they first appear.
func (d *Document) Sections() []Section {
	seen := make(map[Section]bool)
	var out []Section
	for _, p := range d.Pages {
		for _, el := range p.Elements {
			if !seen[el.Section] {
				seen[el.Section] = true
				out = append(out, el.Section)
			}
		}
	}
	return out
}

// Has reports whether the section emitted anything.
func (d *Document) Has(section Section) bool {
	return d.PageOf(section) > 0
}

// PageOf returns the 1-based page where the section starts, or 0.
func (d *Document) PageOf(section Section) int {
	for _, p := range d.Pages {
		for _, el := range p.Elements {
			if el.Section == section {
				return p.Number
			}
		}
	}
	return 0
}

// Text joins every text element of a section, one per line, in placement order.
func (d *Document) Text(section Section) string {
	var lines []string
	for _, p := range d.Pages {
		for _, el := range p.Elements {
			if el.Section == section && el.Kind == ElementText {
				lines = append(lines, el.Text)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// SectionsOn lists the sections with content on the given page, in order.
func (d *Document) SectionsOn(page int) []Section {
	if page < 1 || page > len(d.Pages) {
		return nil
	}
	seen := make(map[Section]bool)
	var out []Section
	for _, el := range d.Pages[page-1].Elements {
		if !seen[el.Section] {
			seen[el.Section] = true
			out = append(out, el.Section)
		}
	}
	return out
}
