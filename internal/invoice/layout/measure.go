package layout

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Measurer supplies font metrics to the layout engine.
type Measurer interface {
	// SplitText wraps text to width. Explicit newlines start new lines and
	// blank paragraphs produce empty lines.
	SplitText(text string, font Font, width float64) []string
	TextWidth(text string, font Font) float64
}

// PDFMeasurer measures with the core font metrics of a scratch gofpdf
// document. It is not safe for concurrent use; create one per layout run.
type PDFMeasurer struct {
	pdf *gofpdf.Fpdf
}

// NewPDFMeasurer builds a measurer over an unpaged scratch document.
func NewPDFMeasurer() *PDFMeasurer {
	return &PDFMeasurer{pdf: gofpdf.New("P", "mm", "Letter", "")}
}

func (m *PDFMeasurer) use(font Font) {
	m.pdf.SetFont(font.Family, font.Style, font.Size)
}

// TextWidth returns the rendered width of text in millimetres.
func (m *PDFMeasurer) TextWidth(text string, font Font) float64 {
	m.use(font)
	return m.pdf.GetStringWidth(text)
}

// SplitText wraps text at word boundaries to fit width.
func (m *PDFMeasurer) SplitText(text string, font Font, width float64) []string {
	m.use(font)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if strings.TrimSpace(para) == "" {
			lines = append(lines, "")
			continue
		}
		for _, line := range m.pdf.SplitLines([]byte(para), width) {
			lines = append(lines, strings.TrimRight(string(line), " "))
		}
	}
	return lines
}

// lineHeight converts a point size into a millimetre line advance.
func lineHeight(font Font) float64 {
	return font.Size * 0.45
}
