package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/layout"
)

// Metadata is written into the PDF information dictionary.
type Metadata struct {
	Title      string
	Author     string
	Subject    string
	DocumentID string
	CreatedAt  time.Time
}

const ruleWidth = 0.2

// WritePDF projects a laid-out document onto gofpdf, one physical page per
// document page. Nothing is re-flowed: every element is drawn where the
// layout engine put it.
func WritePDF(w io.Writer, doc *layout.Document, meta Metadata) error {
	if doc == nil || len(doc.Pages) == 0 {
		return errors.New("export: empty document")
	}
	geo := doc.Geometry
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: geo.Width, Ht: geo.Height},
	})
	pdf.SetMargins(geo.MarginLeft, geo.MarginTop, geo.MarginRight)
	pdf.SetAutoPageBreak(false, geo.MarginBottom)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator("crm-windshield-repair invoice generator", true)
	if meta.DocumentID != "" {
		pdf.SetKeywords(meta.DocumentID, true)
	}
	if !meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(meta.CreatedAt)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	images := make(map[*layout.Logo]string)

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, el := range page.Elements {
			switch el.Kind {
			case layout.ElementText:
				pdf.SetFont(el.Font.Family, el.Font.Style, el.Font.Size)
				pdf.SetTextColor(el.Color.R, el.Color.G, el.Color.B)
				pdf.SetXY(el.X, el.Y)
				pdf.CellFormat(el.W, el.H, tr(el.Text), "", 0, string(el.Align), false, 0, "")
			case layout.ElementRule:
				pdf.SetDrawColor(el.Color.R, el.Color.G, el.Color.B)
				pdf.SetLineWidth(ruleWidth)
				pdf.Line(el.X, el.Y, el.X+el.W, el.Y)
			case layout.ElementImage:
				if el.Image == nil {
					continue
				}
				opts := gofpdf.ImageOptions{ImageType: "PNG"}
				name, ok := images[el.Image]
				if !ok {
					name = fmt.Sprintf("logo-%d", len(images))
					pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(el.Image.PNG))
					images[el.Image] = name
				}
				pdf.ImageOptions(name, el.X, el.Y, el.W, el.H, false, opts, 0, "")
			}
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: write pdf: %w", err)
	}
	return nil
}
