package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/evask/materialforge-backend/internal/richtext"
)

type pdfExporter struct{}

func (pdfExporter) ContentType() string { return "application/pdf" }
func (pdfExporter) Extension() string   { return "pdf" }

var pdfHeadingSizes = map[int]float64{1: 20, 2: 16, 3: 14, 4: 13, 5: 12, 6: 12}

const pdfBodySize = 11

func (pdfExporter) Render(doc richtext.Document, meta Meta) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Pinned so re-exporting unchanged content yields identical bytes.
	pdf.SetCreationDate(meta.Modified)
	pdf.SetModificationDate(meta.Modified)
	pdf.SetTitle(meta.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, blk := range doc.Blocks {
		switch blk.Kind {
		case richtext.BlockHeading:
			size, ok := pdfHeadingSizes[blk.Level]
			if !ok {
				size = 12
			}
			pdf.SetFont("Helvetica", "B", size)
			if blk.Level == 2 {
				pdf.SetTextColor(68, 114, 196)
			} else {
				pdf.SetTextColor(0, 51, 102)
			}
			// The material title arrives as the leading h1; it is
			// centered unless the editor aligned it explicitly.
			align := pdfAlign(blk.Align)
			if blk.Align == "" && blk.Level == 1 {
				align = "C"
			}
			pdf.Ln(2)
			pdf.MultiCell(0, size*0.5, tr(richtext.SpanText(blk.Spans)), "", align, false)
			pdf.Ln(1)
		case richtext.BlockList:
			pdf.SetTextColor(0, 0, 0)
			for i, item := range blk.Items {
				marker := "- "
				if blk.Ordered {
					marker = fmt.Sprintf("%d. ", i+1)
				}
				pdf.SetFont("Helvetica", "", pdfBodySize)
				pdf.SetX(25)
				pdf.MultiCell(0, 5.5, tr(marker+richtext.SpanText(item)), "", "L", false)
			}
			pdf.Ln(2)
		default:
			pdf.SetTextColor(0, 0, 0)
			writePdfBlock(pdf, tr, blk)
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writePdfBlock renders a paragraph span by span so bold, italic and
// underline runs keep their marks. Aligned text loses per-span marks
// because MultiCell renders a whole line at once.
func writePdfBlock(pdf *fpdf.Fpdf, tr func(string) string, blk richtext.Block) {
	if blk.Align != "" {
		pdf.SetFont("Helvetica", "", pdfBodySize)
		pdf.MultiCell(0, 5.5, tr(richtext.SpanText(blk.Spans)), "", pdfAlign(blk.Align), false)
		return
	}
	for _, sp := range blk.Spans {
		if sp.Break {
			pdf.Ln(5.5)
			continue
		}
		if sp.Text == "" {
			continue
		}
		style := ""
		if sp.Bold {
			style += "B"
		}
		if sp.Italic {
			style += "I"
		}
		if sp.Underline {
			style += "U"
		}
		pdf.SetFont("Helvetica", style, pdfBodySize)
		pdf.Write(5.5, tr(sp.Text))
	}
	pdf.Ln(5.5)
}

func pdfAlign(align string) string {
	switch align {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	default:
		return "L"
	}
}
