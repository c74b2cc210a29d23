package export

import (
	"fmt"
	"time"

	"github.com/evask/materialforge-backend/internal/richtext"
	"github.com/evask/materialforge-backend/internal/types"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatDocx Format = "docx"
	FormatPdf  Format = "pdf"
)

// Meta carries the per-material values an export embeds. Modified pins
// every timestamp a format would otherwise stamp with the wall clock,
// so exporting the same persisted material twice yields identical
// bytes.
type Meta struct {
	Title    string
	Modified time.Time
}

// Exporter renders a rich document into one output format. Renders are
// pure: no state, same input same bytes.
type Exporter interface {
	Render(doc richtext.Document, meta Meta) ([]byte, error)
	ContentType() string
	Extension() string
}

func For(format Format) (Exporter, error) {
	switch format {
	case FormatHTML:
		return htmlExporter{}, nil
	case FormatDocx:
		return docxExporter{}, nil
	case FormatPdf:
		return pdfExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownFormat, format)
	}
}
