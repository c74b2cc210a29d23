package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/evask/materialforge-backend/internal/richtext"
)

type docxExporter struct{}

func (docxExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (docxExporter) Extension() string { return "docx" }

// Half-point font sizes per heading level, title first.
var docxHeadingSizes = map[int]string{1: "48", 2: "30", 3: "26", 4: "24", 5: "24", 6: "24"}

func (docxExporter) Render(doc richtext.Document, meta Meta) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	for _, blk := range doc.Blocks {
		switch blk.Kind {
		case richtext.BlockHeading:
			p := w.AddParagraph()
			// The material title arrives as the leading h1; it is
			// centered unless the editor aligned it explicitly.
			if blk.Align != "" {
				p.Justification(docxJustification(blk.Align))
			} else if blk.Level == 1 {
				p.Justification("center")
			}
			size, ok := docxHeadingSizes[blk.Level]
			if !ok {
				size = "24"
			}
			color := "003366"
			if blk.Level == 2 {
				color = "4472C4"
			}
			p.AddText(richtext.SpanText(blk.Spans)).Size(size).Color(color).Bold()
		case richtext.BlockList:
			for i, item := range blk.Items {
				marker := "• "
				if blk.Ordered {
					marker = fmt.Sprintf("%d. ", i+1)
				}
				p := w.AddParagraph()
				p.AddText(marker)
				writeDocxSpans(p, item)
			}
		default:
			for _, line := range splitAtBreaks(blk.Spans) {
				p := w.AddParagraph()
				if blk.Align != "" {
					p.Justification(docxJustification(blk.Align))
				}
				writeDocxSpans(p, line)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDocxSpans(p *docx.Paragraph, spans []richtext.Span) {
	for _, sp := range spans {
		if sp.Break || sp.Text == "" {
			continue
		}
		r := p.AddText(sp.Text)
		if sp.Bold {
			r.Bold()
		}
		if sp.Italic {
			r.Italic()
		}
		if sp.Underline {
			r.Underline("single")
		}
	}
}

func docxJustification(align string) string {
	switch align {
	case "center":
		return "center"
	case "right":
		return "end"
	case "justify":
		return "both"
	default:
		return "start"
	}
}

// splitAtBreaks cuts a span run into lines; each line becomes its own
// paragraph because a docx run has no inline hard break here.
func splitAtBreaks(spans []richtext.Span) [][]richtext.Span {
	lines := [][]richtext.Span{{}}
	for _, sp := range spans {
		if sp.Break {
			lines = append(lines, []richtext.Span{})
			continue
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], sp)
	}
	return lines
}
