package richtext

import (
	"fmt"
	"strings"

	"github.com/evask/materialforge-backend/internal/types"
)

// FromGenerated projects a generation result into its editable form:
// an h1 for the material title, then per chapter an h2
// "Chapter N: Title" and one paragraph whose embedded newlines become
// hard line breaks. Everything richer than this only ever exists in
// the edited representation.
func FromGenerated(m *types.GeneratedMaterial) Document {
	doc := Document{Blocks: []Block{Heading(1, m.Title)}}
	for _, ch := range m.Chapters {
		doc.Blocks = append(doc.Blocks, Heading(2, fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title)))
		doc.Blocks = append(doc.Blocks, Paragraph(linesToSpans(ch.Content)...))
	}
	return doc
}

func linesToSpans(content string) []Span {
	lines := strings.Split(content, "\n")
	spans := make([]Span, 0, 2*len(lines))
	for i, line := range lines {
		if i > 0 {
			spans = append(spans, LineBreak())
		}
		if line != "" {
			spans = append(spans, Text(line))
		}
	}
	return spans
}
