package richtext

import "strings"

// Document is the explicit, immutable value form of an editor
// document. It is what moves between the lifecycle service and the
// exporters, so the generated and edited representations never share
// a live mutable tree.
type Document struct {
	Blocks []Block
}

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
)

type Block struct {
	Kind  BlockKind
	Level int    // heading level, 1..6
	Align string // "", "center", "right", "justify"; "" means default left
	Spans []Span // heading and paragraph content

	Ordered bool     // list kind
	Items   [][]Span // list items
}

// Span is a run of text with formatting marks, or a hard line break.
// Style carries an inline CSS declaration list verbatim (color, font
// family) so editor formatting outside the modeled marks survives the
// round trip.
type Span struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Style     string
	Break     bool
}

func Heading(level int, text string) Block {
	return Block{Kind: BlockHeading, Level: level, Spans: []Span{{Text: text}}}
}

func Paragraph(spans ...Span) Block {
	return Block{Kind: BlockParagraph, Spans: spans}
}

func Text(s string) Span {
	return Span{Text: s}
}

func LineBreak() Span {
	return Span{Break: true}
}

// PlainText flattens the document for inspection and for exporters
// that do not render marks.
func (d Document) PlainText() string {
	var b strings.Builder
	for i, blk := range d.Blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch blk.Kind {
		case BlockList:
			for j, item := range blk.Items {
				if j > 0 {
					b.WriteString("\n")
				}
				writeSpansText(&b, item)
			}
		default:
			writeSpansText(&b, blk.Spans)
		}
	}
	return b.String()
}

func writeSpansText(b *strings.Builder, spans []Span) {
	for _, sp := range spans {
		if sp.Break {
			b.WriteString("\n")
			continue
		}
		b.WriteString(sp.Text)
	}
}

// SpanText concatenates the text of a span run, treating breaks as
// newlines.
func SpanText(spans []Span) string {
	var b strings.Builder
	writeSpansText(&b, spans)
	return b.String()
}
