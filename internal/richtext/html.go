package richtext

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML serializes the document to its canonical HTML form, the shape
// the editing surface produces: h1-h6, p, br, strong, em, u, ul/ol/li
// and style attributes for alignment and inline styling. Serialization
// is canonical, so HTML(ParseHTML(HTML(d))) == HTML(d).
func (d Document) HTML() string {
	var b strings.Builder
	for _, blk := range d.Blocks {
		writeBlock(&b, blk)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, blk Block) {
	switch blk.Kind {
	case BlockHeading:
		level := blk.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		tag := fmt.Sprintf("h%d", level)
		openTag(b, tag, blk.Align)
		writeSpans(b, blk.Spans)
		b.WriteString("</" + tag + ">")
	case BlockList:
		tag := "ul"
		if blk.Ordered {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for _, item := range blk.Items {
			b.WriteString("<li><p>")
			writeSpans(b, item)
			b.WriteString("</p></li>")
		}
		b.WriteString("</" + tag + ">")
	default:
		openTag(b, "p", blk.Align)
		writeSpans(b, blk.Spans)
		b.WriteString("</p>")
	}
}

func openTag(b *strings.Builder, tag, align string) {
	if align == "" {
		b.WriteString("<" + tag + ">")
		return
	}
	b.WriteString(`<` + tag + ` style="text-align: ` + html.EscapeString(align) + `">`)
}

func writeSpans(b *strings.Builder, spans []Span) {
	for _, sp := range spans {
		if sp.Break {
			b.WriteString("<br>")
			continue
		}
		var open, closing string
		if sp.Bold {
			open += "<strong>"
			closing = "</strong>" + closing
		}
		if sp.Italic {
			open += "<em>"
			closing = "</em>" + closing
		}
		if sp.Underline {
			open += "<u>"
			closing = "</u>" + closing
		}
		if sp.Style != "" {
			open += `<span style="` + html.EscapeString(sp.Style) + `">`
			closing = "</span>" + closing
		}
		b.WriteString(open)
		b.WriteString(html.EscapeString(sp.Text))
		b.WriteString(closing)
	}
}

// ParseHTML deserializes editor HTML into a Document. It accepts the
// whole TipTap-producible subset plus the looser shapes older clients
// stored (div bodies, bare li text).
func ParseHTML(raw string) (Document, error) {
	root, err := xhtml.Parse(strings.NewReader(raw))
	if err != nil {
		return Document{}, fmt.Errorf("parse editor html: %w", err)
	}
	body := findBody(root)
	if body == nil {
		return Document{}, nil
	}

	var doc Document
	for n := body.FirstChild; n != nil; n = n.NextSibling {
		appendBlockNode(&doc, n)
	}
	return doc, nil
}

func findBody(n *xhtml.Node) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func appendBlockNode(doc *Document, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		if strings.TrimSpace(n.Data) != "" {
			doc.Blocks = append(doc.Blocks, Paragraph(Text(n.Data)))
		}
	case xhtml.ElementNode:
		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			doc.Blocks = append(doc.Blocks, Block{
				Kind:  BlockHeading,
				Level: int(n.Data[1] - '0'),
				Align: alignOf(n),
				Spans: parseSpans(n, Span{}),
			})
		case atom.Ul, atom.Ol:
			blk := Block{Kind: BlockList, Ordered: n.DataAtom == atom.Ol}
			for li := n.FirstChild; li != nil; li = li.NextSibling {
				if li.Type == xhtml.ElementNode && li.DataAtom == atom.Li {
					blk.Items = append(blk.Items, parseSpans(li, Span{}))
				}
			}
			doc.Blocks = append(doc.Blocks, blk)
		case atom.P, atom.Div, atom.Blockquote:
			doc.Blocks = append(doc.Blocks, Block{
				Kind:  BlockParagraph,
				Align: alignOf(n),
				Spans: parseSpans(n, Span{}),
			})
		default:
			// Unknown wrapper: lift its children to block level.
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				appendBlockNode(doc, c)
			}
		}
	}
}

// parseSpans walks inline content below n, carrying the active mark
// state. Breaks never carry marks; block-level p wrappers inside list
// items are transparent.
func parseSpans(n *xhtml.Node, state Span) []Span {
	var spans []Span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xhtml.TextNode:
			if c.Data == "" {
				continue
			}
			sp := state
			sp.Text = c.Data
			spans = append(spans, sp)
		case xhtml.ElementNode:
			next := state
			switch c.DataAtom {
			case atom.Br:
				spans = append(spans, LineBreak())
				continue
			case atom.Strong, atom.B:
				next.Bold = true
			case atom.Em, atom.I:
				next.Italic = true
			case atom.U:
				next.Underline = true
			case atom.Span:
				if st := attrOf(c, "style"); st != "" {
					next.Style = st
				}
			}
			spans = append(spans, parseSpans(c, next)...)
		}
	}
	return spans
}

func attrOf(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// alignOf extracts a text-align declaration from a style attribute.
// The default left alignment is represented as "".
func alignOf(n *xhtml.Node) string {
	style := attrOf(n, "style")
	if style == "" {
		return ""
	}
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == "text-align" {
			v := strings.TrimSpace(value)
			if v == "left" {
				return ""
			}
			return v
		}
	}
	return ""
}
