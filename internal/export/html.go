package export

import (
	"html"
	"strings"

	"github.com/evask/materialforge-backend/internal/richtext"
)

// htmlExporter wraps the document's canonical HTML in a standalone,
// print-ready page. This is a local transformation; it never needs a
// backend round trip.
type htmlExporter struct{}

func (htmlExporter) ContentType() string { return "text/html; charset=utf-8" }
func (htmlExporter) Extension() string   { return "html" }

const htmlHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%TITLE%</title>
<style>
body { font-family: Calibri, 'Segoe UI', sans-serif; max-width: 800px; margin: 40px auto; line-height: 1.6; color: #1a1a1a; }
h1 { color: #003366; text-align: center; }
h2 { color: #ffffff; background: #4472C4; padding: 8px 12px; }
h3 { color: #003366; }
</style>
</head>
<body>
`

func (htmlExporter) Render(doc richtext.Document, meta Meta) ([]byte, error) {
	var b strings.Builder
	b.WriteString(strings.Replace(htmlHead, "%TITLE%", html.EscapeString(meta.Title), 1))
	b.WriteString(doc.HTML())
	b.WriteString("\n</body>\n</html>\n")
	return []byte(b.String()), nil
}
