package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/evask/materialforge-backend/internal/richtext"
	"github.com/evask/materialforge-backend/internal/types"
)

func sampleDocument() richtext.Document {
	return richtext.FromGenerated(&types.GeneratedMaterial{
		Title: "Business English Essentials",
		Chapters: []types.GeneratedChapter{
			{Number: 1, Title: "Introductions", Content: "Hello.\nNice to meet you."},
			{Number: 2, Title: "Meetings", Content: "Let's begin."},
		},
	})
}

func sampleMeta() Meta {
	return Meta{
		Title:    "Business English Essentials",
		Modified: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestForUnknownFormat(t *testing.T) {
	if _, err := For(Format("epub")); !errors.Is(err, types.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatMetadata(t *testing.T) {
	cases := []struct {
		format      Format
		contentType string
		extension   string
	}{
		{FormatHTML, "text/html; charset=utf-8", "html"},
		{FormatDocx, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
		{FormatPdf, "application/pdf", "pdf"},
	}
	for _, tc := range cases {
		e, err := For(tc.format)
		if err != nil {
			t.Fatalf("For(%s): %v", tc.format, err)
		}
		if e.ContentType() != tc.contentType {
			t.Errorf("%s content type = %q, want %q", tc.format, e.ContentType(), tc.contentType)
		}
		if e.Extension() != tc.extension {
			t.Errorf("%s extension = %q, want %q", tc.format, e.Extension(), tc.extension)
		}
	}
}

func TestHTMLRenderContainsContent(t *testing.T) {
	e, _ := For(FormatHTML)
	out, err := e.Render(sampleDocument(), sampleMeta())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	page := string(out)
	for _, want := range []string{
		"<title>Business English Essentials</title>",
		"<h1>Business English Essentials</h1>",
		"<h2>Chapter 1: Introductions</h2>",
		"Nice to meet you.",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	for _, format := range []Format{FormatHTML, FormatPdf} {
		e, _ := For(format)
		first, err := e.Render(sampleDocument(), sampleMeta())
		if err != nil {
			t.Fatalf("%s render: %v", format, err)
		}
		second, err := e.Render(sampleDocument(), sampleMeta())
		if err != nil {
			t.Fatalf("%s render: %v", format, err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("%s render is not byte identical across calls", format)
		}
	}
}

func TestPdfRenderStartsWithHeader(t *testing.T) {
	e, _ := For(FormatPdf)
	out, err := e.Render(sampleDocument(), sampleMeta())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not start with a pdf header: %q", out[:min(len(out), 8)])
	}
}

func TestDocxRenderIsValidArchive(t *testing.T) {
	e, _ := For(FormatDocx)
	out, err := e.Render(sampleDocument(), sampleMeta())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	var document []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		document, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
	}
	if document == nil {
		t.Fatal("archive has no word/document.xml")
	}
	for _, want := range []string{"Business English Essentials", "Chapter 1: Introductions", "Nice to meet you."} {
		if !strings.Contains(string(document), want) {
			t.Errorf("document.xml missing %q", want)
		}
	}
}
