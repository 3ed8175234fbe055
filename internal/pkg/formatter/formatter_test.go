package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

func TestFactoryCreatesAllFormats(t *testing.T) {
	factory := NewFactory()

	cases := []struct {
		format      entity.ExportFormat
		contentType string
		extension   string
	}{
		{entity.FormatMarkdown, "text/markdown; charset=utf-8", ".md"},
		{entity.FormatPDF, "application/pdf", ".pdf"},
		{entity.FormatDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	}

	for _, tc := range cases {
		f, err := factory.Create(tc.format)
		if err != nil {
			t.Fatalf("create %s: %v", tc.format, err)
		}
		if f.ContentType() != tc.contentType {
			t.Errorf("%s: content type %q, want %q", tc.format, f.ContentType(), tc.contentType)
		}
		if f.FileExtension() != tc.extension {
			t.Errorf("%s: extension %q, want %q", tc.format, f.FileExtension(), tc.extension)
		}
	}
}

func TestFactoryRejectsUnknownFormat(t *testing.T) {
	if _, err := NewFactory().Create(entity.ExportFormat("xlsx")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestMarkdownFormat(t *testing.T) {
	out, err := NewMarkdownFormatter().Format("pets.txt", "cats are mammals")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	got := string(out)
	if !strings.HasPrefix(got, "# pets.txt\n\n") || !strings.Contains(got, "cats are mammals") {
		t.Fatalf("unexpected markdown output %q", got)
	}
}

func TestPDFFormatProducesValidHeader(t *testing.T) {
	out, err := NewPDFFormatter().Format("pets.txt", "cats are mammals")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF magic bytes, got %q", out[:8])
	}
}

func TestDOCXFormatProducesZipArchive(t *testing.T) {
	out, err := NewDOCXFormatter().Format("pets.txt", "cats are mammals")
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Fatalf("expected OOXML zip container, got %q", out[:4])
	}
}
