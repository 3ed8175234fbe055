package validator

import (
	"errors"
	"mime/multipart"
	"testing"

	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
)

func testValidator() *Validator {
	return NewFileValidator(config.FileUploadConfig{MaxFileSize: 1024})
}

func TestValidateUploadAcceptsKnownExtensions(t *testing.T) {
	v := testValidator()
	for _, name := range []string{"notes.txt", "report.pdf", "thesis.docx", "UPPER.TXT"} {
		if err := v.ValidateUpload(&multipart.FileHeader{Filename: name, Size: 100}); err != nil {
			t.Fatalf("expected %s to pass validation, got %v", name, err)
		}
	}
}

func TestValidateUploadRejectsUnknownExtension(t *testing.T) {
	v := testValidator()
	err := v.ValidateUpload(&multipart.FileHeader{Filename: "image.png", Size: 100})
	if !errors.Is(err, entity.ErrInvalidExtension) {
		t.Fatalf("expected ErrInvalidExtension, got %v", err)
	}
}

func TestValidateUploadRejectsOversizedFile(t *testing.T) {
	v := testValidator()
	err := v.ValidateUpload(&multipart.FileHeader{Filename: "big.txt", Size: 4096})
	if !errors.Is(err, entity.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestValidateUploadRejectsMissingFile(t *testing.T) {
	v := testValidator()
	if err := v.ValidateUpload(nil); !errors.Is(err, entity.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"my file (1).txt":   "my_file_1.txt",
		"../../etc/passwd":  "passwd",
		"report [final].md": "report_final.md",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
