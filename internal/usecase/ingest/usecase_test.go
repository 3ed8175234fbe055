package ingest

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/pkg/formatter"
	"github.com/mkalinin/docqa-backend/internal/pkg/validator"
	"github.com/mkalinin/docqa-backend/internal/repository"
	"go.uber.org/zap"
)

type fakeQueue struct {
	jobs []entity.IndexJob
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, job entity.IndexJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// multipartFile builds a real FileHeader the way the HTTP layer would.
func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/documents", &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}

	return req.MultipartForm.File["file"][0]
}

func newIngestFixture(t *testing.T) (*Usecase, *repository.DocumentMemory, *fakeQueue) {
	t.Helper()

	documents := repository.NewDocumentMemory()
	queue := &fakeQueue{}
	uc := NewUsecase(
		documents,
		validator.NewFileValidator(config.FileUploadConfig{MaxFileSize: 1 << 20}),
		queue,
		formatter.NewFactory(),
		zap.NewNop(),
	)
	return uc, documents, queue
}

func TestUploadPersistsAndEnqueues(t *testing.T) {
	uc, documents, queue := newIngestFixture(t)

	file := multipartFile(t, "my pets.txt", []byte("cats are mammals. dogs are loyal."))
	doc, err := uc.Upload(context.Background(), file)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if doc.ID == "" {
		t.Fatal("expected generated document id")
	}
	if doc.Name != "my_pets.txt" {
		t.Fatalf("expected sanitized name, got %q", doc.Name)
	}

	stored, err := documents.Get(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("stored document not found: %v", err)
	}
	if stored.Content != "cats are mammals. dogs are loyal." {
		t.Fatalf("unexpected stored content %q", stored.Content)
	}

	if len(queue.jobs) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(queue.jobs))
	}
	if queue.jobs[0].DocumentID != doc.ID || queue.jobs[0].Text != stored.Content {
		t.Fatalf("unexpected job %+v", queue.jobs[0])
	}
}

func TestUploadRejectsEmptyDocument(t *testing.T) {
	uc, _, queue := newIngestFixture(t)

	_, err := uc.Upload(context.Background(), multipartFile(t, "empty.txt", []byte("   \n ")))
	if !errors.Is(err, entity.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if len(queue.jobs) != 0 {
		t.Fatal("nothing must be queued for a rejected upload")
	}
}

func TestUploadRejectsUnknownExtension(t *testing.T) {
	uc, _, _ := newIngestFixture(t)

	_, err := uc.Upload(context.Background(), multipartFile(t, "photo.png", []byte("binary")))
	if !errors.Is(err, entity.ErrInvalidExtension) {
		t.Fatalf("expected ErrInvalidExtension, got %v", err)
	}
}

func TestUploadFailsWhenQueueIsFull(t *testing.T) {
	uc, _, queue := newIngestFixture(t)
	queue.err = errors.New("indexing queue is full")

	_, err := uc.Upload(context.Background(), multipartFile(t, "notes.txt", []byte("some text.")))
	if err == nil || !strings.Contains(err.Error(), "queue") {
		t.Fatalf("expected queue error to surface, got %v", err)
	}
}

func TestExportMarkdown(t *testing.T) {
	uc, documents, _ := newIngestFixture(t)
	if _, err := documents.Create(context.Background(), entity.Document{ID: "d1", Name: "pets.txt", Content: "cats are mammals"}); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	data, contentType, filename, err := uc.Export(context.Background(), "d1", entity.FormatMarkdown)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if contentType != "text/markdown; charset=utf-8" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if filename != "pets.md" {
		t.Fatalf("expected filename pets.md, got %q", filename)
	}
	if !strings.Contains(string(data), "cats are mammals") {
		t.Fatalf("expected document text in export, got %q", data)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	uc, _, _ := newIngestFixture(t)

	_, _, _, err := uc.Export(context.Background(), "d1", entity.ExportFormat("xlsx"))
	if !errors.Is(err, entity.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestExportUnknownDocument(t *testing.T) {
	uc, _, _ := newIngestFixture(t)

	_, _, _, err := uc.Export(context.Background(), "missing", entity.FormatMarkdown)
	if !errors.Is(err, entity.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
