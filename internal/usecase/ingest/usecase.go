package ingest

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/pkg/extractor"
	"github.com/mkalinin/docqa-backend/internal/pkg/formatter"
	"github.com/mkalinin/docqa-backend/internal/pkg/validator"
	"github.com/mkalinin/docqa-backend/internal/repository"
	"go.uber.org/zap"
)

// Usecase implements document ingestion: accept an upload, extract its text,
// persist the document and hand it to the indexing worker. Fragment indexing
// happens asynchronously; an uploaded document is queryable immediately, it
// just has no fragments until the worker catches up.
type Usecase struct {
	documents repository.DocumentRepository
	validator *validator.Validator
	queue     IndexQueue
	formats   *formatter.Factory
	logger    *zap.Logger
}

func NewUsecase(
	documents repository.DocumentRepository,
	validator *validator.Validator,
	queue IndexQueue,
	formats *formatter.Factory,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		documents: documents,
		validator: validator,
		queue:     queue,
		formats:   formats,
		logger:    logger,
	}
}

// Upload validates and persists an uploaded file, then queues it for
// chunking and embedding.
func (uc *Usecase) Upload(ctx context.Context, file *multipart.FileHeader) (*entity.Document, error) {
	if err := uc.validator.ValidateUpload(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFile, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	text, err := extractor.Extract(file.Filename, data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, entity.ErrEmptyDocument
	}

	doc := entity.Document{
		ID:      uuid.New().String(),
		Name:    validator.SanitizeFilename(file.Filename),
		Content: text,
	}

	saved, err := uc.documents.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	ctxzap.Info(ctx, "document uploaded",
		zap.String("document_id", saved.ID),
		zap.String("name", saved.Name),
		zap.Int("text_length", len(text)),
	)

	if err := uc.queue.Enqueue(ctx, entity.IndexJob{DocumentID: saved.ID, Text: text}); err != nil {
		return nil, fmt.Errorf("enqueue indexing: %w", err)
	}

	return saved, nil
}

// ListDocuments returns metadata for every stored document.
func (uc *Usecase) ListDocuments(ctx context.Context) ([]*entity.Document, error) {
	docs, err := uc.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// GetDocument retrieves a document by ID.
func (uc *Usecase) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := uc.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Export renders a document's extracted text in the requested download
// format. It returns the rendered bytes, the content type and the suggested
// filename.
func (uc *Usecase) Export(ctx context.Context, id string, format entity.ExportFormat) ([]byte, string, string, error) {
	if err := format.Validate(); err != nil {
		return nil, "", "", err
	}

	doc, err := uc.documents.Get(ctx, id)
	if err != nil {
		return nil, "", "", err
	}

	f, err := uc.formats.Create(format)
	if err != nil {
		return nil, "", "", err
	}

	data, err := f.Format(doc.Name, doc.Content)
	if err != nil {
		return nil, "", "", fmt.Errorf("format document: %w", err)
	}

	filename := exportFilename(doc.Name, f.FileExtension())

	ctxzap.Info(ctx, "document exported",
		zap.String("document_id", doc.ID),
		zap.String("format", string(format)),
	)

	return data, f.ContentType(), filename, nil
}

// exportFilename swaps the stored name's extension for the export format's.
func exportFilename(name, ext string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name + ext
}
