package document

import (
	"context"
	"mime/multipart"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

type IngestUsecase interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*entity.Document, error)
	ListDocuments(ctx context.Context) ([]*entity.Document, error)
	GetDocument(ctx context.Context, id string) (*entity.Document, error)
	Export(ctx context.Context, id string, format entity.ExportFormat) (data []byte, contentType, filename string, err error)
}
