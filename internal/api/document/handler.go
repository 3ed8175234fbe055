package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

type Handler struct {
	usecase IngestUsecase
	cfg     config.FileUploadConfig
}

func NewHandler(usecase IngestUsecase, cfg config.FileUploadConfig) *Handler {
	return &Handler{usecase: usecase, cfg: cfg}
}

// Upload handles POST /documents
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadDocument")

	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		ctxzap.Warn(ctx, "no file provided")
		h.respondError(ctx, w, http.StatusBadRequest, "a file is required", nil)
		return
	}

	doc, err := h.usecase.Upload(ctx, files[0])
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	// Indexing runs in the background; the document id is usable right away.
	h.respondJSON(w, http.StatusAccepted, &entity.UploadResponse{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Info:       "document accepted, indexing in progress",
	})
}

// List handles GET /documents
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListDocuments")

	docs, err := h.usecase.ListDocuments(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	infos := make([]entity.DocumentInfo, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, entity.DocumentInfo{ID: d.ID, Name: d.Name})
	}

	ctxzap.Info(ctx, "documents listed", zap.Int("count", len(infos)))
	h.respondJSON(w, http.StatusOK, &entity.ListDocumentsResponse{Documents: infos})
}

// Get handles GET /documents/{document_id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "document_id")

	ctx = logger.AddFields(ctx,
		zap.String("document_id", documentID),
		zap.String("action", "GetDocument"),
	)

	doc, err := h.usecase.GetDocument(ctx, documentID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, doc)
}

// Export handles GET /documents/{document_id}/export?format=md|pdf|docx
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "document_id")
	format := entity.ExportFormat(r.URL.Query().Get("format"))

	ctx = logger.AddFields(ctx,
		zap.String("document_id", documentID),
		zap.String("format", string(format)),
		zap.String("action", "ExportDocument"),
	)

	data, contentType, filename, err := h.usecase.Export(ctx, documentID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrDocumentNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "document not found", err)
	case errors.Is(err, entity.ErrInvalidFile),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrInvalidExtension),
		errors.Is(err, entity.ErrEmptyDocument):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
