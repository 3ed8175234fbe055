package ask

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

type Handler struct {
	usecase AnswerUsecase
}

func NewHandler(usecase AnswerUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Ask handles POST /ask
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx = logger.AddFields(ctx, zap.String("document_id", req.DocumentID))
	ctxzap.Debug(ctx, "answering question", zap.Int("question_length", len(req.Question)))

	answer, err := h.usecase.Ask(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, &entity.AskResponse{Answer: answer})
}

// FindSimilar handles POST /documents/{document_id}/similar
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID := chi.URLParam(r, "document_id")

	ctx = logger.AddFields(ctx,
		zap.String("document_id", documentID),
		zap.String("action", "FindSimilar"),
	)

	var req entity.SimilarFragmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	fragments, err := h.usecase.FindSimilar(ctx, documentID, req.Question)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "similar fragments found", zap.Int("count", len(fragments)))
	h.respondJSON(w, http.StatusOK, &entity.SimilarFragmentsResponse{Fragments: fragments})
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
	var (
		retrievalErr *entity.RetrievalError
		synthesisErr *entity.SynthesisError
	)
	switch {
	case errors.Is(err, entity.ErrDocumentNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "document not found", err)
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.As(err, &retrievalErr):
		h.respondError(ctx, w, http.StatusBadGateway, "context retrieval failed", err)
	case errors.As(err, &synthesisErr):
		h.respondError(ctx, w, http.StatusBadGateway, "answer synthesis failed", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
