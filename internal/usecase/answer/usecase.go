package answer

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mkalinin/docqa-backend/internal/config"
	"github.com/mkalinin/docqa-backend/internal/entity"
	"github.com/mkalinin/docqa-backend/internal/repository"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Usecase is the caller-facing ask operation. Mode (single vs ensemble) is
// fixed at deployment time; the request shape is identical either way.
type Usecase struct {
	documents   repository.DocumentRepository
	retriever   *Retriever
	synthesizer Synthesizer
	cfg         config.AnswerConfig
	cache       *cache.Cache
	cacheSuffix string
	logger      *zap.Logger
}

func NewUsecase(
	documents repository.DocumentRepository,
	retriever *Retriever,
	synthesizer Synthesizer,
	cfg config.AnswerConfig,
	logger *zap.Logger,
) *Usecase {
	// Optional bounded answer cache. Purely a latency optimization: entries
	// are keyed on (document, question, k-configuration), so with an
	// unchanged store the cached answer equals the recomputed one.
	var answerCache *cache.Cache
	if cfg.CacheTTL > 0 {
		answerCache = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &Usecase{
		documents:   documents,
		retriever:   retriever,
		synthesizer: synthesizer,
		cfg:         cfg,
		cache:       answerCache,
		cacheSuffix: fmt.Sprintf("%s|%d|%d|%d", cfg.Mode, cfg.TopK, cfg.PrimaryTopK, cfg.SecondaryTopK),
		logger:      logger,
	}
}

// Ask answers a question over one document.
func (uc *Usecase) Ask(ctx context.Context, req *entity.AskRequest) (string, error) {
	if req.DocumentID == "" {
		return "", fmt.Errorf("%w: document_id", entity.ErrMissingField)
	}
	if req.Question == "" {
		return "", fmt.Errorf("%w: question", entity.ErrMissingField)
	}

	if _, err := uc.documents.Get(ctx, req.DocumentID); err != nil {
		return "", err
	}

	cacheKey := req.DocumentID + "\x00" + req.Question + "\x00" + uc.cacheSuffix
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(cacheKey); ok {
			ctxzap.Debug(ctx, "answer served from cache", zap.String("document_id", req.DocumentID))
			return cached.(string), nil
		}
	}

	answer, err := uc.synthesizer.Answer(ctx, req.DocumentID, req.Question)
	if err != nil {
		return "", err
	}

	if uc.cache != nil {
		uc.cache.SetDefault(cacheKey, answer)
	}

	ctxzap.Info(ctx, "question answered",
		zap.String("document_id", req.DocumentID),
		zap.Int("answer_length", len(answer)),
	)

	return answer, nil
}

// FindSimilar returns previews of the fragments nearest to the question,
// without invoking any completion model.
func (uc *Usecase) FindSimilar(ctx context.Context, documentID, question string) ([]entity.FragmentPreview, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: question", entity.ErrMissingField)
	}

	if _, err := uc.documents.Get(ctx, documentID); err != nil {
		return nil, err
	}

	fragments, err := uc.retriever.Retrieve(ctx, documentID, question, uc.cfg.TopK)
	if err != nil {
		return nil, err
	}

	previews := make([]entity.FragmentPreview, 0, len(fragments))
	for _, f := range fragments {
		previews = append(previews, entity.FragmentPreview{
			FragmentID: f.ID,
			Text:       f.Text,
		})
	}

	return previews, nil
}
