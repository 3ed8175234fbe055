package ask

import (
	"context"

	"github.com/mkalinin/docqa-backend/internal/entity"
)

type AnswerUsecase interface {
	Ask(ctx context.Context, req *entity.AskRequest) (string, error)
	FindSimilar(ctx context.Context, documentID, question string) ([]entity.FragmentPreview, error)
}
