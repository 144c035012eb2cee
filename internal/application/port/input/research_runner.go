package input

import (
	"context"

	"research-client/internal/domain/entity"
)

type ResearchRunner interface {
	Execute(ctx context.Context, req entity.ResearchRequest) (*entity.Report, error)
}
