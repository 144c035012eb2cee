package output

import (
	"context"

	"research-client/internal/domain/entity"
)

type UserInteractionPort interface {
	AskQuery(ctx context.Context) (string, error)
	ReviewQuestions(ctx context.Context, questions []string) ([]string, error)
	ConfirmRestart(ctx context.Context) (bool, error)

	ShowStage(ctx context.Context, stage string)
	ShowProgress(message string)
	ShowReport(ctx context.Context, report *entity.Report)
	ShowError(ctx context.Context, err error)
}
