package output

import (
	"context"

	"research-client/internal/domain/entity"
)

type ResearchServicePort interface {
	StartResearch(ctx context.Context, req entity.ResearchRequest) (*entity.TaskHandle, error)
	GetTaskStatus(ctx context.Context, taskID entity.TaskID) (*entity.TaskState, error)
	ResumeTask(ctx context.Context, taskID entity.TaskID, questions []string) (*entity.ResumeAck, error)
	GetResults(ctx context.Context, taskID entity.TaskID) (*entity.Report, error)
}

// ProgressFunc receives human-readable progress lines. It is observational
// only and must not block.
type ProgressFunc func(message string)
