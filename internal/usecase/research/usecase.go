package research

import (
	"context"
	"fmt"

	"research-client/internal/application/port/input"
	"research-client/internal/application/port/output"
	"research-client/internal/domain/entity"
	"research-client/internal/usecase/poller"

	"github.com/google/uuid"
)

const (
	StageStarting  = "Starting research"
	StageQuestions = "Generating research questions"
	StageReview    = "Review research questions"
	StageResuming  = "Resuming research"
	StageReport    = "Researching"
)

// Validator checks struct tags on requests before they leave the client.
type Validator interface {
	Struct(s any) error
}

type UseCase struct {
	service   output.ResearchServicePort
	poller    *poller.Poller
	ui        output.UserInteractionPort
	validator Validator
	logger    output.LoggerPort
}

var _ input.ResearchRunner = (*UseCase)(nil)

func NewUseCase(
	service output.ResearchServicePort,
	taskPoller *poller.Poller,
	ui output.UserInteractionPort,
	validator Validator,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		service:   service,
		poller:    taskPoller,
		ui:        ui,
		validator: validator,
		logger:    logger.Named("research"),
	}
}

// Execute runs one research session from query to ready report. Every error
// ends the session; the caller decides whether to start over.
func (uc *UseCase) Execute(ctx context.Context, req entity.ResearchRequest) (*entity.Report, error) {
	log := uc.logger.WithField("session", uuid.NewString())

	if err := uc.validator.Struct(req); err != nil {
		return nil, err
	}

	uc.ui.ShowStage(ctx, StageStarting)
	handle, err := uc.service.StartResearch(ctx, req)
	if err != nil {
		log.Error("Failed to start research", "error", err)
		return nil, err
	}
	log = log.WithField("taskID", handle.TaskID)
	log.Info("Research started", "provider", string(req.ModelProvider))

	uc.ui.ShowStage(ctx, StageQuestions)
	outcome, err := runOperation(ctx, uc.poller.ApprovalOperation(handle.TaskID))
	if err != nil {
		return nil, err
	}

	if outcome.Complete {
		log.Info("Task finished without asking for approval")
	} else if err := uc.approve(ctx, handle.TaskID, outcome.Questions, log); err != nil {
		return nil, err
	}

	uc.ui.ShowStage(ctx, StageReport)
	report, err := runOperation(ctx, uc.poller.ReportOperation(handle.TaskID, uc.ui.ShowProgress))
	if err != nil {
		log.Error("Research did not produce a report", "error", err)
		return nil, err
	}

	log.Info("Report ready", "findings", len(report.Findings), "citations", len(report.Citations))
	return report, nil
}

func (uc *UseCase) approve(ctx context.Context, taskID entity.TaskID, questions []string, log output.LoggerPort) error {
	uc.ui.ShowStage(ctx, StageReview)
	reviewed, err := uc.ui.ReviewQuestions(ctx, questions)
	if err != nil {
		return fmt.Errorf("review research questions: %w", err)
	}

	approved := entity.NonBlankQuestions(reviewed)
	if len(approved) == 0 {
		return entity.ErrNoQuestions
	}

	if err := uc.validator.Struct(entity.ResumeRequest{ResearchQuestions: approved}); err != nil {
		return err
	}

	uc.ui.ShowStage(ctx, StageResuming)
	if _, err := uc.service.ResumeTask(ctx, taskID, approved); err != nil {
		log.Error("Failed to resume research", "error", err)
		return err
	}

	log.Info("Research resumed", "questions", len(approved))
	return nil
}

// runOperation starts op under ctx and blocks until it settles. The operation
// is cancelled on return so no poll outlives the call.
func runOperation[T any](ctx context.Context, op *poller.Operation[T]) (T, error) {
	defer op.Cancel()

	if err := op.Start(ctx); err != nil {
		var zero T
		return zero, err
	}
	return op.Wait()
}
