package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"research-client/internal/domain/entity"
	"research-client/internal/infrastructure/logger"
	"research-client/internal/infrastructure/validation"
	"research-client/internal/usecase/poller"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu        sync.Mutex
	startErr  error
	statuses  []entity.TaskState
	results   []*entity.Report
	resumeErr error

	started     []entity.ResearchRequest
	resumed     [][]string
	statusCalls int
	resultCalls int
}

func (f *fakeService) StartResearch(_ context.Context, req entity.ResearchRequest) (*entity.TaskHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, req)
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &entity.TaskHandle{TaskID: "abc123"}, nil
}

func (f *fakeService) GetTaskStatus(context.Context, entity.TaskID) (*entity.TaskState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.statuses[min(f.statusCalls, len(f.statuses)-1)]
	f.statusCalls++
	return &state, nil
}

func (f *fakeService) ResumeTask(_ context.Context, taskID entity.TaskID, questions []string) (*entity.ResumeAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumed = append(f.resumed, questions)
	if f.resumeErr != nil {
		return nil, f.resumeErr
	}
	return &entity.ResumeAck{TaskID: taskID, Status: entity.TaskStatusResumed}, nil
}

func (f *fakeService) GetResults(context.Context, entity.TaskID) (*entity.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report := f.results[min(f.resultCalls, len(f.results)-1)]
	f.resultCalls++
	return report, nil
}

type fakeUI struct {
	mu        sync.Mutex
	review    func([]string) ([]string, error)
	reviewed  [][]string
	stages    []string
	progress  []string
}

func (u *fakeUI) AskQuery(context.Context) (string, error)     { return "", nil }
func (u *fakeUI) ConfirmRestart(context.Context) (bool, error) { return false, nil }
func (u *fakeUI) ShowReport(context.Context, *entity.Report)   {}
func (u *fakeUI) ShowError(context.Context, error)             {}

func (u *fakeUI) ReviewQuestions(_ context.Context, questions []string) ([]string, error) {
	u.reviewed = append(u.reviewed, questions)
	if u.review == nil {
		return questions, nil
	}
	return u.review(questions)
}

func (u *fakeUI) ShowStage(_ context.Context, stage string) {
	u.stages = append(u.stages, stage)
}

func (u *fakeUI) ShowProgress(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.progress = append(u.progress, message)
}

func readyReport() *entity.Report {
	t := entity.Text(strings.Repeat("Quantum error correction is improving. ", 4))
	return &entity.Report{OriginalQuery: "quantum computing trends", Summary: &t}
}

func newUseCase(svc *fakeService, ui *fakeUI) *UseCase {
	cfg := poller.DefaultConfig()
	cfg.PollInterval = time.Millisecond
	cfg.ApprovalInterval = time.Millisecond
	cfg.ApprovalDeadline = time.Second

	log := logger.NewNop()
	return NewUseCase(svc, poller.New(svc, log, cfg), ui, validation.New(), log)
}

func awaiting(questions ...string) entity.TaskState {
	return entity.TaskState{TaskID: "abc123", Status: entity.TaskStatusAwaitingInput, ResearchQuestions: questions}
}

func state(s entity.TaskStatus) entity.TaskState {
	return entity.TaskState{TaskID: "abc123", Status: s}
}

func TestExecute_FullFlow(t *testing.T) {
	svc := &fakeService{
		statuses: []entity.TaskState{
			state(entity.TaskStatusPending),
			awaiting("What is X?", "Why Y?"),
			state(entity.TaskStatusRunning),
			state(entity.TaskStatusComplete),
		},
		results: []*entity.Report{{}, readyReport()},
	}
	ui := &fakeUI{review: func(q []string) ([]string, error) {
		return append(q, "  ", "Added question"), nil
	}}

	report, err := newUseCase(svc, ui).Execute(context.Background(), entity.NewResearchRequest("quantum computing trends"))

	require.NoError(t, err)
	assert.Equal(t, readyReport().SummaryText(), report.SummaryText())
	assert.Equal(t, [][]string{{"What is X?", "Why Y?"}}, ui.reviewed)
	assert.Equal(t, [][]string{{"What is X?", "Why Y?", "Added question"}}, svc.resumed)
	assert.Equal(t, []string{StageStarting, StageQuestions, StageReview, StageResuming, StageReport}, ui.stages)
	assert.Contains(t, ui.progress, "Status: COMPLETE")
	assert.Contains(t, ui.progress, "Checking summary...")
	assert.Equal(t, 2, svc.resultCalls)
}

func TestExecute_CompleteSkipsApproval(t *testing.T) {
	svc := &fakeService{
		statuses: []entity.TaskState{state(entity.TaskStatusComplete)},
		results:  []*entity.Report{readyReport()},
	}
	ui := &fakeUI{}

	report, err := newUseCase(svc, ui).Execute(context.Background(), entity.NewResearchRequest("q"))

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Empty(t, ui.reviewed)
	assert.Empty(t, svc.resumed)
}

func TestExecute_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  entity.ResearchRequest
	}{
		{"blank query", entity.NewResearchRequest("   ")},
		{"unknown provider", entity.ResearchRequest{Query: "q", ModelProvider: "acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}

			_, err := newUseCase(svc, &fakeUI{}).Execute(context.Background(), tt.req)

			require.Error(t, err)
			assert.Empty(t, svc.started)
		})
	}
}

func TestExecute_StartFailure(t *testing.T) {
	svc := &fakeService{startErr: &entity.HTTPError{Op: "start research", StatusCode: 503, StatusText: "Service Unavailable"}}

	_, err := newUseCase(svc, &fakeUI{}).Execute(context.Background(), entity.NewResearchRequest("q"))

	require.ErrorIs(t, err, entity.ErrHTTP)
	assert.Zero(t, svc.statusCalls)
}

func TestExecute_AllQuestionsBlank(t *testing.T) {
	svc := &fakeService{statuses: []entity.TaskState{awaiting("What is X?")}}
	ui := &fakeUI{review: func([]string) ([]string, error) {
		return []string{"", "  "}, nil
	}}

	_, err := newUseCase(svc, ui).Execute(context.Background(), entity.NewResearchRequest("q"))

	require.ErrorIs(t, err, entity.ErrNoQuestions)
	assert.Empty(t, svc.resumed)
}

func TestExecute_ReviewFailure(t *testing.T) {
	svc := &fakeService{statuses: []entity.TaskState{awaiting("What is X?")}}
	ui := &fakeUI{review: func([]string) ([]string, error) {
		return nil, errors.New("stdin closed")
	}}

	_, err := newUseCase(svc, ui).Execute(context.Background(), entity.NewResearchRequest("q"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin closed")
	assert.Empty(t, svc.resumed)
}

func TestExecute_ResumeFailure(t *testing.T) {
	svc := &fakeService{
		statuses:  []entity.TaskState{awaiting("What is X?")},
		resumeErr: &entity.TimeoutError{Op: "resume task", Duration: 10 * time.Minute},
	}

	_, err := newUseCase(svc, &fakeUI{}).Execute(context.Background(), entity.NewResearchRequest("q"))

	require.ErrorIs(t, err, entity.ErrTimeout)
	assert.Zero(t, svc.resultCalls)
}

func TestExecute_AwaitingInputAgain(t *testing.T) {
	svc := &fakeService{
		statuses: []entity.TaskState{awaiting("What is X?"), awaiting("What is X?")},
	}

	_, err := newUseCase(svc, &fakeUI{}).Execute(context.Background(), entity.NewResearchRequest("q"))

	require.ErrorIs(t, err, entity.ErrUnexpectedState)
	assert.Len(t, svc.resumed, 1)
}
