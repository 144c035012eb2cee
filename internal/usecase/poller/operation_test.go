package poller

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"research-client/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_StartAndWait(t *testing.T) {
	op := NewOperation(func(ctx context.Context) (string, error) {
		return "done", nil
	})

	require.NoError(t, op.Start(context.Background()))
	got, err := op.Wait()

	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestOperation_StartTwice(t *testing.T) {
	op := NewOperation(func(ctx context.Context) (int, error) {
		return 1, nil
	})

	require.NoError(t, op.Start(context.Background()))
	assert.ErrorIs(t, op.Start(context.Background()), ErrAlreadyStarted)
}

func TestOperation_CancelStopsRun(t *testing.T) {
	op := NewOperation(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.NoError(t, op.Start(context.Background()))

	op.Cancel()

	select {
	case <-op.Done():
	case <-time.After(time.Second):
		t.Fatal("operation did not stop after cancel")
	}
	_, err := op.Wait()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOperation_CancelBeforeStart(t *testing.T) {
	called := false
	op := NewOperation(func(ctx context.Context) (int, error) {
		called = true
		return 0, nil
	})

	op.Cancel()

	assert.ErrorIs(t, op.Start(context.Background()), ErrAlreadyStarted)
	_, err := op.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestOperation_CancelAfterFinishKeepsResult(t *testing.T) {
	op := NewOperation(func(ctx context.Context) (int, error) {
		return 7, errors.New("failed")
	})
	require.NoError(t, op.Start(context.Background()))
	<-op.Done()

	op.Cancel()

	got, err := op.Wait()
	assert.Equal(t, 7, got)
	assert.EqualError(t, err, "failed")
}

func TestReportOperation_CancelStopsPolling(t *testing.T) {
	svc := &fakeService{statuses: []statusReply{status(entity.TaskStatusRunning)}}
	cfg := DefaultConfig()
	cfg.PollInterval = 5 * time.Millisecond

	op := newPoller(svc, cfg).ReportOperation("abc123", nil)
	require.NoError(t, op.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	op.Cancel()

	_, err := op.Wait()
	require.ErrorIs(t, err, context.Canceled)

	statusCalls, _ := svc.calls()
	time.Sleep(20 * time.Millisecond)
	after, _ := svc.calls()
	assert.Equal(t, statusCalls, after)
}

func TestApprovalOperation(t *testing.T) {
	svc := &fakeService{statuses: []statusReply{status(entity.TaskStatusAwaitingInput, strings.Repeat("q", 3))}}

	op := newPoller(svc, approvalConfig()).ApprovalOperation("abc123")
	require.NoError(t, op.Start(context.Background()))

	outcome, err := op.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"qqq"}, outcome.Questions)
}
