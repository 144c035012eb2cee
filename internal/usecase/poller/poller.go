// Package poller waits on a remote research task: first for its generated
// questions, later for a report whose summary is actually written.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"research-client/internal/application/port/output"
	"research-client/internal/domain/entity"
	"research-client/internal/domain/readiness"
)

const (
	defaultPollInterval     = 2 * time.Second
	defaultApprovalInterval = 2 * time.Second
	defaultApprovalDeadline = 30 * time.Second

	checkingSummaryMessage = "Checking summary..."
)

type Config struct {
	PollInterval     time.Duration
	ApprovalInterval time.Duration
	ApprovalDeadline time.Duration
	// ReportMaxWait bounds WaitForReport as a whole. Zero means unbounded.
	ReportMaxWait time.Duration
	// MaxConsecutiveFailures ends WaitForReport after that many failed
	// fetches in a row. Zero means failures are retried forever.
	MaxConsecutiveFailures int
}

func DefaultConfig() Config {
	return Config{
		PollInterval:     defaultPollInterval,
		ApprovalInterval: defaultApprovalInterval,
		ApprovalDeadline: defaultApprovalDeadline,
	}
}

type SleepFunc func(ctx context.Context, d time.Duration) error

type Option func(*Poller)

// WithSleep replaces the delay between report polls.
func WithSleep(fn SleepFunc) Option {
	return func(p *Poller) {
		p.sleep = fn
	}
}

type Poller struct {
	service output.ResearchServicePort
	logger  output.LoggerPort
	cfg     Config
	sleep   SleepFunc
}

type ApprovalOutcome struct {
	Questions []string
	// Complete is set when the task finished before asking for approval.
	Complete bool
}

func New(service output.ResearchServicePort, logger output.LoggerPort, cfg Config, opts ...Option) *Poller {
	defaults := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.ApprovalInterval <= 0 {
		cfg.ApprovalInterval = defaults.ApprovalInterval
	}
	if cfg.ApprovalDeadline <= 0 {
		cfg.ApprovalDeadline = defaults.ApprovalDeadline
	}

	p := &Poller{
		service: service,
		logger:  logger.Named("poller"),
		cfg:     cfg,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) ApprovalOperation(taskID entity.TaskID) *Operation[*ApprovalOutcome] {
	return NewOperation(func(ctx context.Context) (*ApprovalOutcome, error) {
		return p.WaitForQuestions(ctx, taskID)
	})
}

func (p *Poller) ReportOperation(taskID entity.TaskID, progress output.ProgressFunc) *Operation[*entity.Report] {
	return NewOperation(func(ctx context.Context) (*entity.Report, error) {
		return p.WaitForReport(ctx, taskID, progress)
	})
}

// WaitForQuestions polls the task status every ApprovalInterval until the
// service asks for approval or reports the task complete. Any fetch error
// ends the wait, and so does ApprovalDeadline.
func (p *Poller) WaitForQuestions(ctx context.Context, taskID entity.TaskID) (*ApprovalOutcome, error) {
	log := p.logger.WithField("taskID", taskID)

	deadlineCtx, cancel := context.WithTimeout(ctx, p.cfg.ApprovalDeadline)
	defer cancel()

	ticker := time.NewTicker(p.cfg.ApprovalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadlineCtx.Done():
			return nil, p.approvalDeadlineError(ctx, log)
		case <-ticker.C:
		}

		state, err := p.service.GetTaskStatus(deadlineCtx, taskID)
		if err != nil {
			if ctx.Err() == nil && deadlineCtx.Err() != nil {
				return nil, p.approvalDeadlineError(ctx, log)
			}
			log.Error("Failed to fetch research questions", "error", err)
			return nil, fmt.Errorf("failed to fetch research questions: %w", err)
		}

		log.Debug("Approval poll", "status", state.Status.String())

		switch {
		case state.Status.IsAwaitingInput() && state.ResearchQuestions != nil:
			log.Info("Research questions ready", "count", len(state.ResearchQuestions))
			return &ApprovalOutcome{Questions: state.ResearchQuestions}, nil
		case state.Status.IsComplete():
			log.Info("Task already complete, skipping approval")
			return &ApprovalOutcome{Complete: true}, nil
		case state.Status.IsFailed():
			return nil, &entity.UnexpectedStateError{TaskID: taskID, Status: state.Status, Details: state.Details}
		}
	}
}

func (p *Poller) approvalDeadlineError(ctx context.Context, log output.LoggerPort) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Warn("Timed out waiting for research questions", "deadline", p.cfg.ApprovalDeadline)
	return &entity.TimeoutError{Op: "wait for research questions", Duration: p.cfg.ApprovalDeadline}
}

// WaitForReport waits for the task to reach COMPLETE and then for a results
// payload that passes the readiness check. Failed fetches are retried on the
// next tick unless they are permanent. AWAITING_INPUT or FAILED on the way
// is an error.
func (p *Poller) WaitForReport(ctx context.Context, taskID entity.TaskID, progress output.ProgressFunc) (*entity.Report, error) {
	log := p.logger.WithField("taskID", taskID)

	waitCtx := ctx
	if p.cfg.ReportMaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.cfg.ReportMaxWait)
		defer cancel()
	}

	if err := p.waitForComplete(waitCtx, taskID, progress, log); err != nil {
		return nil, p.reportWaitError(ctx, waitCtx, taskID, err)
	}

	report, err := p.waitForSummary(waitCtx, taskID, progress, log)
	if err != nil {
		return nil, p.reportWaitError(ctx, waitCtx, taskID, err)
	}

	return report, nil
}

func (p *Poller) waitForComplete(ctx context.Context, taskID entity.TaskID, progress output.ProgressFunc, log output.LoggerPort) error {
	failures := 0
	for {
		state, err := p.service.GetTaskStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if isPermanent(err) {
				return err
			}
			failures++
			log.Warn("Status poll failed, retrying", "error", err, "failures", failures)
			if p.exhausted(failures) {
				return fmt.Errorf("status polling gave up after %d consecutive failures: %w", failures, err)
			}
		} else {
			failures = 0
			notify(progress, "Status: "+state.Status.String())

			if state.Status.IsComplete() {
				log.Info("Task complete, waiting for summary")
				return nil
			}
			if state.Status.IsAwaitingInput() || state.Status.IsFailed() {
				return &entity.UnexpectedStateError{TaskID: taskID, Status: state.Status, Details: state.Details}
			}
		}

		if err := p.sleep(ctx, p.cfg.PollInterval); err != nil {
			return err
		}
	}
}

func (p *Poller) waitForSummary(ctx context.Context, taskID entity.TaskID, progress output.ProgressFunc, log output.LoggerPort) (*entity.Report, error) {
	failures := 0
	for attempt := 1; ; attempt++ {
		report, err := p.service.GetResults(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isPermanent(err) {
				return nil, err
			}
			failures++
			log.Warn("Results poll failed, retrying", "error", err, "failures", failures)
			if p.exhausted(failures) {
				return nil, fmt.Errorf("results polling gave up after %d consecutive failures: %w", failures, err)
			}
		} else {
			failures = 0
			notify(progress, checkingSummaryMessage)

			if readiness.IsSummaryReady(report) {
				log.Info("Summary ready", "attempts", attempt)
				return report, nil
			}
			log.Debug("Summary not ready yet", "attempt", attempt)
		}

		if err := p.sleep(ctx, p.cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

func (p *Poller) reportWaitError(parent, waitCtx context.Context, taskID entity.TaskID, err error) error {
	if parent.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		p.logger.Warn("Report not ready within budget", "taskID", taskID, "maxWait", p.cfg.ReportMaxWait)
		return &entity.ReadinessTimeoutError{TaskID: taskID, Duration: p.cfg.ReportMaxWait}
	}
	return err
}

// isPermanent reports errors a later poll cannot recover from.
func isPermanent(err error) bool {
	return errors.Is(err, entity.ErrResponseTooLarge)
}

func (p *Poller) exhausted(failures int) bool {
	return p.cfg.MaxConsecutiveFailures > 0 && failures >= p.cfg.MaxConsecutiveFailures
}

func notify(progress output.ProgressFunc, message string) {
	if progress != nil {
		progress(message)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
