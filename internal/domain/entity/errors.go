package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTimeout          = errors.New("timeout")
	ErrHTTP             = errors.New("http error")
	ErrNetwork          = errors.New("network error")
	ErrUnexpectedState  = errors.New("unexpected task state")
	ErrReadinessTimeout = errors.New("report readiness timeout")
	ErrNoQuestions      = errors.New("please provide at least one research question")
	ErrResponseTooLarge = errors.New("response too large")
)

// TimeoutError is returned when a single call or a bounded poll runs out of time.
type TimeoutError struct {
	Op       string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("request timeout - operation took longer than %s", formatSeconds(e.Duration))
	}
	return fmt.Sprintf("%s: request timeout - operation took longer than %s", e.Op, formatSeconds(e.Duration))
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

type HTTPError struct {
	Op         string
	StatusCode int
	StatusText string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.StatusText)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ResponseTooLargeError is returned when a body exceeds the read limit.
// Retrying cannot help, so pollers treat it as fatal.
type ResponseTooLargeError struct {
	Op    string
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("failed to %s: response larger than %d bytes", e.Op, e.Limit)
}

func (e *ResponseTooLargeError) Is(target error) bool {
	return target == ErrResponseTooLarge
}

type UnexpectedStateError struct {
	TaskID  TaskID
	Status  TaskStatus
	Details string
}

func (e *UnexpectedStateError) Error() string {
	switch e.Status {
	case TaskStatusAwaitingInput:
		return fmt.Sprintf("task %s is awaiting input again, please start a new research", e.TaskID)
	case TaskStatusFailed:
		if e.Details != "" {
			return fmt.Sprintf("research task %s failed: %s", e.TaskID, e.Details)
		}
		return fmt.Sprintf("research task %s failed", e.TaskID)
	}
	return fmt.Sprintf("task %s is in unexpected state %s", e.TaskID, e.Status)
}

func (e *UnexpectedStateError) Is(target error) bool {
	return target == ErrUnexpectedState
}

type ReadinessTimeoutError struct {
	TaskID   TaskID
	Duration time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("research is taking longer than expected: task %s has no report after %s", e.TaskID, formatSeconds(e.Duration))
}

func (e *ReadinessTimeoutError) Is(target error) bool {
	return target == ErrReadinessTimeout
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int64(d/time.Second))
	}
	return d.String()
}
