package entity

import "strings"

type TaskID string

func (id TaskID) String() string {
	return string(id)
}

type TaskStatus string

// Statuses reported by the research service. Anything that is not
// AWAITING_INPUT, COMPLETE or FAILED is treated as still running.
const (
	TaskStatusPending       TaskStatus = "PENDING"
	TaskStatusRunning       TaskStatus = "RUNNING"
	TaskStatusResumed       TaskStatus = "RESUMED"
	TaskStatusAwaitingInput TaskStatus = "AWAITING_INPUT"
	TaskStatusComplete      TaskStatus = "COMPLETE"
	TaskStatusFailed        TaskStatus = "FAILED"
	TaskStatusUnknown       TaskStatus = "UNKNOWN"
)

func (s TaskStatus) String() string {
	if s == "" {
		return string(TaskStatusUnknown)
	}
	return string(s)
}

func (s TaskStatus) IsComplete() bool {
	return s == TaskStatusComplete
}

func (s TaskStatus) IsAwaitingInput() bool {
	return s == TaskStatusAwaitingInput
}

func (s TaskStatus) IsFailed() bool {
	return s == TaskStatusFailed
}

type TaskHandle struct {
	TaskID TaskID `json:"task_id"`
}

type TaskState struct {
	TaskID            TaskID     `json:"task_id,omitempty"`
	Status            TaskStatus `json:"status"`
	Details           string     `json:"details,omitempty"`
	ResearchQuestions []string   `json:"research_questions,omitempty"`
}

type ResumeAck struct {
	TaskID  TaskID     `json:"task_id,omitempty"`
	Status  TaskStatus `json:"status,omitempty"`
	Details string     `json:"details,omitempty"`
}

// NonBlankQuestions returns the questions with surrounding whitespace
// removed, dropping the ones that end up empty.
func NonBlankQuestions(questions []string) []string {
	result := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			result = append(result, q)
		}
	}
	return result
}
