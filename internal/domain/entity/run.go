package entity

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusResolved  RunStatus = "resolved"
	RunStatusRendered  RunStatus = "rendered"
	RunStatusValidated RunStatus = "validated"
	RunStatusPublished RunStatus = "published"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one CLI invocation. It is never persisted.
type Run struct {
	ID        string     `json:"id"`
	Prompt    string     `json:"prompt"`
	Status    RunStatus  `json:"status"`
	Action    ActionKind `json:"action,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewRun(prompt string) *Run {
	now := time.Now()
	return &Run{
		ID:        uuid.New().String(),
		Prompt:    prompt,
		Status:    RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateStatus sets the new status and returns the previous one.
func (r *Run) UpdateStatus(status RunStatus) RunStatus {
	prev := r.Status
	r.Status = status
	r.UpdatedAt = time.Now()
	return prev
}

func (r *Run) Elapsed() time.Duration {
	return r.UpdatedAt.Sub(r.CreatedAt)
}
