// Package queue holds delayed verification tasks. A task becomes due at
// DueAt and is handed out to exactly one caller of Due.
package queue

import (
	"context"
	"time"

	id "spectra/pkg/domain"
)

type Stage string

const (
	StageStart    Stage = "start"
	StageComplete Stage = "complete"
)

// Task drives one step of a submission's verification. Version pins the
// task to the resubmission that created it.
type Task struct {
	SubmissionID id.SubmissionID `json:"submissionId"`
	Version      int64           `json:"version"`
	Stage        Stage           `json:"stage"`
	DueAt        time.Time       `json:"dueAt"`
}

type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	// Due removes and returns up to limit tasks due at or before now,
	// earliest first.
	Due(ctx context.Context, now time.Time, limit int) ([]Task, error)
	Len(ctx context.Context) (int, error)
}
