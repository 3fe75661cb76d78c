package async

import (
	"context"
	"time"
)

// Job is one drawing waiting to be analysed.
type Job struct {
	Path        string
	Name        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
