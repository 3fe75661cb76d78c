package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/pipeline"
)

type fakeProcessor struct {
	calls    atomic.Int32
	failOn   string
	traceIDs sync.Map
	block    chan struct{}
}

func (f *fakeProcessor) ProcessFile(ctx context.Context, path, _ string) (pipeline.Outcome, error) {
	f.calls.Add(1)
	f.traceIDs.Store(path, common.RequestIDFromContext(ctx))
	if f.block != nil {
		<-f.block
	}
	if path == f.failOn {
		return pipeline.Outcome{}, errors.New("analysis failed")
	}
	return pipeline.Outcome{Result: &entity.AnalysisResult{Floors: 1}}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessorQueueProcessesAll(t *testing.T) {
	proc := &fakeProcessor{failOn: "b.pdf"}
	var (
		mu      sync.Mutex
		results = map[string]Result{}
	)
	q := NewProcessorQueue(proc, quietLogger(), WithWorkers(3), WithQueueSize(2),
		WithResultHandler(func(r Result) {
			mu.Lock()
			defer mu.Unlock()
			results[r.Job.Path] = r
		}))

	for _, p := range []string{"a.pdf", "b.pdf", "c.png", "d.jpg", "e.pdf"} {
		if err := q.Enqueue(context.Background(), Job{Path: p, TraceID: "trace-" + p}); err != nil {
			t.Fatalf("enqueue %s: %v", p, err)
		}
	}
	q.Shutdown(context.Background())

	if got := proc.calls.Load(); got != 5 {
		t.Errorf("calls = %d, want 5", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(results) != 5 {
		t.Fatalf("results = %d", len(results))
	}
	if results["b.pdf"].Err == nil || results["a.pdf"].Err != nil {
		t.Errorf("errors: a=%v b=%v", results["a.pdf"].Err, results["b.pdf"].Err)
	}
	if results["a.pdf"].Job.SubmittedAt.IsZero() {
		t.Error("submission time not stamped")
	}
	if id, _ := proc.traceIDs.Load("c.png"); id != "trace-c.png" {
		t.Errorf("trace id = %v", id)
	}
}

func TestProcessorQueueRejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, quietLogger())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	if err := q.Enqueue(context.Background(), Job{Path: "late.pdf"}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("err = %v", err)
	}
}

func TestProcessorQueueBackpressureHonoursContext(t *testing.T) {
	proc := &fakeProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, quietLogger(), WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(proc.block)
		q.Shutdown(context.Background())
	}()

	// one job held by the worker, one in the buffer
	if err := q.Enqueue(context.Background(), Job{Path: "1.pdf"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for proc.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := q.Enqueue(context.Background(), Job{Path: "2.pdf"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Enqueue(ctx, Job{Path: "3.pdf"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}
