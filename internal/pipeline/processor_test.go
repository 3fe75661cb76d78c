package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]*entity.AnalysisResult
	sets int
}

func (c *memCache) Get(_ context.Context, hash string) (*entity.AnalysisResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.data[hash]
	return r, ok, nil
}

func (c *memCache) Set(_ context.Context, hash string, res *entity.AnalysisResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string]*entity.AnalysisResult{}
	}
	c.data[hash] = res
	c.sets++
	return nil
}

type memJobs struct {
	mu   sync.Mutex
	jobs []*entity.AnalysisJob
}

func (j *memJobs) Create(_ context.Context, job *entity.AnalysisJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jobs = append(j.jobs, job)
	return nil
}

type memArchive struct {
	mu    sync.Mutex
	names []string
}

func (a *memArchive) Archive(_ context.Context, _, name, hash string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.names = append(a.names, name)
	return "drawings/" + hash + filepath.Ext(name), nil
}

type countingObserver struct {
	mu       sync.Mutex
	statuses []constants.JobStatus
	hits     int
}

func (o *countingObserver) ObserveAnalysis(_ constants.AnalysisMethod, s constants.JobStatus, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, s)
}

func (o *countingObserver) ObserveCache(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	}
}

type analyzerFunc func(ctx context.Context, path string) (*entity.AnalysisResult, error)

func (f analyzerFunc) Analyze(ctx context.Context, path string) (*entity.AnalysisResult, error) {
	return f(ctx, path)
}

func countingAnalyzer(res *entity.AnalysisResult, err error, calls *int) Analyzer {
	return analyzerFunc(func(context.Context, string) (*entity.AnalysisResult, error) {
		*calls++
		return res, err
	})
}

func TestProcessFileCachesByContent(t *testing.T) {
	cache, jobs, arch, obs := &memCache{}, &memJobs{}, &memArchive{}, &countingObserver{}
	calls := 0
	p := NewProcessor(quietLogger(), countingAnalyzer(oneRoom(constants.MethodGemini), nil, &calls),
		WithCache(cache), WithJobStore(jobs), WithArchiver(arch), WithObserver(obs))
	path := drawing(t, "house.pdf")

	first, err := p.ProcessFile(context.Background(), path, "House A.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || first.Hash == "" || first.Result.AnalysisMethod != constants.MethodGemini {
		t.Fatalf("first = %+v", first)
	}
	second, err := p.ProcessFile(context.Background(), path, "House A.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Hash != first.Hash || second.JobID == first.JobID {
		t.Errorf("second = %+v", second)
	}
	if calls != 1 || cache.sets != 1 || obs.hits != 1 {
		t.Errorf("calls=%d sets=%d hits=%d", calls, cache.sets, obs.hits)
	}
	if len(arch.names) != 1 {
		t.Errorf("archived %v, want only the first run", arch.names)
	}
	if len(jobs.jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs.jobs))
	}
	j := jobs.jobs[0]
	if j.Status != string(constants.JobStatusSucceeded) || j.RoomCount != 1 || j.Format != string(constants.FormatPDF) || j.FileName != "House A.pdf" {
		t.Errorf("job = %+v", j)
	}
	if j.ArchiveKey == nil || *j.ArchiveKey != "drawings/"+first.Hash+".pdf" {
		t.Errorf("archive key = %v", j.ArchiveKey)
	}
	if len(j.ResultJSON) == 0 {
		t.Error("result not stored on job")
	}
}

func TestProcessFileSkipsCachingFallback(t *testing.T) {
	cache, jobs := &memCache{}, &memJobs{}
	calls := 0
	fb := MinimalResult(constants.DefaultVocabulary(), "rooms")
	p := NewProcessor(quietLogger(), countingAnalyzer(fb, nil, &calls), WithCache(cache), WithJobStore(jobs))
	path := drawing(t, "blank.png")

	for i := 0; i < 2; i++ {
		if _, err := p.ProcessFile(context.Background(), path, ""); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 || cache.sets != 0 {
		t.Errorf("calls=%d sets=%d", calls, cache.sets)
	}
	if jobs.jobs[0].Status != string(constants.JobStatusDegraded) || jobs.jobs[0].FileName != "blank.png" {
		t.Errorf("job = %+v", jobs.jobs[0])
	}
}

func TestProcessFileRecordsFailure(t *testing.T) {
	jobs, obs := &memJobs{}, &countingObserver{}
	calls := 0
	boom := errors.New("corpus exploded")
	p := NewProcessor(quietLogger(), countingAnalyzer(nil, boom, &calls), WithJobStore(jobs), WithObserver(obs))

	out, err := p.ProcessFile(context.Background(), drawing(t, "plan.jpg"), "plan.jpg")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if out.Result != nil {
		t.Error("result on failure")
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("jobs = %d", len(jobs.jobs))
	}
	j := jobs.jobs[0]
	if j.Status != string(constants.JobStatusFailed) || j.ErrorMessage == nil || *j.ErrorMessage != boom.Error() {
		t.Errorf("job = %+v", j)
	}
	if len(obs.statuses) != 1 || obs.statuses[0] != constants.JobStatusFailed {
		t.Errorf("observed = %v", obs.statuses)
	}
}

func TestProcessFileRejectsInputBeforeRecording(t *testing.T) {
	jobs := &memJobs{}
	calls := 0
	p := NewProcessor(quietLogger(), countingAnalyzer(oneRoom(""), nil, &calls), WithJobStore(jobs))

	_, err := p.ProcessFile(context.Background(), drawing(t, "notes.txt"), "")
	if !errors.Is(err, common.ErrUnsupportedType) {
		t.Errorf("err = %v", err)
	}
	_, err = p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), "")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if calls != 0 || len(jobs.jobs) != 0 {
		t.Errorf("calls=%d jobs=%d", calls, len(jobs.jobs))
	}
}
