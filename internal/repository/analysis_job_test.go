package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(context.Background(), Config{
		SQLitePath: "file:" + t.Name() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
	}, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.HealthCheck(context.Background(), time.Second); err != nil {
		t.Fatalf("health: %v", err)
	}
	return db
}

func TestAnalysisJobRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisJobRepository(openTestDB(t), nil)

	finished := time.Now().UTC().Truncate(time.Second)
	key := "plans/abc.pdf"
	job := &entity.AnalysisJob{
		FileName:       "house.pdf",
		ContentHash:    "abc",
		Format:         "PDF",
		StartedAt:      finished.Add(-time.Minute),
		FinishedAt:     &finished,
		Status:         "SUCCEEDED",
		AnalysisMethod: "gemini_ai",
		RoomCount:      3,
		Floors:         2,
		ResultJSON:     []byte(`{"rooms":[],"floors":2}`),
		ArchiveKey:     &key,
	}
	if err := repo.Create(ctx, job); err != nil {
		t.Fatal(err)
	}
	if job.ID == uuid.Nil {
		t.Fatal("id not assigned")
	}

	got, err := repo.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.FileName != "house.pdf" || got.RoomCount != 3 || got.Floors != 2 || got.AnalysisMethod != "gemini_ai" {
		t.Errorf("got = %+v", got)
	}
	if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
		t.Errorf("finished = %v, want %v", got.FinishedAt, finished)
	}
	if got.ArchiveKey == nil || *got.ArchiveKey != key || got.ErrorMessage != nil {
		t.Errorf("archive = %v, error = %v", got.ArchiveKey, got.ErrorMessage)
	}
	if string(got.ResultJSON) != `{"rooms":[],"floors":2}` {
		t.Errorf("result = %s", got.ResultJSON)
	}
}

func TestAnalysisJobGetUnknown(t *testing.T) {
	repo := NewAnalysisJobRepository(openTestDB(t), nil)
	if _, err := repo.Get(context.Background(), uuid.New()); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestAnalysisJobListAndFindByHash(t *testing.T) {
	ctx := context.Background()
	repo := NewAnalysisJobRepository(openTestDB(t), nil)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "corpus exploded"
	jobs := []*entity.AnalysisJob{
		{FileName: "a.pdf", ContentHash: "h1", Format: "PDF", StartedAt: base, Status: "SUCCEEDED", AnalysisMethod: "enhanced_local", RoomCount: 2, Floors: 1},
		{FileName: "a-again.pdf", ContentHash: "h1", Format: "PDF", StartedAt: base.Add(time.Minute), Status: "FAILED", ErrorMessage: &msg},
		{FileName: "b.png", ContentHash: "h2", Format: "IMAGE", StartedAt: base.Add(2 * time.Minute), Status: "DEGRADED", AnalysisMethod: "minimal_fallback", RoomCount: 1, Floors: 1},
	}
	for _, j := range jobs {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].FileName != "b.png" || list[1].FileName != "a-again.pdf" {
		t.Errorf("list = %v", names(list))
	}
	if list[1].ErrorMessage == nil || *list[1].ErrorMessage != msg {
		t.Errorf("error message = %v", list[1].ErrorMessage)
	}

	hit, err := repo.FindByHash(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if hit.FileName != "a.pdf" {
		t.Errorf("FindByHash = %s, want the successful run", hit.FileName)
	}
	if _, err := repo.FindByHash(ctx, "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v", err)
	}
}

func names(jobs []*entity.AnalysisJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.FileName
	}
	return out
}
