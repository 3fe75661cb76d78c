package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// ErrJobNotFound is returned by Get for an unknown id.
var ErrJobNotFound = errors.New("analysis job not found")

type AnalysisJobRepository interface {
	Create(ctx context.Context, job *entity.AnalysisJob) error
	Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error)
	List(ctx context.Context, limit int) ([]*entity.AnalysisJob, error)
	FindByHash(ctx context.Context, hash string) (*entity.AnalysisJob, error)
}

type analysisJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewAnalysisJobRepository(db *DB, log *slog.Logger) AnalysisJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &analysisJobRepo{db: db, log: log}
}

var jobColumns = []string{
	"id", "file_name", "content_hash", "format", "started_at", "finished_at", "status",
	"analysis_method", "room_count", "floors", "error_message", "result_json", "archive_key",
}

func (r *analysisJobRepo) Create(ctx context.Context, job *entity.AnalysisJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now().UTC()
	}
	var result any
	if len(job.ResultJSON) > 0 {
		result = string(job.ResultJSON)
	}
	query, args := entsql.Dialect(r.db.Dialect).
		Insert(analysisJobTable).
		Columns(jobColumns...).
		Values(
			job.ID, job.FileName, job.ContentHash, job.Format, job.StartedAt, nullTime(job.FinishedAt), job.Status,
			nullString(&job.AnalysisMethod), job.RoomCount, job.Floors, nullString(job.ErrorMessage), result, nullString(job.ArchiveKey),
		).
		Query()
	if err := r.db.Driver.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("analysis_job create failed", "job_id", job.ID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("analysis_job recorded", "job_id", job.ID, "status", job.Status, "method", job.AnalysisMethod)
	return nil
}

func (r *analysisJobRepo) Get(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	jobs, err := r.query(ctx, func(s *entsql.Selector) {
		s.Where(entsql.EQ("id", id))
	})
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}
	return jobs[0], nil
}

// List returns the most recent jobs first.
func (r *analysisJobRepo) List(ctx context.Context, limit int) ([]*entity.AnalysisJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.query(ctx, func(s *entsql.Selector) {
		s.OrderBy(entsql.Desc("started_at")).Limit(limit)
	})
}

// FindByHash returns the latest successful job for the content hash.
func (r *analysisJobRepo) FindByHash(ctx context.Context, hash string) (*entity.AnalysisJob, error) {
	jobs, err := r.query(ctx, func(s *entsql.Selector) {
		s.Where(entsql.And(entsql.EQ("content_hash", hash), entsql.NEQ("status", "FAILED"))).
			OrderBy(entsql.Desc("started_at")).
			Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}
	return jobs[0], nil
}

func (r *analysisJobRepo) query(ctx context.Context, shape func(*entsql.Selector)) ([]*entity.AnalysisJob, error) {
	b := entsql.Dialect(r.db.Dialect)
	sel := b.Select(jobColumns...).From(b.Table(analysisJobTable))
	shape(sel)
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.db.Driver.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.AnalysisJob
	for rows.Next() {
		var (
			j                               entity.AnalysisJob
			finished                        sql.NullTime
			method, errMsg, result, archive sql.NullString
		)
		if err := rows.Scan(
			&j.ID, &j.FileName, &j.ContentHash, &j.Format, &j.StartedAt, &finished, &j.Status,
			&method, &j.RoomCount, &j.Floors, &errMsg, &result, &archive,
		); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", common.ErrDatabase, err)
		}
		if finished.Valid {
			t := finished.Time
			j.FinishedAt = &t
		}
		j.AnalysisMethod = method.String
		if errMsg.Valid {
			j.ErrorMessage = &errMsg.String
		}
		if result.Valid {
			j.ResultJSON = []byte(result.String)
		}
		if archive.Valid {
			j.ArchiveKey = &archive.String
		}
		out = append(out, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
