package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the ledger statements.
type Queries struct {
	db  DBTX
	now func() time.Time
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, now: q.now}
}

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// PreprocessRun is one row of preprocess_runs.
type PreprocessRun struct {
	ID                 string
	RawPath            string
	OutputPath         string
	Status             string
	TotalPosts         int64
	ProcessedPosts     int64
	ExtractionFailures int64
	RawTags            int64
	CanonicalTags      int64
	DroppedTags        int64
	ErrorMessage       sql.NullString
	StartedAt          time.Time
	CompletedAt        sql.NullTime
}

// Duration is the run's wall time, or the time elapsed so far when it is
// still running.
func (r PreprocessRun) Duration(now time.Time) time.Duration {
	if r.CompletedAt.Valid {
		return r.CompletedAt.Time.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

const runColumns = `id, raw_path, output_path, status, total_posts, processed_posts,
	extraction_failures, raw_tags, canonical_tags, dropped_tags, error_message,
	started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (PreprocessRun, error) {
	var r PreprocessRun
	err := row.Scan(
		&r.ID,
		&r.RawPath,
		&r.OutputPath,
		&r.Status,
		&r.TotalPosts,
		&r.ProcessedPosts,
		&r.ExtractionFailures,
		&r.RawTags,
		&r.CanonicalTags,
		&r.DroppedTags,
		&r.ErrorMessage,
		&r.StartedAt,
		&r.CompletedAt,
	)
	return r, err
}

// CreateRunParams are the arguments of CreateRun.
type CreateRunParams struct {
	RawPath    string
	OutputPath string
	TotalPosts int64
}

const createRun = `INSERT INTO preprocess_runs (id, raw_path, output_path, status, total_posts, started_at)
VALUES (?, ?, ?, ?, ?, ?)`

// CreateRun inserts a running run with a fresh ULID.
func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) (PreprocessRun, error) {
	id := ulid.Make().String()
	_, err := q.db.ExecContext(ctx, createRun,
		id,
		arg.RawPath,
		arg.OutputPath,
		RunRunning,
		arg.TotalPosts,
		q.now(),
	)
	if err != nil {
		return PreprocessRun{}, fmt.Errorf("create run: %w", err)
	}
	return q.GetRun(ctx, id)
}

// UpdateRunProgressParams are the arguments of UpdateRunProgress.
type UpdateRunProgressParams struct {
	ID                 string
	TotalPosts         int64
	ProcessedPosts     int64
	ExtractionFailures int64
}

const updateRunProgress = `UPDATE preprocess_runs
SET total_posts = ?, processed_posts = ?, extraction_failures = ?
WHERE id = ? AND status = 'running'`

// UpdateRunProgress records extraction progress of a running run.
func (q *Queries) UpdateRunProgress(ctx context.Context, arg UpdateRunProgressParams) error {
	_, err := q.db.ExecContext(ctx, updateRunProgress,
		arg.TotalPosts,
		arg.ProcessedPosts,
		arg.ExtractionFailures,
		arg.ID,
	)
	return err
}

// CompleteRunParams are the arguments of CompleteRun.
type CompleteRunParams struct {
	ID                 string
	TotalPosts         int64
	ExtractionFailures int64
	RawTags            int64
	CanonicalTags      int64
	DroppedTags        int64
}

const completeRun = `UPDATE preprocess_runs
SET status = 'completed', total_posts = ?, processed_posts = ?, extraction_failures = ?,
	raw_tags = ?, canonical_tags = ?, dropped_tags = ?, completed_at = ?
WHERE id = ?`

// CompleteRun marks a run completed with its final counts.
func (q *Queries) CompleteRun(ctx context.Context, arg CompleteRunParams) error {
	_, err := q.db.ExecContext(ctx, completeRun,
		arg.TotalPosts,
		arg.TotalPosts,
		arg.ExtractionFailures,
		arg.RawTags,
		arg.CanonicalTags,
		arg.DroppedTags,
		q.now(),
		arg.ID,
	)
	return err
}

// FailRunParams are the arguments of FailRun.
type FailRunParams struct {
	ID           string
	ErrorMessage string
}

const failRun = `UPDATE preprocess_runs
SET status = 'failed', error_message = ?, completed_at = ?
WHERE id = ?`

// FailRun marks a run failed.
func (q *Queries) FailRun(ctx context.Context, arg FailRunParams) error {
	_, err := q.db.ExecContext(ctx, failRun, arg.ErrorMessage, q.now(), arg.ID)
	return err
}

const getRun = `SELECT ` + runColumns + ` FROM preprocess_runs WHERE id = ?`

// GetRun returns one run. A missing run yields sql.ErrNoRows.
func (q *Queries) GetRun(ctx context.Context, id string) (PreprocessRun, error) {
	return scanRun(q.db.QueryRowContext(ctx, getRun, id))
}

const listRuns = `SELECT ` + runColumns + ` FROM preprocess_runs ORDER BY id DESC LIMIT ?`

// ListRuns returns the most recent runs, newest first.
func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]PreprocessRun, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PreprocessRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// EmbeddedCorpus records that a corpus file was indexed into VecLite.
type EmbeddedCorpus struct {
	CorpusPath  string
	VecLitePath string
	Posts       int64
	EmbeddedAt  time.Time
}

// UpsertEmbeddedCorpusParams are the arguments of UpsertEmbeddedCorpus.
type UpsertEmbeddedCorpusParams struct {
	CorpusPath  string
	VecLitePath string
	Posts       int64
}

const upsertEmbeddedCorpus = `INSERT INTO embedded_corpora (corpus_path, veclite_path, posts, embedded_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(corpus_path) DO UPDATE SET
	veclite_path = excluded.veclite_path,
	posts = excluded.posts,
	embedded_at = excluded.embedded_at`

// UpsertEmbeddedCorpus records an embedding pass over a corpus.
func (q *Queries) UpsertEmbeddedCorpus(ctx context.Context, arg UpsertEmbeddedCorpusParams) error {
	_, err := q.db.ExecContext(ctx, upsertEmbeddedCorpus,
		arg.CorpusPath,
		arg.VecLitePath,
		arg.Posts,
		q.now(),
	)
	return err
}

const getEmbeddedCorpus = `SELECT corpus_path, veclite_path, posts, embedded_at
FROM embedded_corpora WHERE corpus_path = ?`

// GetEmbeddedCorpus returns the embedding record of a corpus. A corpus never
// embedded yields sql.ErrNoRows.
func (q *Queries) GetEmbeddedCorpus(ctx context.Context, corpusPath string) (EmbeddedCorpus, error) {
	var e EmbeddedCorpus
	err := q.db.QueryRowContext(ctx, getEmbeddedCorpus, corpusPath).Scan(
		&e.CorpusPath,
		&e.VecLitePath,
		&e.Posts,
		&e.EmbeddedAt,
	)
	return e, err
}
