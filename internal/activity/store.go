package activity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/netobs/dc-catalog/internal/metrics"
	"github.com/netobs/dc-catalog/internal/model"
)

// DB defines the database operations used by activity structs.
// *pgxpool.Pool satisfies this interface.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CatalogDB contains activities that read from and update the catalog
// database. Run and stage records are the durable source of truth the
// workflow resumes from.
type CatalogDB struct {
	db DB
}

// NewCatalogDB creates a new CatalogDB activity struct.
func NewCatalogDB(db DB) *CatalogDB {
	return &CatalogDB{db: db}
}

// RunSnapshot is a run together with its per-stage records.
type RunSnapshot struct {
	Run    model.Run           `json:"run"`
	Stages []model.StageRecord `json:"stages"`
}

// GetRunSnapshot loads a run and its stage records.
func (a *CatalogDB) GetRunSnapshot(ctx context.Context, runID string) (*RunSnapshot, error) {
	var run model.Run
	err := a.db.QueryRow(ctx,
		`SELECT id, name, branch_name, request, status, current_stage, object_id,
		        proposed_change_id, proposed_change_url, error_kind, error_message,
		        created_at, updated_at, completed_at
		 FROM runs WHERE id = $1`, runID,
	).Scan(&run.ID, &run.Name, &run.BranchName, &run.Request, &run.Status, &run.CurrentStage,
		&run.ObjectID, &run.ProposedChangeID, &run.ProposedChangeURL, &run.ErrorKind,
		&run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt, &run.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("get run by id: %w", err)
	}

	rows, err := a.db.Query(ctx,
		`SELECT run_id, stage, status, output_ref, error_kind, error_message, started_at, finished_at
		 FROM run_stages WHERE run_id = $1 ORDER BY stage`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run stages: %w", err)
	}
	defer rows.Close()

	snapshot := &RunSnapshot{Run: run}
	for rows.Next() {
		var s model.StageRecord
		if err := rows.Scan(&s.RunID, &s.Stage, &s.Status, &s.OutputRef, &s.ErrorKind,
			&s.ErrorMessage, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run stage: %w", err)
		}
		snapshot.Stages = append(snapshot.Stages, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run stages: %w", err)
	}
	return snapshot, nil
}

// BeginStageParams holds the parameters for BeginStage.
type BeginStageParams struct {
	RunID string
	Stage string
}

// BeginStage moves the run to running at the given stage and upserts the
// stage record. Error fields left by a previous attempt are cleared.
func (a *CatalogDB) BeginStage(ctx context.Context, params BeginStageParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE runs SET status = $2, current_stage = $3, error_kind = '', error_message = '',
		        completed_at = NULL, updated_at = now()
		 WHERE id = $1`,
		params.RunID, model.RunStatusRunning, params.Stage)
	if err != nil {
		return fmt.Errorf("mark run running: %w", err)
	}

	_, err = a.db.Exec(ctx,
		`INSERT INTO run_stages (run_id, stage, status, started_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (run_id, stage) DO UPDATE
		 SET status = $3, started_at = now(), finished_at = NULL, error_kind = '', error_message = ''`,
		params.RunID, params.Stage, model.StageStatusRunning)
	if err != nil {
		return fmt.Errorf("mark stage running: %w", err)
	}
	return nil
}

// MarkStageSucceededParams holds the parameters for MarkStageSucceeded.
type MarkStageSucceededParams struct {
	RunID     string
	Stage     string
	OutputRef string
	// OutputURL is only set for the proposal stage.
	OutputURL string
	// ElapsedSeconds is only set for the generation stage.
	ElapsedSeconds float64
}

// MarkStageSucceeded finishes the stage record and copies its output onto the
// run row so status reads need no stage join.
func (a *CatalogDB) MarkStageSucceeded(ctx context.Context, params MarkStageSucceededParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE run_stages SET status = $3, output_ref = $4, error_kind = '', error_message = '',
		        finished_at = now()
		 WHERE run_id = $1 AND stage = $2`,
		params.RunID, params.Stage, model.StageStatusSucceeded, params.OutputRef)
	if err != nil {
		return fmt.Errorf("mark stage succeeded: %w", err)
	}

	switch params.Stage {
	case model.StageDataLoad:
		_, err = a.db.Exec(ctx,
			`UPDATE runs SET object_id = $2, updated_at = now() WHERE id = $1`,
			params.RunID, params.OutputRef)
	case model.StageGeneration:
		metrics.GenerationWaits.Observe(params.ElapsedSeconds)
	case model.StageProposal:
		_, err = a.db.Exec(ctx,
			`UPDATE runs SET proposed_change_id = $2, proposed_change_url = $3, updated_at = now() WHERE id = $1`,
			params.RunID, params.OutputRef, params.OutputURL)
	}
	if err != nil {
		return fmt.Errorf("record stage output: %w", err)
	}
	return nil
}

// MarkStageFailedParams holds the parameters for MarkStageFailed.
type MarkStageFailedParams struct {
	RunID        string
	Stage        string
	ErrorKind    string
	ErrorMessage string
}

// MarkStageFailed finishes the stage record with the classified error.
func (a *CatalogDB) MarkStageFailed(ctx context.Context, params MarkStageFailedParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE run_stages SET status = $3, error_kind = $4, error_message = $5, finished_at = now()
		 WHERE run_id = $1 AND stage = $2`,
		params.RunID, params.Stage, model.StageStatusFailed, params.ErrorKind, params.ErrorMessage)
	if err != nil {
		return fmt.Errorf("mark stage failed: %w", err)
	}
	metrics.StageFailures.WithLabelValues(params.Stage, params.ErrorKind).Inc()
	return nil
}

// CompleteRunParams holds the parameters for CompleteRun.
type CompleteRunParams struct {
	RunID        string
	Status       string
	CurrentStage string
	ErrorKind    string
	ErrorMessage string
}

// CompleteRun moves the run to a terminal status.
func (a *CatalogDB) CompleteRun(ctx context.Context, params CompleteRunParams) error {
	_, err := a.db.Exec(ctx,
		`UPDATE runs SET status = $2, current_stage = $3, error_kind = $4, error_message = $5,
		        completed_at = now(), updated_at = now()
		 WHERE id = $1`,
		params.RunID, params.Status, params.CurrentStage, params.ErrorKind, params.ErrorMessage)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	metrics.RunsCompleted.WithLabelValues(params.Status).Inc()
	return nil
}
