package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.temporal.io/api/serviceerror"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/netobs/dc-catalog/internal/api/request"
	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/model"
	"github.com/netobs/dc-catalog/internal/platform"
)

const taskQueue = "catalog-tasks"

// workflowID builds a human-readable Temporal workflow ID from a resource
// type prefix and the resource's unique ID.
func workflowID(prefix, id string) string {
	return fmt.Sprintf("%s-%s", prefix, id)
}

// RunConfig carries the workflow knobs a run captures at submit time.
type RunConfig struct {
	DefaultBranch string
	PollInterval  time.Duration
	PollDeadline  time.Duration
}

// RunService manages provisioning runs: the durable run records and the
// Temporal workflows that drive them.
type RunService struct {
	db       DB
	tc       temporalclient.Client
	defaults catalog.Defaults
	cfg      RunConfig
}

// NewRunService creates a new RunService.
func NewRunService(db DB, tc temporalclient.Client, defaults catalog.Defaults, cfg RunConfig) *RunService {
	return &RunService{db: db, tc: tc, defaults: defaults, cfg: cfg}
}

// Submit records a provisioning request and starts its workflow. Runs are
// keyed by data center name, so repeat submissions attach to the existing
// run instead of provisioning twice:
//   - no run yet: a run row is created and the workflow started
//   - the run already succeeded: the recorded run is returned untouched
//   - the run is partial, failed, or cancelled: the workflow is re-driven
//     with the stored request (the resubmitted payload is ignored)
//   - the run is still pending or running: ErrRunInFlight
//
// The returned bool reports whether a workflow execution was started.
func (s *RunService) Submit(ctx context.Context, req model.DataCenterRequest) (*model.Run, bool, error) {
	if !s.defaults.ValidStrategy(req.Strategy) {
		return nil, false, fmt.Errorf("%w: strategy must be one of %s",
			ErrValidation, strings.Join(s.defaults.Strategies, ", "))
	}

	existing, err := s.getByName(ctx, req.Name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return s.attach(ctx, existing)
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	now := time.Now()
	run := &model.Run{
		ID:         platform.NewID(),
		Name:       req.Name,
		BranchName: req.BranchName(),
		Request:    req,
		Status:     model.RunStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	tag, err := s.db.Exec(ctx,
		`INSERT INTO runs (id, name, branch_name, request, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO NOTHING`,
		run.ID, run.Name, run.BranchName, reqJSON, run.Status, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost an insert race for this name; attach to the winner's run.
		existing, err := s.getByName(ctx, req.Name)
		if err != nil {
			return nil, false, err
		}
		return s.attach(ctx, existing)
	}

	if err := s.start(ctx, run); err != nil {
		return nil, false, err
	}
	return run, true, nil
}

// attach applies the repeat-submission rules to an existing run.
func (s *RunService) attach(ctx context.Context, run *model.Run) (*model.Run, bool, error) {
	switch {
	case run.Status == model.RunStatusSucceeded:
		return run, false, nil
	case model.IsResumable(run.Status):
		if err := s.start(ctx, run); err != nil {
			return nil, false, err
		}
		return run, true, nil
	default:
		return nil, false, fmt.Errorf("%w: run %s for %q is %s",
			ErrRunInFlight, run.ID, run.Name, run.Status)
	}
}

// start launches the provisioning workflow for a run. The workflow ID is
// derived from the run ID, so a run can never execute twice concurrently.
func (s *RunService) start(ctx context.Context, run *model.Run) error {
	_, err := s.tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        workflowID("provision-dc", run.ID),
		TaskQueue: taskQueue,
	}, model.ProvisionWorkflowName, model.ProvisionParams{
		RunID:         run.ID,
		DefaultBranch: s.cfg.DefaultBranch,
		PollInterval:  s.cfg.PollInterval,
		PollDeadline:  s.cfg.PollDeadline,
	})
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			return fmt.Errorf("%w: run %s is already executing", ErrRunInFlight, run.ID)
		}
		return fmt.Errorf("start ProvisionDataCenterWorkflow: %w", err)
	}
	return nil
}

const runColumns = `id, name, branch_name, request, status, current_stage, object_id,
	proposed_change_id, proposed_change_url, error_kind, error_message,
	created_at, updated_at, completed_at`

func scanRun(row pgx.Row, run *model.Run) error {
	return row.Scan(&run.ID, &run.Name, &run.BranchName, &run.Request, &run.Status,
		&run.CurrentStage, &run.ObjectID, &run.ProposedChangeID, &run.ProposedChangeURL,
		&run.ErrorKind, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt, &run.CompletedAt)
}

// GetByID retrieves a run together with its stage records and the
// summarized outcome.
func (s *RunService) GetByID(ctx context.Context, id string) (*model.RunDetail, error) {
	run, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stages, err := s.listStages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.RunDetail{
		Run:     *run,
		Stages:  stages,
		Outcome: model.Summarize(*run, stages),
	}, nil
}

func (s *RunService) getByID(ctx context.Context, id string) (*model.Run, error) {
	var run model.Run
	err := scanRun(s.db.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id), &run)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

func (s *RunService) getByName(ctx context.Context, name string) (*model.Run, error) {
	var run model.Run
	err := scanRun(s.db.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE name = $1`, name), &run)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run for %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run for %q: %w", name, err)
	}
	return &run, nil
}

func (s *RunService) listStages(ctx context.Context, runID string) ([]model.StageRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT run_id, stage, status, output_ref, error_kind, error_message, started_at, finished_at
		 FROM run_stages WHERE run_id = $1`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run stages: %w", err)
	}
	defer rows.Close()

	var stages []model.StageRecord
	for rows.Next() {
		var st model.StageRecord
		if err := rows.Scan(&st.RunID, &st.Stage, &st.Status, &st.OutputRef, &st.ErrorKind,
			&st.ErrorMessage, &st.StartedAt, &st.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run stage: %w", err)
		}
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run stages: %w", err)
	}

	// Serve stage records in execution order, not storage order.
	sort.Slice(stages, func(i, j int) bool {
		return model.StageIndex(stages[i].Stage) < model.StageIndex(stages[j].Stage)
	})
	return stages, nil
}

// List retrieves runs with cursor-based pagination, optional search on the
// data center name, and status filtering.
func (s *RunService) List(ctx context.Context, params request.ListParams) ([]model.Run, bool, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := []any{}
	argIdx := 1

	if params.Search != "" {
		query += fmt.Sprintf(` AND name ILIKE $%d`, argIdx)
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}
	if params.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, params.Status)
		argIdx++
	}
	if params.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, params.Cursor)
		argIdx++
	}

	sortCol := "created_at"
	switch params.Sort {
	case "name":
		sortCol = "name"
	case "status":
		sortCol = "status"
	case "created_at":
		sortCol = "created_at"
	}
	order := "DESC"
	if params.Order == "asc" {
		order = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, sortCol, order)
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, params.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := scanRun(rows, &run); err != nil {
			return nil, false, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate runs: %w", err)
	}

	hasMore := len(runs) > params.Limit
	if hasMore {
		runs = runs[:params.Limit]
	}
	return runs, hasMore, nil
}

// Resume re-drives a run that stopped short of success: partial, failed,
// and cancelled runs restart their workflow and skip the stages that
// already succeeded. A run whose workflow is still executing is rejected
// with ErrRunInFlight; a succeeded run with ErrRunFinished.
func (s *RunService) Resume(ctx context.Context, id string) (*model.Run, error) {
	run, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status == model.RunStatusSucceeded {
		return nil, fmt.Errorf("%w: run %s already succeeded", ErrRunFinished, id)
	}
	if err := s.start(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Cancel requests cancellation of a run's workflow. The workflow honors the
// request at the next stage boundary; any backend call already in flight
// completes first.
func (s *RunService) Cancel(ctx context.Context, id string) error {
	run, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if model.IsTerminal(run.Status) {
		return fmt.Errorf("%w: run %s is %s", ErrRunFinished, id, run.Status)
	}
	if err := s.tc.CancelWorkflow(ctx, workflowID("provision-dc", run.ID), ""); err != nil {
		return fmt.Errorf("cancel run %s: %w", id, err)
	}
	return nil
}
