package workflow

import (
	"fmt"
	"strconv"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/netobs/dc-catalog/internal/activity"
	"github.com/netobs/dc-catalog/internal/infrahub"
	"github.com/netobs/dc-catalog/internal/model"
)

// ProvisionDataCenterWorkflow drives one provisioning run through its four
// stages: create the branch, load the data center object, wait for device
// generation, open the proposed change.
//
// The run record is the source of truth. On start the workflow loads the
// run's stage records and skips every stage that already succeeded, so
// resuming a partial or failed run repeats no completed backend work.
//
// Terminal outcomes:
//   - all stages succeed → run succeeded, workflow returns nil
//   - generation deadline passes, or the proposal stage fails → run partial,
//     workflow returns nil (the run is resumable, not broken)
//   - any other stage error → run failed, workflow returns the error
//   - cancellation is honored between stages; the in-flight call finishes
func ProvisionDataCenterWorkflow(ctx workflow.Context, params model.ProvisionParams) error {
	logger := workflow.GetLogger(ctx)

	if params.PollInterval <= 0 {
		params.PollInterval = 10 * time.Second
	}
	if params.PollDeadline <= 0 {
		params.PollDeadline = 5 * time.Minute
	}
	if params.DefaultBranch == "" {
		params.DefaultBranch = "main"
	}

	storeCtx := storeActivityCtx(ctx)
	backendCtx := backendActivityCtx(ctx)

	var snapshot activity.RunSnapshot
	if err := workflow.ExecuteActivity(storeCtx, "GetRunSnapshot", params.RunID).Get(ctx, &snapshot); err != nil {
		return fmt.Errorf("load run %s: %w", params.RunID, err)
	}
	run := snapshot.Run

	if run.Status == model.RunStatusSucceeded {
		logger.Info("run already succeeded, nothing to do", "run_id", run.ID)
		return nil
	}

	done := func(stage string) bool {
		return model.StageStatusOf(snapshot.Stages, stage) == model.StageStatusSucceeded
	}

	// Stage 1: create the branch.
	if done(model.StageBranch) {
		logger.Info("branch stage already complete, skipping", "run_id", run.ID, "branch", run.BranchName)
	} else {
		if err := beginStage(storeCtx, run.ID, model.StageBranch); err != nil {
			return err
		}
		var branch string
		err := workflow.ExecuteActivity(backendCtx, "CreateBranch", activity.CreateBranchParams{
			Name: run.BranchName,
		}).Get(ctx, &branch)
		if err != nil {
			return failRun(ctx, storeCtx, run.ID, model.StageBranch, err)
		}
		if err := finishStage(storeCtx, activity.MarkStageSucceededParams{
			RunID: run.ID, Stage: model.StageBranch, OutputRef: branch,
		}); err != nil {
			return err
		}
		logger.Info("branch created", "run_id", run.ID, "branch", branch)
	}

	if ctx.Err() != nil {
		return cancelRun(ctx, run.ID, model.StageDataLoad)
	}

	// Stage 2: load the data center object.
	if done(model.StageDataLoad) {
		logger.Info("data load stage already complete, skipping", "run_id", run.ID, "object_id", run.ObjectID)
	} else {
		if err := beginStage(storeCtx, run.ID, model.StageDataLoad); err != nil {
			return err
		}
		var objectID string
		err := workflow.ExecuteActivity(backendCtx, "LoadDataCenter", activity.LoadDataCenterParams{
			Branch:  run.BranchName,
			Request: run.Request,
		}).Get(ctx, &objectID)
		if err != nil {
			return failRun(ctx, storeCtx, run.ID, model.StageDataLoad, err)
		}
		if err := finishStage(storeCtx, activity.MarkStageSucceededParams{
			RunID: run.ID, Stage: model.StageDataLoad, OutputRef: objectID,
		}); err != nil {
			return err
		}
		logger.Info("data center loaded", "run_id", run.ID, "object_id", objectID)
	}

	if ctx.Err() != nil {
		return cancelRun(ctx, run.ID, model.StageGeneration)
	}

	// Stage 3: wait for device generation.
	if done(model.StageGeneration) {
		logger.Info("generation stage already complete, skipping", "run_id", run.ID)
	} else {
		if err := beginStage(storeCtx, run.ID, model.StageGeneration); err != nil {
			return err
		}
		start := workflow.Now(ctx)
		count, err := waitForGeneration(ctx, backendCtx, run, params.PollInterval, params.PollDeadline)
		if err != nil {
			switch errorKind(err) {
			case model.ErrKindTimeout:
				// Branch and data are durable. The run parks as partial and a
				// resume continues waiting where this run left off.
				_ = failStage(storeCtx, run.ID, model.StageGeneration, model.ErrKindTimeout, err.Error())
				_ = completeRun(storeCtx, activity.CompleteRunParams{
					RunID:        run.ID,
					Status:       model.RunStatusPartial,
					CurrentStage: model.StageGeneration,
					ErrorKind:    model.ErrKindTimeout,
					ErrorMessage: err.Error(),
				})
				logger.Warn("generation deadline exceeded, run parked as partial", "run_id", run.ID, "count", count)
				return nil
			case model.ErrKindCancelled:
				return cancelRunInStage(ctx, run.ID, model.StageGeneration)
			default:
				return failRun(ctx, storeCtx, run.ID, model.StageGeneration, err)
			}
		}
		elapsed := workflow.Now(ctx).Sub(start)
		if err := finishStage(storeCtx, activity.MarkStageSucceededParams{
			RunID:          run.ID,
			Stage:          model.StageGeneration,
			OutputRef:      strconv.Itoa(count),
			ElapsedSeconds: elapsed.Seconds(),
		}); err != nil {
			return err
		}
		logger.Info("device generation complete", "run_id", run.ID, "count", count, "waited", elapsed)
	}

	if ctx.Err() != nil {
		return cancelRun(ctx, run.ID, model.StageProposal)
	}

	// Stage 4: open the proposed change. Any failure here leaves the run
	// partial: everything up to the review request exists and a resume only
	// repeats this stage.
	if !done(model.StageProposal) {
		if err := beginStage(storeCtx, run.ID, model.StageProposal); err != nil {
			return err
		}
		var change infrahub.ChangeRef
		err := workflow.ExecuteActivity(backendCtx, "CreateProposedChange", activity.CreateProposedChangeParams{
			Name:              run.Request.ProposedChangeTitle(),
			Description:       run.Request.ProposedChangeDescription(),
			SourceBranch:      run.BranchName,
			DestinationBranch: params.DefaultBranch,
		}).Get(ctx, &change)
		if err != nil {
			kind := errorKind(err)
			if kind == model.ErrKindCancelled {
				return cancelRunInStage(ctx, run.ID, model.StageProposal)
			}
			_ = failStage(storeCtx, run.ID, model.StageProposal, kind, err.Error())
			_ = completeRun(storeCtx, activity.CompleteRunParams{
				RunID:        run.ID,
				Status:       model.RunStatusPartial,
				CurrentStage: model.StageProposal,
				ErrorKind:    kind,
				ErrorMessage: err.Error(),
			})
			logger.Warn("proposed change creation failed, run parked as partial", "run_id", run.ID, "error", err)
			return nil
		}
		if err := finishStage(storeCtx, activity.MarkStageSucceededParams{
			RunID: run.ID, Stage: model.StageProposal, OutputRef: change.ID, OutputURL: change.URL,
		}); err != nil {
			return err
		}
		logger.Info("proposed change created", "run_id", run.ID, "proposed_change", change.ID, "url", change.URL)
	}

	if err := completeRun(storeCtx, activity.CompleteRunParams{
		RunID:        run.ID,
		Status:       model.RunStatusSucceeded,
		CurrentStage: model.StageProposal,
	}); err != nil {
		return err
	}
	logger.Info("provisioning run succeeded", "run_id", run.ID)
	return nil
}

// waitForGeneration polls the backend until device generation for the run's
// topology completes. The first check is immediate, then one per interval
// until the deadline; the last check happens at the deadline itself.
//
// Completion is an exact match against the design's expected device count. An
// unknown design (expected count zero) degrades to waiting for any device to
// appear. More devices than the design generates means the branch holds
// objects this run did not create, which no amount of waiting fixes, so the
// overshoot is reported as a non-retryable error. Transient poll failures are
// absorbed: the next tick simply asks again.
func waitForGeneration(ctx workflow.Context, backendCtx workflow.Context, run model.Run, interval, deadline time.Duration) (int, error) {
	logger := workflow.GetLogger(ctx)

	var expected int
	err := workflow.ExecuteActivity(backendCtx, "ExpectedDeviceCount", activity.ExpectedDeviceCountParams{
		Design: run.Request.Design,
	}).Get(ctx, &expected)
	if err != nil {
		return 0, err
	}
	if expected == 0 {
		logger.Warn("design has no expected device count, waiting for any device",
			"run_id", run.ID, "design", run.Request.Design)
	}

	stopAt := workflow.Now(ctx).Add(deadline)
	count := 0
	for {
		var n int
		err := workflow.ExecuteActivity(backendCtx, "CountDevices", activity.CountDevicesParams{
			Branch:   run.BranchName,
			Topology: run.Request.Name,
		}).Get(ctx, &n)
		switch {
		case err == nil:
			count = n
			if expected > 0 && n > expected {
				return n, temporal.NewApplicationError(
					fmt.Sprintf("generated %d devices where design %q expects %d", n, run.Request.Design, expected),
					model.ErrKindNonRetryable)
			}
			if (expected > 0 && n == expected) || (expected == 0 && n > 0) {
				return n, nil
			}
			logger.Debug("generation incomplete", "run_id", run.ID, "count", n, "expected", expected)
		case errorKind(err) == model.ErrKindTransient:
			logger.Warn("device count poll failed", "run_id", run.ID, "error", err)
		default:
			return count, err
		}

		if !workflow.Now(ctx).Before(stopAt) {
			return count, temporal.NewApplicationError(
				fmt.Sprintf("generation incomplete after %s: %d of %d devices", deadline, count, expected),
				model.ErrKindTimeout)
		}
		if err := workflow.Sleep(ctx, interval); err != nil {
			return count, err
		}
	}
}

// failRun records the stage failure and the run's failed status, then
// returns the stage error so the workflow itself fails.
func failRun(ctx workflow.Context, storeCtx workflow.Context, runID, stage string, err error) error {
	kind := errorKind(err)
	if kind == model.ErrKindCancelled {
		return cancelRunInStage(ctx, runID, stage)
	}
	_ = failStage(storeCtx, runID, stage, kind, err.Error())
	_ = completeRun(storeCtx, activity.CompleteRunParams{
		RunID:        runID,
		Status:       model.RunStatusFailed,
		CurrentStage: stage,
		ErrorKind:    kind,
		ErrorMessage: err.Error(),
	})
	return err
}
