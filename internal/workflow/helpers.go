package workflow

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/netobs/dc-catalog/internal/activity"
	"github.com/netobs/dc-catalog/internal/model"
)

// storeActivityCtx returns a workflow context for catalog database
// activities. These are retried by Temporal since the database is expected
// to recover.
func storeActivityCtx(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		WaitForCancellation: true,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	})
}

// backendActivityCtx returns a workflow context for Infrahub activities. The
// client retries transient failures itself within its configured budget, so
// Temporal must not add another retry layer on top.
func backendActivityCtx(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		WaitForCancellation: true,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
}

// errorKind maps an activity error to the error kind recorded on the run.
// Backend activities type their ApplicationErrors with the kind; anything
// untyped (store failures after retry exhaustion, panics) is an internal
// invariant violation.
func errorKind(err error) string {
	if temporal.IsCanceledError(err) {
		return model.ErrKindCancelled
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case model.ErrKindValidation, model.ErrKindTransient, model.ErrKindNonRetryable, model.ErrKindTimeout:
			return appErr.Type()
		}
	}
	return model.ErrKindInvariant
}

// beginStage records that the run entered a stage.
func beginStage(storeCtx workflow.Context, runID, stage string) error {
	return workflow.ExecuteActivity(storeCtx, "BeginStage", activity.BeginStageParams{
		RunID: runID,
		Stage: stage,
	}).Get(storeCtx, nil)
}

// finishStage records a stage's success and its output reference.
func finishStage(storeCtx workflow.Context, params activity.MarkStageSucceededParams) error {
	return workflow.ExecuteActivity(storeCtx, "MarkStageSucceeded", params).Get(storeCtx, nil)
}

// failStage records a stage failure. Callers typically ignore the returned
// error since the stage's own error is more important.
func failStage(storeCtx workflow.Context, runID, stage, kind, msg string) error {
	return workflow.ExecuteActivity(storeCtx, "MarkStageFailed", activity.MarkStageFailedParams{
		RunID:        runID,
		Stage:        stage,
		ErrorKind:    kind,
		ErrorMessage: msg,
	}).Get(storeCtx, nil)
}

// completeRun moves the run to a terminal status.
func completeRun(storeCtx workflow.Context, params activity.CompleteRunParams) error {
	return workflow.ExecuteActivity(storeCtx, "CompleteRun", params).Get(storeCtx, nil)
}

// cancelRun finalizes a run whose cancellation was observed at a stage
// boundary. The bookkeeping runs on a disconnected context because the
// workflow context is already cancelled.
func cancelRun(ctx workflow.Context, runID, nextStage string) error {
	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()
	storeCtx := storeActivityCtx(dctx)
	_ = completeRun(storeCtx, activity.CompleteRunParams{
		RunID:        runID,
		Status:       model.RunStatusCancelled,
		CurrentStage: nextStage,
		ErrorKind:    model.ErrKindCancelled,
		ErrorMessage: "run cancelled before " + nextStage + " stage started",
	})
	return temporal.NewCanceledError("run cancelled")
}

// cancelRunInStage finalizes a run cancelled while a stage was in flight.
// The interrupted stage is marked failed so a resumed run repeats it.
func cancelRunInStage(ctx workflow.Context, runID, stage string) error {
	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()
	storeCtx := storeActivityCtx(dctx)
	_ = failStage(storeCtx, runID, stage, model.ErrKindCancelled, "run cancelled")
	_ = completeRun(storeCtx, activity.CompleteRunParams{
		RunID:        runID,
		Status:       model.RunStatusCancelled,
		CurrentStage: stage,
		ErrorKind:    model.ErrKindCancelled,
		ErrorMessage: "run cancelled during " + stage + " stage",
	})
	return temporal.NewCanceledError("run cancelled")
}
