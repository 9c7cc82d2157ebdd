package model

// Run status constants.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// Stage status constants.
const (
	StageStatusPending   = "pending"
	StageStatusRunning   = "running"
	StageStatusSucceeded = "succeeded"
	StageStatusFailed    = "failed"
)

// Error kinds recorded on a run. Backend call failures are classified into
// one of these by the workflow; the API reports them verbatim.
const (
	ErrKindValidation   = "validation"
	ErrKindTransient    = "transient_backend"
	ErrKindNonRetryable = "non_retryable_backend"
	ErrKindTimeout      = "generation_timeout"
	ErrKindInvariant    = "internal_invariant"
	ErrKindCancelled    = "cancelled"
)

// IsTerminal reports whether a run status is one the workflow never leaves on
// its own. Partial, failed, and cancelled runs are terminal but resumable;
// only a succeeded run is terminal for good.
func IsTerminal(status string) bool {
	switch status {
	case RunStatusSucceeded, RunStatusPartial, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// IsResumable reports whether a run in the given status may be re-driven.
func IsResumable(status string) bool {
	switch status {
	case RunStatusPartial, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}
