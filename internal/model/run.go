package model

import "time"

// Run is the persisted record of one provisioning attempt. It is created when
// a request is accepted and from then on mutated only by the workflow driving
// it, one stage at a time; everyone else reads snapshots.
type Run struct {
	ID                string            `json:"id" db:"id"`
	Name              string            `json:"name" db:"name"`
	BranchName        string            `json:"branch_name" db:"branch_name"`
	Request           DataCenterRequest `json:"request" db:"request"`
	Status            string            `json:"status" db:"status"`
	CurrentStage      string            `json:"current_stage" db:"current_stage"`
	ObjectID          string            `json:"object_id,omitempty" db:"object_id"`
	ProposedChangeID  string            `json:"proposed_change_id,omitempty" db:"proposed_change_id"`
	ProposedChangeURL string            `json:"proposed_change_url,omitempty" db:"proposed_change_url"`
	ErrorKind         string            `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage      string            `json:"error_message,omitempty" db:"error_message"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
}

// StageRecord is the per-stage bookkeeping row for a run.
type StageRecord struct {
	RunID        string     `json:"run_id" db:"run_id"`
	Stage        string     `json:"stage" db:"stage"`
	Status       string     `json:"status" db:"status"`
	OutputRef    string     `json:"output_ref,omitempty" db:"output_ref"`
	ErrorKind    string     `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// RunDetail is a run together with its stage records and the summarized
// outcome, as served by the run detail endpoint.
type RunDetail struct {
	Run     Run           `json:"run"`
	Stages  []StageRecord `json:"stages"`
	Outcome Outcome       `json:"outcome"`
}

// StageStatusOf returns the recorded status for a stage, defaulting to
// pending when the run has no record for it yet.
func StageStatusOf(stages []StageRecord, stage string) string {
	for _, s := range stages {
		if s.Stage == stage {
			return s.Status
		}
	}
	return StageStatusPending
}

// LastSucceededStage returns the latest stage (in execution order) marked
// succeeded, or "" if none has succeeded.
func LastSucceededStage(stages []StageRecord) string {
	last := ""
	for _, stage := range Stages {
		if StageStatusOf(stages, stage) == StageStatusSucceeded {
			last = stage
		}
	}
	return last
}
