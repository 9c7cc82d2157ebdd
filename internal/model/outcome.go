package model

// Outcome kinds.
const (
	OutcomeSuccess        = "success"
	OutcomePartialSuccess = "partial_success"
	OutcomeFailure        = "failure"
	OutcomeInProgress     = "in_progress"
)

// Outcome is the caller-facing summary of a run. Exactly one kind is set;
// the other fields are populated according to the kind:
//
//   - success: BranchRef and ChangeRef
//   - partial_success: BranchRef, DataRef when stage 2 completed,
//     LastGoodStage, and a ResumeHint
//   - failure: Stage, ErrorKind, Message
//   - in_progress: CurrentStage
type Outcome struct {
	Kind          string `json:"kind"`
	BranchRef     string `json:"branch_ref,omitempty"`
	DataRef       string `json:"data_ref,omitempty"`
	ChangeRef     string `json:"change_ref,omitempty"`
	ChangeURL     string `json:"change_url,omitempty"`
	LastGoodStage string `json:"last_good_stage,omitempty"`
	ResumeHint    string `json:"resume_hint,omitempty"`
	Stage         string `json:"stage,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
	Message       string `json:"message,omitempty"`
	CurrentStage  string `json:"current_stage,omitempty"`
}

// Summarize maps a run record and its stage records to an Outcome. It is a
// pure function of its inputs: it never consults backend state, so the same
// run always summarizes the same way.
func Summarize(run Run, stages []StageRecord) Outcome {
	switch run.Status {
	case RunStatusSucceeded:
		return Outcome{
			Kind:      OutcomeSuccess,
			BranchRef: run.BranchName,
			ChangeRef: run.ProposedChangeID,
			ChangeURL: run.ProposedChangeURL,
		}

	case RunStatusPartial:
		return Outcome{
			Kind:          OutcomePartialSuccess,
			BranchRef:     run.BranchName,
			DataRef:       run.ObjectID,
			LastGoodStage: StateName(LastSucceededStage(stages)),
			ResumeHint:    resumeHint(run, stages),
		}

	case RunStatusFailed:
		return Outcome{
			Kind:      OutcomeFailure,
			Stage:     run.CurrentStage,
			ErrorKind: run.ErrorKind,
			Message:   run.ErrorMessage,
		}

	case RunStatusCancelled:
		if LastSucceededStage(stages) != "" {
			return Outcome{
				Kind:          OutcomePartialSuccess,
				BranchRef:     run.BranchName,
				DataRef:       run.ObjectID,
				LastGoodStage: StateName(LastSucceededStage(stages)),
				ResumeHint:    "run was cancelled; resume to continue from the last completed stage",
			}
		}
		return Outcome{
			Kind:      OutcomeFailure,
			Stage:     run.CurrentStage,
			ErrorKind: ErrKindCancelled,
			Message:   "run was cancelled before any stage completed",
		}

	default:
		return Outcome{Kind: OutcomeInProgress, CurrentStage: run.CurrentStage}
	}
}

func resumeHint(run Run, stages []StageRecord) string {
	switch {
	case run.ErrorKind == ErrKindTimeout:
		return "generation did not finish before the deadline; resume the run to continue waiting"
	case LastSucceededStage(stages) == StageGeneration:
		return "branch, data, and generated objects exist; resume the run to retry proposed-change creation only"
	default:
		return "resume the run to continue from the last completed stage"
	}
}
