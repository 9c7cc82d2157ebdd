package model

// Workflow stages, in execution order.
const (
	StageBranch     = "branch"
	StageDataLoad   = "data_load"
	StageGeneration = "generation"
	StageProposal   = "proposal"
)

// Stages lists the workflow stages in the order they execute. The workflow
// never runs them in any other order.
var Stages = []string{StageBranch, StageDataLoad, StageGeneration, StageProposal}

// stateNames maps each stage to the state the run is in once that stage has
// succeeded.
var stateNames = map[string]string{
	StageBranch:     "BranchCreated",
	StageDataLoad:   "DataLoaded",
	StageGeneration: "GenerationComplete",
	StageProposal:   "ChangeProposed",
}

// StateName returns the run state reached by completing the given stage.
// Unknown stages map to "Init".
func StateName(stage string) string {
	if s, ok := stateNames[stage]; ok {
		return s
	}
	return "Init"
}

// StageIndex returns the position of a stage in execution order, or -1 for an
// unknown stage.
func StageIndex(stage string) int {
	for i, s := range Stages {
		if s == stage {
			return i
		}
	}
	return -1
}
