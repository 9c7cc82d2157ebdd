package workflow

import (
	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/testsuite"

	"github.com/netobs/dc-catalog/internal/activity"
	"github.com/netobs/dc-catalog/internal/model"
)

// registerActivities registers activity structs with the test workflow
// environment so that parameter and return types can be deserialized
// correctly by the Temporal test framework. In unit tests, all activities are
// mocked via OnActivity, but the framework still needs the type information
// for proper serialization/deserialization of activity parameters and return
// values.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.CatalogDB{})
	env.RegisterActivity(&activity.Backend{})
}

const testRunID = "test-run-1"

func testRequest() model.DataCenterRequest {
	return model.DataCenterRequest{
		Name:     "dc-east-1",
		Location: "atlanta",
		Provider: "Equinix",
		Design:   "small-fabric",
		Strategy: model.StrategyOSPFIBGP,
	}
}

// testSnapshot builds a run snapshot with the given stages already succeeded.
func testSnapshot(status string, succeededStages ...string) *activity.RunSnapshot {
	req := testRequest()
	snap := &activity.RunSnapshot{
		Run: model.Run{
			ID:         testRunID,
			Name:       req.Name,
			BranchName: req.BranchName(),
			Request:    req,
			Status:     status,
		},
	}
	for _, stage := range succeededStages {
		snap.Stages = append(snap.Stages, model.StageRecord{
			RunID:  testRunID,
			Stage:  stage,
			Status: model.StageStatusSucceeded,
		})
	}
	return snap
}

// matchStageFailed matches MarkStageFailedParams by stage and error kind. The
// message carries Temporal wrapping that is not predictable in tests.
func matchStageFailed(stage, kind string) interface{} {
	return mock.MatchedBy(func(params activity.MarkStageFailedParams) bool {
		return params.RunID == testRunID &&
			params.Stage == stage &&
			params.ErrorKind == kind &&
			params.ErrorMessage != ""
	})
}

// matchCompleteRun matches CompleteRunParams by terminal status and error kind.
func matchCompleteRun(status, kind string) interface{} {
	return mock.MatchedBy(func(params activity.CompleteRunParams) bool {
		return params.RunID == testRunID &&
			params.Status == status &&
			params.ErrorKind == kind
	})
}

// matchStageSucceeded matches MarkStageSucceededParams by stage alone.
func matchStageSucceeded(stage string) interface{} {
	return mock.MatchedBy(func(params activity.MarkStageSucceededParams) bool {
		return params.RunID == testRunID && params.Stage == stage
	})
}
