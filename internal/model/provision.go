package model

import "time"

// ProvisionWorkflowName is the registered name of the data center
// provisioning workflow. Services start it by name so the API binary does
// not link the workflow code.
const ProvisionWorkflowName = "ProvisionDataCenterWorkflow"

// ProvisionParams is the argument passed to the provisioning workflow.
// The poll knobs are captured from config at submit time so a config change
// never alters the behavior of a workflow that is already executing.
type ProvisionParams struct {
	RunID         string        `json:"run_id"`
	DefaultBranch string        `json:"default_branch"`
	PollInterval  time.Duration `json:"poll_interval"`
	PollDeadline  time.Duration `json:"poll_deadline"`
}
