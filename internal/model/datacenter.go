package model

import (
	"fmt"
	"strings"
)

// Routing strategies accepted for a data center fabric.
const (
	StrategyOSPFIBGP = "ospf-ibgp"
	StrategyISISIBGP = "isis-ibgp"
	StrategyOSPFEBGP = "ospf-ebgp"
)

// DataCenterRequest is the user-supplied specification for a new data center.
// It is stored verbatim on the run so a resumed workflow replays the exact
// payload the caller submitted.
type DataCenterRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Location         string   `json:"location"`
	Strategy         string   `json:"strategy"`
	Design           string   `json:"design"`
	Provider         string   `json:"provider"`
	Emulation        bool     `json:"emulation"`
	ManagementSubnet string   `json:"management_subnet"`
	CustomerSubnet   string   `json:"customer_subnet"`
	TechnicalSubnet  string   `json:"technical_subnet"`
	MemberGroups     []string `json:"member_groups,omitempty"`
}

// Slug returns the request name normalized for use in branch and workflow
// identifiers: lowercased with spaces replaced by dashes.
func (r DataCenterRequest) Slug() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r.Name)), " ", "-")
}

// BranchName derives the backend branch for this request. The name is
// deterministic so a retried or resumed run targets the same branch instead
// of creating a duplicate.
func (r DataCenterRequest) BranchName() string {
	return "add-" + r.Slug()
}

// ProposedChangeTitle returns the display name for the review artifact.
func (r DataCenterRequest) ProposedChangeTitle() string {
	return fmt.Sprintf("Add Data Center: %s", r.Name)
}

// ProposedChangeDescription returns the description for the review artifact.
func (r DataCenterRequest) ProposedChangeDescription() string {
	return fmt.Sprintf("Proposed change to add new data center %s in %s", r.Name, r.Location)
}
