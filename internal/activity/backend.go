package activity

import (
	"context"

	"go.temporal.io/sdk/temporal"

	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/infrahub"
	"github.com/netobs/dc-catalog/internal/model"
)

// Backend contains activities that call the Infrahub graph backend.
//
// The client retries transient failures internally up to its configured
// bound, so every error leaving these activities is final: it is returned as
// a non-retryable ApplicationError whose type carries the error kind the
// workflow records.
//   - network error / 5xx after exhaustion → kind "transient_backend"
//   - 4xx / GraphQL application error → kind "non_retryable_backend"
type Backend struct {
	client   *infrahub.Client
	defaults catalog.Defaults
}

// NewBackend creates a new Backend activity struct.
func NewBackend(client *infrahub.Client, defaults catalog.Defaults) *Backend {
	return &Backend{client: client, defaults: defaults}
}

func backendError(err error) error {
	kind := model.ErrKindNonRetryable
	if infrahub.IsRetryable(err) {
		kind = model.ErrKindTransient
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), kind, err)
}

// CreateBranchParams holds parameters for the CreateBranch activity.
type CreateBranchParams struct {
	Name string `json:"name"`
}

// CreateBranch creates the run's branch. Safe to repeat: an existing branch
// with the same name counts as success.
func (a *Backend) CreateBranch(ctx context.Context, params CreateBranchParams) (string, error) {
	ref, err := a.client.CreateBranch(ctx, params.Name)
	if err != nil {
		return "", backendError(err)
	}
	return ref.Name, nil
}

// LoadDataCenterParams holds parameters for the LoadDataCenter activity.
type LoadDataCenterParams struct {
	Branch  string                  `json:"branch"`
	Request model.DataCenterRequest `json:"request"`
}

// LoadDataCenter upserts the data center node on the run's branch and returns
// its object ID. Group membership falls back to the catalog defaults when the
// request names none.
func (a *Backend) LoadDataCenter(ctx context.Context, params LoadDataCenterParams) (string, error) {
	groups := params.Request.MemberGroups
	if len(groups) == 0 {
		groups = a.defaults.MemberGroups
	}
	ref, err := a.client.CreateDataCenter(ctx, params.Branch, infrahub.DataCenterInput{
		Name:             params.Request.Name,
		Description:      params.Request.Description,
		Strategy:         params.Request.Strategy,
		Emulation:        params.Request.Emulation,
		Location:         params.Request.Location,
		Provider:         params.Request.Provider,
		Design:           params.Request.Design,
		ManagementSubnet: params.Request.ManagementSubnet,
		CustomerSubnet:   params.Request.CustomerSubnet,
		TechnicalSubnet:  params.Request.TechnicalSubnet,
		MemberGroups:     groups,
	})
	if err != nil {
		return "", backendError(err)
	}
	return ref.ID, nil
}

// ExpectedDeviceCountParams holds parameters for the ExpectedDeviceCount activity.
type ExpectedDeviceCountParams struct {
	Design string `json:"design"`
}

// ExpectedDeviceCount returns the device total the design generates. Zero
// means the design is unknown and the caller should fall back to a weaker
// completion check.
func (a *Backend) ExpectedDeviceCount(ctx context.Context, params ExpectedDeviceCountParams) (int, error) {
	count, err := a.client.DesignDeviceCount(ctx, params.Design)
	if err != nil {
		return 0, backendError(err)
	}
	return count, nil
}

// CountDevicesParams holds parameters for the CountDevices activity.
type CountDevicesParams struct {
	Branch   string `json:"branch"`
	Topology string `json:"topology"`
}

// CountDevices returns the number of devices generated so far for the
// topology on the run's branch.
func (a *Backend) CountDevices(ctx context.Context, params CountDevicesParams) (int, error) {
	count, err := a.client.CountTopologyDevices(ctx, params.Branch, params.Topology)
	if err != nil {
		return 0, backendError(err)
	}
	return count, nil
}

// CreateProposedChangeParams holds parameters for the CreateProposedChange activity.
type CreateProposedChangeParams struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	SourceBranch      string `json:"source_branch"`
	DestinationBranch string `json:"destination_branch"`
}

// CreateProposedChange opens the review request merging the run's branch into
// the destination branch and returns its reference.
func (a *Backend) CreateProposedChange(ctx context.Context, params CreateProposedChangeParams) (*infrahub.ChangeRef, error) {
	change, err := a.client.CreateProposedChange(ctx, infrahub.ProposedChangeInput{
		Name:              params.Name,
		Description:       params.Description,
		SourceBranch:      params.SourceBranch,
		DestinationBranch: params.DestinationBranch,
	})
	if err != nil {
		return nil, backendError(err)
	}
	return &change, nil
}
