package infrahub

import (
	"context"
	"fmt"
)

const branchCreateMutation = `
mutation BranchCreate($name: String!) {
  BranchCreate(data: {name: $name, sync_with_git: false}) {
    ok
    object {
      id
      name
    }
  }
}`

// CreateBranch creates a named branch off the default branch. Creation is
// idempotent: a branch that already exists is treated as success and returned
// by name.
func (c *Client) CreateBranch(ctx context.Context, name string) (BranchRef, error) {
	var out struct {
		BranchCreate struct {
			Object BranchRef `json:"object"`
		} `json:"BranchCreate"`
	}
	err := c.execute(ctx, c.defaultBranch, branchCreateMutation, map[string]any{"name": name}, &out)
	if err != nil {
		if isAlreadyExists(err) {
			c.logger.Debug().Str("branch", name).Msg("branch already exists, reusing")
			return BranchRef{Name: name}, nil
		}
		return BranchRef{}, fmt.Errorf("create branch %q: %w", name, err)
	}
	ref := out.BranchCreate.Object
	if ref.Name == "" {
		ref.Name = name
	}
	return ref, nil
}

// DataCenterInput carries the resolved values for a data center upsert.
// Location, Provider, Design and the subnet fields reference existing nodes
// by ID or human-friendly ID.
type DataCenterInput struct {
	Name             string
	Description      string
	Strategy         string
	Emulation        bool
	Location         string
	Provider         string
	Design           string
	ManagementSubnet string
	CustomerSubnet   string
	TechnicalSubnet  string
	MemberGroups     []string
}

const dataCenterUpsertMutation = `
mutation DataCenterUpsert($data: TopologyDataCenterUpsertInput!) {
  TopologyDataCenterUpsert(data: $data) {
    ok
    object {
      id
    }
  }
}`

// CreateDataCenter upserts the data center node on the given branch and
// returns its ID. Upsert keeps the call safe to repeat on resume.
func (c *Client) CreateDataCenter(ctx context.Context, branch string, in DataCenterInput) (ObjectRef, error) {
	data := map[string]any{
		"name":       map[string]any{"value": in.Name},
		"strategy":   map[string]any{"value": in.Strategy},
		"emulation":  map[string]any{"value": in.Emulation},
		"location":   map[string]any{"id": in.Location},
		"provider":   map[string]any{"id": in.Provider},
		"design":     map[string]any{"id": in.Design},
		"management": map[string]any{"id": in.ManagementSubnet},
		"customer":   map[string]any{"id": in.CustomerSubnet},
		"technical":  map[string]any{"id": in.TechnicalSubnet},
	}
	if in.Description != "" {
		data["description"] = map[string]any{"value": in.Description}
	}
	if len(in.MemberGroups) > 0 {
		groups := make([]map[string]any, 0, len(in.MemberGroups))
		for _, g := range in.MemberGroups {
			groups = append(groups, map[string]any{"id": g})
		}
		data["member_of_groups"] = groups
	}

	var out struct {
		TopologyDataCenterUpsert struct {
			Object ObjectRef `json:"object"`
		} `json:"TopologyDataCenterUpsert"`
	}
	if err := c.execute(ctx, branch, dataCenterUpsertMutation, map[string]any{"data": data}, &out); err != nil {
		return ObjectRef{}, fmt.Errorf("upsert data center %q on %s: %w", in.Name, branch, err)
	}
	return out.TopologyDataCenterUpsert.Object, nil
}

// ProposedChangeInput describes a review request merging a source branch into
// a destination branch.
type ProposedChangeInput struct {
	Name              string
	Description       string
	SourceBranch      string
	DestinationBranch string
}

const proposedChangeCreateMutation = `
mutation ProposedChangeCreate($data: CoreProposedChangeCreateInput!) {
  CoreProposedChangeCreate(data: $data) {
    ok
    object {
      id
    }
  }
}`

// CreateProposedChange opens a proposed change and returns its ID together
// with the review URL.
func (c *Client) CreateProposedChange(ctx context.Context, in ProposedChangeInput) (ChangeRef, error) {
	data := map[string]any{
		"name":               map[string]any{"value": in.Name},
		"description":        map[string]any{"value": in.Description},
		"source_branch":      map[string]any{"value": in.SourceBranch},
		"destination_branch": map[string]any{"value": in.DestinationBranch},
	}
	var out struct {
		CoreProposedChangeCreate struct {
			Object ObjectRef `json:"object"`
		} `json:"CoreProposedChangeCreate"`
	}
	if err := c.execute(ctx, c.defaultBranch, proposedChangeCreateMutation, map[string]any{"data": data}, &out); err != nil {
		return ChangeRef{}, fmt.Errorf("create proposed change %q: %w", in.Name, err)
	}
	id := out.CoreProposedChangeCreate.Object.ID
	return ChangeRef{ID: id, URL: c.ProposedChangeURL(id)}, nil
}
