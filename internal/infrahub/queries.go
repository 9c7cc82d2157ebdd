package infrahub

import (
	"context"
	"fmt"
)

// Paginated query envelopes. Infrahub wraps every node list in edges/node and
// exposes a total count alongside.

type nodeEdge[T any] struct {
	Node T `json:"node"`
}

type paged[T any] struct {
	Count int           `json:"count"`
	Edges []nodeEdge[T] `json:"edges"`
}

const topologyDeviceCountQuery = `
query TopologyDeviceCount($topology: String!) {
  DcimPhysicalDevice(topology__name__value: $topology) {
    count
  }
}`

// CountTopologyDevices returns how many devices exist on the given branch for
// one topology. The generator creates these asynchronously, so the count
// climbs toward the design total while generation runs.
func (c *Client) CountTopologyDevices(ctx context.Context, branch, topology string) (int, error) {
	var out struct {
		Devices paged[struct{}] `json:"DcimPhysicalDevice"`
	}
	vars := map[string]any{"topology": topology}
	if err := c.execute(ctx, branch, topologyDeviceCountQuery, vars, &out); err != nil {
		return 0, fmt.Errorf("count devices for %q on %s: %w", topology, branch, err)
	}
	return out.Devices.Count, nil
}

const designDeviceCountQuery = `
query DesignDeviceCount($name: String!) {
  DesignTopology(name__value: $name) {
    edges {
      node {
        elements {
          edges {
            node {
              quantity {
                value
              }
            }
          }
        }
      }
    }
  }
}`

// DesignDeviceCount returns the total device quantity across the named
// design's elements. An unknown design yields zero without error so callers
// can degrade to a weaker completion check.
func (c *Client) DesignDeviceCount(ctx context.Context, design string) (int, error) {
	type elementNode struct {
		Quantity intValue `json:"quantity"`
	}
	type designNode struct {
		Elements paged[elementNode] `json:"elements"`
	}
	var out struct {
		Designs paged[designNode] `json:"DesignTopology"`
	}
	vars := map[string]any{"name": design}
	if err := c.execute(ctx, c.defaultBranch, designDeviceCountQuery, vars, &out); err != nil {
		return 0, fmt.Errorf("get design device count for %q: %w", design, err)
	}
	total := 0
	for _, d := range out.Designs.Edges {
		for _, e := range d.Node.Elements.Edges {
			total += e.Node.Quantity.Value
		}
	}
	return total, nil
}

type locationNode struct {
	ID   string    `json:"id"`
	Name textValue `json:"name"`
}

const locationsQuery = `
query Locations {
  LocationMetro {
    edges {
      node {
        id
        name {
          value
        }
      }
    }
  }
}`

// ListLocations returns the metro locations data centers can be placed in.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	var out struct {
		Locations paged[locationNode] `json:"LocationMetro"`
	}
	if err := c.execute(ctx, c.defaultBranch, locationsQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	locations := make([]Location, 0, len(out.Locations.Edges))
	for _, e := range out.Locations.Edges {
		locations = append(locations, Location{ID: e.Node.ID, Name: e.Node.Name.Value})
	}
	return locations, nil
}

const providersQuery = `
query Providers {
  OrganizationProvider {
    edges {
      node {
        id
        name {
          value
        }
      }
    }
  }
}`

// ListProviders returns the organizations that can host a data center.
func (c *Client) ListProviders(ctx context.Context) ([]Provider, error) {
	var out struct {
		Providers paged[locationNode] `json:"OrganizationProvider"`
	}
	if err := c.execute(ctx, c.defaultBranch, providersQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	providers := make([]Provider, 0, len(out.Providers.Edges))
	for _, e := range out.Providers.Edges {
		providers = append(providers, Provider{ID: e.Node.ID, Name: e.Node.Name.Value})
	}
	return providers, nil
}

const designsQuery = `
query Designs {
  DesignTopology {
    edges {
      node {
        id
        name {
          value
        }
        elements {
          edges {
            node {
              name {
                value
              }
              role {
                value
              }
              quantity {
                value
              }
              device_type {
                node {
                  display_label
                }
              }
            }
          }
        }
      }
    }
  }
}`

// ListDesigns returns the fabric designs together with their elements, so
// callers can show per-design device totals.
func (c *Client) ListDesigns(ctx context.Context) ([]Design, error) {
	type elementNode struct {
		Name       textValue   `json:"name"`
		Role       textValue   `json:"role"`
		Quantity   intValue    `json:"quantity"`
		DeviceType relatedNode `json:"device_type"`
	}
	type designNode struct {
		ID       string             `json:"id"`
		Name     textValue          `json:"name"`
		Elements paged[elementNode] `json:"elements"`
	}
	var out struct {
		Designs paged[designNode] `json:"DesignTopology"`
	}
	if err := c.execute(ctx, c.defaultBranch, designsQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	designs := make([]Design, 0, len(out.Designs.Edges))
	for _, e := range out.Designs.Edges {
		d := Design{ID: e.Node.ID, Name: e.Node.Name.Value}
		for _, el := range e.Node.Elements.Edges {
			d.Elements = append(d.Elements, DesignElement{
				Name:       el.Node.Name.Value,
				Role:       el.Node.Role.Value,
				DeviceType: el.Node.DeviceType.Node.DisplayLabel,
				Quantity:   el.Node.Quantity.Value,
			})
		}
		designs = append(designs, d)
	}
	return designs, nil
}

const activePrefixesQuery = `
query ActivePrefixes {
  IpamPrefix(status__value: "active") {
    edges {
      node {
        id
        prefix {
          value
        }
        role {
          value
        }
      }
    }
  }
}`

// ListActivePrefixes returns the prefixes available for subnet assignment.
func (c *Client) ListActivePrefixes(ctx context.Context) ([]Prefix, error) {
	type prefixNode struct {
		ID     string    `json:"id"`
		Prefix textValue `json:"prefix"`
		Role   textValue `json:"role"`
	}
	var out struct {
		Prefixes paged[prefixNode] `json:"IpamPrefix"`
	}
	if err := c.execute(ctx, c.defaultBranch, activePrefixesQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list active prefixes: %w", err)
	}
	prefixes := make([]Prefix, 0, len(out.Prefixes.Edges))
	for _, e := range out.Prefixes.Edges {
		prefixes = append(prefixes, Prefix{ID: e.Node.ID, Prefix: e.Node.Prefix.Value, Role: e.Node.Role.Value})
	}
	return prefixes, nil
}

const dataCentersQuery = `
query DataCenters {
  TopologyDataCenter {
    edges {
      node {
        id
        name {
          value
        }
        description {
          value
        }
        strategy {
          value
        }
        emulation {
          value
        }
        location {
          node {
            display_label
          }
        }
        provider {
          node {
            display_label
          }
        }
      }
    }
  }
}`

// ListDataCenters returns the data centers known on the default branch.
func (c *Client) ListDataCenters(ctx context.Context) ([]DataCenter, error) {
	type dcNode struct {
		ID          string      `json:"id"`
		Name        textValue   `json:"name"`
		Description textValue   `json:"description"`
		Strategy    textValue   `json:"strategy"`
		Emulation   boolValue   `json:"emulation"`
		Location    relatedNode `json:"location"`
		Provider    relatedNode `json:"provider"`
	}
	var out struct {
		DataCenters paged[dcNode] `json:"TopologyDataCenter"`
	}
	if err := c.execute(ctx, c.defaultBranch, dataCentersQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list data centers: %w", err)
	}
	dcs := make([]DataCenter, 0, len(out.DataCenters.Edges))
	for _, e := range out.DataCenters.Edges {
		dcs = append(dcs, DataCenter{
			ID:          e.Node.ID,
			Name:        e.Node.Name.Value,
			Description: e.Node.Description.Value,
			Strategy:    e.Node.Strategy.Value,
			Emulation:   e.Node.Emulation.Value,
			Location:    e.Node.Location.Node.DisplayLabel,
			Provider:    e.Node.Provider.Node.DisplayLabel,
		})
	}
	return dcs, nil
}

const proposedChangesQuery = `
query ProposedChanges {
  CoreProposedChange {
    edges {
      node {
        id
        name {
          value
        }
        source_branch {
          value
        }
        destination_branch {
          value
        }
        state {
          value
        }
      }
    }
  }
}`

// ListProposedChanges returns open and closed proposed changes with their
// review URLs.
func (c *Client) ListProposedChanges(ctx context.Context) ([]ProposedChange, error) {
	type pcNode struct {
		ID                string    `json:"id"`
		Name              textValue `json:"name"`
		SourceBranch      textValue `json:"source_branch"`
		DestinationBranch textValue `json:"destination_branch"`
		State             textValue `json:"state"`
	}
	var out struct {
		Changes paged[pcNode] `json:"CoreProposedChange"`
	}
	if err := c.execute(ctx, c.defaultBranch, proposedChangesQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list proposed changes: %w", err)
	}
	changes := make([]ProposedChange, 0, len(out.Changes.Edges))
	for _, e := range out.Changes.Edges {
		changes = append(changes, ProposedChange{
			ID:                e.Node.ID,
			Name:              e.Node.Name.Value,
			SourceBranch:      e.Node.SourceBranch.Value,
			DestinationBranch: e.Node.DestinationBranch.Value,
			State:             e.Node.State.Value,
			URL:               c.ProposedChangeURL(e.Node.ID),
		})
	}
	return changes, nil
}
