package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/infrahub"
)

// CatalogService serves read-only catalog data from the graph backend.
// Everything is read on the default branch: listings reflect reviewed state,
// never the contents of in-flight provisioning branches.
type CatalogService struct {
	client   *infrahub.Client
	defaults catalog.Defaults
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(client *infrahub.Client, defaults catalog.Defaults) *CatalogService {
	return &CatalogService{client: client, defaults: defaults}
}

// FormOptions is the reference data a provisioning form is populated from.
type FormOptions struct {
	Locations  []infrahub.Location `json:"locations"`
	Providers  []infrahub.Provider `json:"providers"`
	Designs    []infrahub.Design   `json:"designs"`
	Prefixes   []infrahub.Prefix   `json:"prefixes"`
	Strategies []string            `json:"strategies"`
}

// FormOptions fetches the locations, providers, designs, and active prefixes
// from the backend in parallel. Strategies come from the catalog defaults.
func (s *CatalogService) FormOptions(ctx context.Context) (*FormOptions, error) {
	opts := &FormOptions{Strategies: s.defaults.Strategies}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Locations, err = s.client.ListLocations(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Providers, err = s.client.ListProviders(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Designs, err = s.client.ListDesigns(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Prefixes, err = s.client.ListActivePrefixes(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load catalog options: %w", err)
	}
	return opts, nil
}

// ListDataCenters returns the data center topologies known to the backend.
func (s *CatalogService) ListDataCenters(ctx context.Context) ([]infrahub.DataCenter, error) {
	return s.client.ListDataCenters(ctx)
}

// ListProposedChanges returns the proposed changes known to the backend.
func (s *CatalogService) ListProposedChanges(ctx context.Context) ([]infrahub.ProposedChange, error) {
	return s.client.ListProposedChanges(ctx)
}
