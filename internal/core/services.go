package core

import (
	temporalclient "go.temporal.io/sdk/client"

	"github.com/netobs/dc-catalog/internal/catalog"
	"github.com/netobs/dc-catalog/internal/infrahub"
)

type Services struct {
	Run     *RunService
	Catalog *CatalogService
	APIKey  *APIKeyService
}

func NewServices(db DB, tc temporalclient.Client, client *infrahub.Client, defaults catalog.Defaults, cfg RunConfig) *Services {
	return &Services{
		Run:     NewRunService(db, tc, defaults, cfg),
		Catalog: NewCatalogService(client, defaults),
		APIKey:  NewAPIKeyService(db),
	}
}
