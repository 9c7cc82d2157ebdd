package handler

import (
	"net/http"

	"github.com/netobs/dc-catalog/internal/api/response"
	"github.com/netobs/dc-catalog/internal/core"
)

// Catalog handles the read-only catalog endpoints proxied from the graph
// backend on the default branch.
type Catalog struct {
	svc *core.CatalogService
}

// NewCatalog creates a new Catalog handler.
func NewCatalog(svc *core.CatalogService) *Catalog {
	return &Catalog{svc: svc}
}

// Options godoc
//
//	@Summary		Get provisioning form options
//	@Description	Returns the locations, providers, designs, active prefixes, and routing strategies a provisioning request chooses from.
//	@Tags			Catalog
//	@Security		ApiKeyAuth
//	@Success		200	{object}	core.FormOptions
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/catalog/options [get]
func (h *Catalog) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.FormOptions(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, opts)
}

// DataCenters godoc
//
//	@Summary		List data centers
//	@Description	Returns the data center topologies present on the default branch.
//	@Tags			Catalog
//	@Security		ApiKeyAuth
//	@Success		200	{array}		infrahub.DataCenter
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/catalog/datacenters [get]
func (h *Catalog) DataCenters(w http.ResponseWriter, r *http.Request) {
	dcs, err := h.svc.ListDataCenters(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, dcs)
}

// ProposedChanges godoc
//
//	@Summary		List proposed changes
//	@Description	Returns the proposed changes known to the backend with their review URLs.
//	@Tags			Catalog
//	@Security		ApiKeyAuth
//	@Success		200	{array}		infrahub.ProposedChange
//	@Failure		500	{object}	response.ErrorResponse
//	@Router			/catalog/proposed-changes [get]
func (h *Catalog) ProposedChanges(w http.ResponseWriter, r *http.Request) {
	changes, err := h.svc.ListProposedChanges(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, changes)
}
