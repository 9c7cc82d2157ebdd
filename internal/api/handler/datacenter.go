package handler

import (
	"net/http"

	"github.com/netobs/dc-catalog/internal/api/request"
	"github.com/netobs/dc-catalog/internal/api/response"
	"github.com/netobs/dc-catalog/internal/core"
)

// DataCenter handles provisioning submissions.
type DataCenter struct {
	svc *core.RunService
}

// NewDataCenter creates a new DataCenter handler.
func NewDataCenter(svc *core.RunService) *DataCenter {
	return &DataCenter{svc: svc}
}

// Create godoc
//
//	@Summary		Provision a data center
//	@Description	Validates the specification, records a run, and starts the provisioning workflow. Runs are keyed by data center name: resubmitting a succeeded name returns the recorded run, a partial/failed/cancelled name is re-driven, and a name still in flight conflicts. Responds 202 when a workflow execution was started, 200 when the recorded run is returned untouched.
//	@Tags			Data Centers
//	@Security		ApiKeyAuth
//	@Param			body	body		request.CreateDataCenter	true	"Data center specification"
//	@Success		202		{object}	model.Run
//	@Success		200		{object}	model.Run
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/datacenters [post]
func (h *DataCenter) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDataCenter
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, started, err := h.svc.Submit(r.Context(), req.ToModel())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	response.WriteJSON(w, status, run)
}
