package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netobs/dc-catalog/internal/api/request"
	"github.com/netobs/dc-catalog/internal/api/response"
	"github.com/netobs/dc-catalog/internal/core"
)

// Run handles run inspection and lifecycle endpoints.
type Run struct {
	svc *core.RunService
}

// NewRun creates a new Run handler.
func NewRun(svc *core.RunService) *Run {
	return &Run{svc: svc}
}

// Get godoc
//
//	@Summary		Get a run
//	@Description	Returns the run, its per-stage records, and the summarized outcome. Never blocks on the workflow.
//	@Tags			Runs
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Run ID"
//	@Success		200	{object}	model.RunDetail
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/runs/{id} [get]
func (h *Run) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, detail)
}

// List godoc
//
//	@Summary		List runs
//	@Description	Returns a paginated list of runs. Supports search on the data center name, status filtering, and sorting.
//	@Tags			Runs
//	@Security		ApiKeyAuth
//	@Param			limit	query		int		false	"Page size"					default(50)
//	@Param			cursor	query		string	false	"Pagination cursor"
//	@Param			search	query		string	false	"Search term"
//	@Param			status	query		string	false	"Filter by status"
//	@Param			sort	query		string	false	"Sort field"				default(created_at)
//	@Param			order	query		string	false	"Sort order (asc or desc)"	default(desc)
//	@Success		200		{object}	response.PaginatedResponse{items=[]model.Run}
//	@Failure		500		{object}	response.ErrorResponse
//	@Router			/runs [get]
func (h *Run) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r, "created_at")

	runs, hasMore, err := h.svc.List(r.Context(), params)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(runs) > 0 {
		nextCursor = runs[len(runs)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, runs, nextCursor, hasMore)
}

// Resume godoc
//
//	@Summary		Resume a run
//	@Description	Re-drives a run that stopped short of success. Stages that already succeeded are skipped. Succeeded runs are rejected; a run whose workflow is still executing conflicts.
//	@Tags			Runs
//	@Security		ApiKeyAuth
//	@Param			id	path		string	true	"Run ID"
//	@Success		202	{object}	model.Run
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/runs/{id}/resume [post]
func (h *Run) Resume(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.svc.Resume(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusAccepted, run)
}

// Cancel godoc
//
//	@Summary		Cancel a run
//	@Description	Requests cancellation of a run's workflow. The workflow honors it at the next stage boundary; a backend call already in flight completes first.
//	@Tags			Runs
//	@Security		ApiKeyAuth
//	@Param			id	path	string	true	"Run ID"
//	@Success		202
//	@Failure		400	{object}	response.ErrorResponse
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/runs/{id}/cancel [post]
func (h *Run) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
