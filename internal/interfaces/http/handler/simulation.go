package handler

import (
	"strconv"

	simulationapp "github.com/erp/taxsim/internal/application/simulation"
	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// SimulationHandler serves draft editing and saved simulations
type SimulationHandler struct {
	BaseHandler
	service   *simulationapp.SimulationService
	workspace *simulationapp.DraftWorkspace
}

// NewSimulationHandler creates a new SimulationHandler
func NewSimulationHandler(service *simulationapp.SimulationService, workspace *simulationapp.DraftWorkspace) *SimulationHandler {
	return &SimulationHandler{service: service, workspace: workspace}
}

// CreateDraft opens a new editing draft
func (h *SimulationHandler) CreateDraft(c *gin.Context) {
	var req simulationapp.NewDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	draftID, sim, err := h.workspace.Open(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, simulationapp.ToDraftResponse(draftID, sim))
}

// GetDraft returns the current state of a draft
func (h *SimulationHandler) GetDraft(c *gin.Context) {
	draftID, ok := h.parseDraftID(c)
	if !ok {
		return
	}

	sim, err := h.workspace.Get(draftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToDraftResponse(draftID, sim))
}

// DiscardDraft drops a draft without saving
func (h *SimulationHandler) DiscardDraft(c *gin.Context) {
	draftID, ok := h.parseDraftID(c)
	if !ok {
		return
	}

	if err := h.workspace.Discard(draftID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ChangeRoute changes the draft header and recomputes every item
func (h *SimulationHandler) ChangeRoute(c *gin.Context) {
	draftID, ok := h.parseDraftID(c)
	if !ok {
		return
	}

	var req simulationapp.ChangeRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	sim, err := h.workspace.ChangeRoute(c.Request.Context(), draftID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToDraftResponse(draftID, sim))
}

// SetItem appends an item, or replaces the one at edit_index
func (h *SimulationHandler) SetItem(c *gin.Context) {
	draftID, ok := h.parseDraftID(c)
	if !ok {
		return
	}

	var req simulationapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	sim, err := h.workspace.SetItem(c.Request.Context(), draftID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToDraftResponse(draftID, sim))
}

// RemoveItem deletes the item at :index
func (h *SimulationHandler) RemoveItem(c *gin.Context) {
	draftID, ok := h.parseDraftID(c)
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.BadRequest(c, "Invalid item index")
		return
	}

	sim, err := h.workspace.RemoveItem(c.Request.Context(), draftID, index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToDraftResponse(draftID, sim))
}

// SaveDraft persists the draft as a new or updated simulation
func (h *SimulationHandler) SaveDraft(c *gin.Context) {
	draftID, ok := h.parseDraftID(c)
	if !ok {
		return
	}

	sim, err := h.workspace.Save(c.Request.Context(), draftID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToDraftResponse(draftID, sim))
}

// Edit opens a draft on a copy of a saved simulation
func (h *SimulationHandler) Edit(c *gin.Context) {
	id, ok := h.parseSimulationID(c)
	if !ok {
		return
	}

	draftID, sim, err := h.workspace.OpenSaved(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, simulationapp.ToDraftResponse(draftID, sim))
}

// List returns saved simulations, paginated
func (h *SimulationHandler) List(c *gin.Context) {
	var filter simulationapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	list, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paging := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	h.SuccessWithMeta(c, simulationapp.ToSimulationListItemResponses(list), total, paging.Page, paging.PageSize)
}

// Get returns one saved simulation
func (h *SimulationHandler) Get(c *gin.Context) {
	id, ok := h.parseSimulationID(c)
	if !ok {
		return
	}

	sim, err := h.service.Load(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToSimulationResponse(sim))
}

// Delete removes a saved simulation
func (h *SimulationHandler) Delete(c *gin.Context) {
	id, ok := h.parseSimulationID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit marks a saved simulation as submitted
func (h *SimulationHandler) Submit(c *gin.Context) {
	id, ok := h.parseSimulationID(c)
	if !ok {
		return
	}

	sim, err := h.service.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, simulationapp.ToSimulationResponse(sim))
}
