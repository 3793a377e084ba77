package handler

import (
	simulationapp "github.com/erp/taxsim/internal/application/simulation"
	"github.com/gin-gonic/gin"
)

// FiscalHandler serves the reference table and stateless rate queries
type FiscalHandler struct {
	BaseHandler
	service *simulationapp.SimulationService
}

// NewFiscalHandler creates a new FiscalHandler
func NewFiscalHandler(service *simulationapp.SimulationService) *FiscalHandler {
	return &FiscalHandler{service: service}
}

// RatesQuery selects a route
type RatesQuery struct {
	Origin      string `form:"origin" binding:"required,len=2"`
	Destination string `form:"destination" binding:"required,len=2"`
	Contributor bool   `form:"contributor"`
}

// ListJurisdictions returns the ICMS reference table
func (h *FiscalHandler) ListJurisdictions(c *gin.Context) {
	h.Success(c, simulationapp.ToJurisdictionResponses(h.service.Jurisdictions()))
}

// GetRates resolves the applied ICMS rate and DIFAL for a route
func (h *FiscalHandler) GetRates(c *gin.Context) {
	var q RatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	rates := h.service.ResolveRates(c.Request.Context(), q.Origin, q.Destination, q.Contributor)
	h.Success(c, simulationapp.ToRatesResponse(q.Origin, q.Destination, q.Contributor, rates))
}

// Quote prices and taxes one product for a route without a simulation
func (h *FiscalHandler) Quote(c *gin.Context) {
	var req simulationapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}
