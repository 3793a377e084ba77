package router

import (
	"github.com/erp/taxsim/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler the service exposes
type Handlers struct {
	Health     *handler.HealthHandler
	Fiscal     *handler.FiscalHandler
	Simulation *handler.SimulationHandler
}

// FiscalRoutes builds the /fiscal group
func FiscalRoutes(h *handler.FiscalHandler) *DomainGroup {
	return NewDomainGroup("fiscal", "/fiscal").
		GET("/jurisdictions", h.ListJurisdictions).
		GET("/rates", h.GetRates).
		POST("/quote", h.Quote)
}

// SimulationRoutes builds the /simulations group
func SimulationRoutes(h *handler.SimulationHandler) *DomainGroup {
	sims := NewDomainGroup("simulations", "/simulations").
		GET("", h.List).
		GET("/:id", h.Get).
		DELETE("/:id", h.Delete).
		POST("/:id/submit", h.Submit).
		POST("/:id/edit", h.Edit)

	sims.Group("drafts", "/drafts").
		POST("", h.CreateDraft).
		GET("/:draft_id", h.GetDraft).
		DELETE("/:draft_id", h.DiscardDraft).
		PUT("/:draft_id/route", h.ChangeRoute).
		POST("/:draft_id/items", h.SetItem).
		DELETE("/:draft_id/items/:index", h.RemoveItem).
		POST("/:draft_id/save", h.SaveDraft)

	return sims
}

// Setup mounts /health and the versioned API on engine
func Setup(engine *gin.Engine, h Handlers, opts ...RouterOption) {
	engine.GET("/health", h.Health.Health)

	NewRouter(engine, opts...).
		Register(FiscalRoutes(h.Fiscal)).
		Register(SimulationRoutes(h.Simulation)).
		Setup()
}
