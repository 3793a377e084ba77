package simulation

import (
	"context"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulationService runs the simulation use cases. Editing operations work
// on copies: the simulation passed in is never modified.
type SimulationService struct {
	repo           simulation.Repository
	products       fiscal.ProductCatalog
	parties        fiscal.PartyDirectory
	resolver       *fiscal.RateResolver
	calculator     fiscal.ItemTaxCalculator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewSimulationService creates a new SimulationService
func NewSimulationService(
	repo simulation.Repository,
	products fiscal.ProductCatalog,
	parties fiscal.PartyDirectory,
	resolver *fiscal.RateResolver,
	logger *zap.Logger,
) *SimulationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationService{
		repo:       repo,
		products:   products,
		parties:    parties,
		resolver:   resolver,
		calculator: fiscal.NewItemTaxCalculator(),
		logger:     logger,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for saved/submitted/deleted events
func (s *SimulationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Jurisdictions returns the reference table ordered by id
func (s *SimulationService) Jurisdictions() []fiscal.Jurisdiction {
	return s.resolver.Table().All()
}

// ResolveRates returns the ICMS outcome of a route
func (s *SimulationService) ResolveRates(ctx context.Context, origin, destination string, buyerIsContributor bool) fiscal.ResolvedRates {
	rates := s.resolver.Resolve(origin, destination, buyerIsContributor)
	s.logFallback(ctx, origin, destination, rates)
	return rates
}

// NewDraft opens an empty simulation for the route
func (s *SimulationService) NewDraft(ctx context.Context, req NewDraftRequest) (*simulation.Simulation, error) {
	party, err := s.lookupParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}
	draft, err := simulation.NewDraft(
		req.OriginJurisdictionID,
		req.DestinationJurisdictionID,
		simulation.OperationType(req.OperationType),
		party,
		s.now(),
	)
	if err != nil {
		return nil, err
	}
	draft.SetRemark(req.Remark)
	return draft, nil
}

// AddOrUpdateItem prices the product for the simulation's route and appends
// it, or replaces the item at req.EditIndex.
func (s *SimulationService) AddOrUpdateItem(ctx context.Context, sim *simulation.Simulation, req AddItemRequest) (*simulation.Simulation, error) {
	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	rates := s.ResolveRates(ctx, sim.OriginJurisdictionID, sim.DestinationJurisdictionID, sim.BuyerIsContributor())
	item := s.calculator.Compute(fiscal.ItemInput{
		ProductID:         req.ProductID,
		Quantity:          req.Quantity.Int64(),
		UnitPriceOverride: req.UnitPriceOverride,
	}, *product, rates)

	next := sim.Clone()
	if err := next.SetItem(item, req.EditIndex); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	return next, nil
}

// RemoveItem deletes the item at index
func (s *SimulationService) RemoveItem(ctx context.Context, sim *simulation.Simulation, index int) (*simulation.Simulation, error) {
	next := sim.Clone()
	if err := next.RemoveItem(index); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now()
	return next, nil
}

// ChangeRoute replaces the header and recomputes every item with the rates
// of the new route.
func (s *SimulationService) ChangeRoute(ctx context.Context, sim *simulation.Simulation, req ChangeRouteRequest) (*simulation.Simulation, error) {
	party, err := s.lookupParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}

	next := sim.Clone()
	if err := next.SetRoute(req.OriginJurisdictionID, req.DestinationJurisdictionID, party); err != nil {
		return nil, err
	}
	if req.OperationType != "" {
		if err := next.SetOperationType(simulation.OperationType(req.OperationType)); err != nil {
			return nil, err
		}
	}
	if req.Remark != nil {
		next.SetRemark(*req.Remark)
	}

	rates := s.ResolveRates(ctx, next.OriginJurisdictionID, next.DestinationJurisdictionID, next.BuyerIsContributor())
	items := make([]fiscal.LineItem, len(next.Items))
	for i, item := range next.Items {
		items[i] = s.calculator.Recompute(item, rates)
	}
	next.ReplaceItems(items)
	next.UpdatedAt = s.now()
	return next, nil
}

// Save persists the simulation, creating it when it has no id yet. On
// success sim receives the assigned id, version and saved status.
func (s *SimulationService) Save(ctx context.Context, sim *simulation.Simulation) (int64, error) {
	candidate := sim.Clone()
	candidate.MarkSaved(s.now())

	if candidate.IsPersisted() {
		if err := s.repo.Update(ctx, candidate); err != nil {
			return 0, err
		}
	} else {
		if _, err := s.repo.Create(ctx, candidate); err != nil {
			return 0, err
		}
	}
	*sim = *candidate

	s.logger.Info("simulation saved",
		zap.Int64("simulation_id", sim.ID),
		zap.Int("version", sim.Version),
		zap.Int("item_count", sim.ItemCount()),
	)
	s.publish(ctx, simulation.NewSimulationSavedEvent(sim))
	return sim.ID, nil
}

// Load returns a persisted simulation
func (s *SimulationService) Load(ctx context.Context, id int64) (*simulation.Simulation, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes a persisted simulation
func (s *SimulationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("simulation deleted", zap.Int64("simulation_id", id))
	s.publish(ctx, simulation.NewSimulationDeletedEvent(id))
	return nil
}

// List returns a page of saved simulations and the total match count
func (s *SimulationService) List(ctx context.Context, filter ListFilter) ([]simulation.Simulation, int64, error) {
	return s.repo.List(ctx, filter.toDomain())
}

// Submit marks a saved simulation as submitted and announces it
func (s *SimulationService) Submit(ctx context.Context, id int64) (*simulation.Simulation, error) {
	sim, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sim.Submit(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sim); err != nil {
		return nil, err
	}

	s.logger.Info("simulation submitted",
		zap.Int64("simulation_id", sim.ID),
		zap.String("origin", sim.OriginJurisdictionID),
		zap.String("destination", sim.DestinationJurisdictionID),
	)
	s.publish(ctx, simulation.NewSimulationSubmittedEvent(sim))
	return sim, nil
}

// Quote prices one item for a route without touching any simulation
func (s *SimulationService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	contributor := req.BuyerIsContributor
	party, err := s.lookupParty(ctx, req.PartyID)
	if err != nil {
		return nil, err
	}
	if party != nil {
		contributor = party.IsTaxContributor
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	rates := s.ResolveRates(ctx, req.OriginJurisdictionID, req.DestinationJurisdictionID, contributor)
	item := s.calculator.Compute(fiscal.ItemInput{
		ProductID:         req.ProductID,
		Quantity:          req.Quantity.Int64(),
		UnitPriceOverride: req.UnitPriceOverride,
	}, *product, rates)

	return &QuoteResponse{
		Rates: ToRatesResponse(req.OriginJurisdictionID, req.DestinationJurisdictionID, contributor, rates),
		Item:  ToLineItemResponse(0, item),
	}, nil
}

func (s *SimulationService) lookupParty(ctx context.Context, id *uuid.UUID) (*fiscal.Party, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	return s.parties.GetParty(ctx, *id)
}

func (s *SimulationService) logFallback(ctx context.Context, origin, destination string, rates fiscal.ResolvedRates) {
	if !rates.UsedFallback() {
		return
	}
	s.logger.Warn("jurisdiction missing from rate table, using default internal rate",
		zap.String("origin", fiscal.NormalizeJurisdictionID(origin)),
		zap.Bool("origin_found", rates.OriginFound),
		zap.String("destination", fiscal.NormalizeJurisdictionID(destination)),
		zap.Bool("destination_found", rates.DestinationFound),
		zap.String("default_internal_rate", s.resolver.DefaultInternalRate().String()),
	)
}

func (s *SimulationService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID()),
			zap.Error(err),
		)
	}
}
