package event

import (
	"context"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/erp/taxsim/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SubmissionLogHandler records simulation lifecycle events in the
// application log. It is the default receiver for submissions when no
// external forwarder is configured.
type SubmissionLogHandler struct {
	logger *zap.Logger
}

// NewSubmissionLogHandler creates the handler
func NewSubmissionLogHandler(l *zap.Logger) *SubmissionLogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &SubmissionLogHandler{logger: l.Named("simulation_events")}
}

// EventTypes implements shared.EventHandler
func (h *SubmissionLogHandler) EventTypes() []string {
	return []string{
		simulation.EventTypeSimulationSaved,
		simulation.EventTypeSimulationSubmitted,
		simulation.EventTypeSimulationDeleted,
	}
}

// Handle implements shared.EventHandler
func (h *SubmissionLogHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	log := logger.WithLogger(ctx, h.logger)
	switch ev := e.(type) {
	case *simulation.SimulationSubmittedEvent:
		log.Info("simulation submitted for review",
			zap.Int64("simulation_id", ev.SimulationID),
			zap.String("route", ev.OriginJurisdictionID+"->"+ev.DestinationJurisdictionID),
			zap.String("party", ev.PartyName),
			zap.String("total_revenue", ev.TotalRevenue.String()),
			zap.String("tax_burden", ev.TaxBurden.String()),
			zap.String("contribution_margin", ev.ContributionMargin.String()),
		)
	case *simulation.SimulationSavedEvent:
		log.Debug("simulation saved",
			zap.Int64("simulation_id", ev.SimulationID),
			zap.Int("version", ev.Version),
			zap.Int("items", ev.ItemCount),
		)
	case *simulation.SimulationDeletedEvent:
		log.Debug("simulation deleted", zap.Int64("simulation_id", ev.SimulationID))
	}
	return nil
}

var _ shared.EventHandler = (*SubmissionLogHandler)(nil)
