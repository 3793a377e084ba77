package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/erp/taxsim/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSimulationRepository implements simulation.Repository using GORM
type GormSimulationRepository struct {
	db *gorm.DB
}

// NewGormSimulationRepository creates a new GormSimulationRepository
func NewGormSimulationRepository(db *gorm.DB) *GormSimulationRepository {
	return &GormSimulationRepository{db: db}
}

// Create assigns the next id from the sequence row and inserts the
// simulation with its items in one transaction.
func (r *GormSimulationRepository) Create(ctx context.Context, sim *simulation.Simulation) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSimulationID(tx)
		if err != nil {
			return err
		}

		var model models.SimulationModel
		candidate := sim.Clone()
		candidate.ID = next
		candidate.Version = 1
		model.FromDomain(candidate)

		if err := tx.Omit("Items").Create(&model).Error; err != nil {
			return fmt.Errorf("failed to insert simulation: %w", err)
		}
		if err := insertItems(tx, model.Items); err != nil {
			return err
		}
		id = next
		return nil
	})
	if err != nil {
		return 0, err
	}

	sim.ID = id
	sim.Version = 1
	return id, nil
}

// nextSimulationID locks the sequence row and advances it past both the
// last issued id and the highest stored id.
func nextSimulationID(tx *gorm.DB) (int64, error) {
	seq := models.IDSequenceModel{Name: models.SimulationSequenceName}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to initialize id sequence: %w", err)
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "name = ?", models.SimulationSequenceName).Error; err != nil {
		return 0, fmt.Errorf("failed to read id sequence: %w", err)
	}

	var maxID int64
	if err := tx.Model(&models.SimulationModel{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("failed to read max simulation id: %w", err)
	}

	next := max(seq.LastID, maxID) + 1
	if err := tx.Model(&models.IDSequenceModel{}).
		Where("name = ?", models.SimulationSequenceName).
		Update("last_id", next).Error; err != nil {
		return 0, fmt.Errorf("failed to advance id sequence: %w", err)
	}
	return next, nil
}

// Update replaces the stored simulation after a version check
func (r *GormSimulationRepository) Update(ctx context.Context, sim *simulation.Simulation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		result := tx.Model(&models.SimulationModel{}).
			Where("id = ?", sim.ID).
			Select("version").
			Scan(&currentVersion)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return simulation.ErrSimulationNotFound
		}
		if currentVersion != sim.Version {
			return shared.ErrConcurrencyConflict
		}

		var model models.SimulationModel
		candidate := sim.Clone()
		candidate.Version = sim.Version + 1
		model.FromDomain(candidate)

		updated := tx.Model(&models.SimulationModel{}).
			Where("id = ? AND version = ?", sim.ID, currentVersion).
			Updates(map[string]any{
				"date":                        model.Date,
				"origin_jurisdiction_id":      model.OriginJurisdictionID,
				"destination_jurisdiction_id": model.DestinationJurisdictionID,
				"operation_type":              model.OperationType,
				"party_id":                    model.PartyID,
				"party_name":                  model.PartyName,
				"party_jurisdiction_id":       model.PartyJurisdictionID,
				"party_is_tax_contributor":    model.PartyIsTaxContributor,
				"status":                      model.Status,
				"version":                     model.Version,
				"remark":                      model.Remark,
				"total_revenue":               model.TotalRevenue,
				"total_tax":                   model.TotalTax,
				"gross_profit":                model.GrossProfit,
				"updated_at":                  model.UpdatedAt,
				"submitted_at":                model.SubmittedAt,
			})
		if updated.Error != nil {
			return fmt.Errorf("failed to update simulation: %w", updated.Error)
		}
		if updated.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Where("simulation_id = ?", sim.ID).Delete(&models.SimulationItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to replace simulation items: %w", err)
		}
		return insertItems(tx, model.Items)
	})
	if err != nil {
		return err
	}
	sim.Version++
	return nil
}

func insertItems(tx *gorm.DB, items []models.SimulationItemModel) error {
	if len(items) == 0 {
		return nil
	}
	if err := tx.Create(&items).Error; err != nil {
		return fmt.Errorf("failed to insert simulation items: %w", err)
	}
	return nil
}

// Delete removes a simulation and its items
func (r *GormSimulationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("simulation_id = ?", id).Delete(&models.SimulationItemModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete simulation items: %w", err)
		}
		result := tx.Delete(&models.SimulationModel{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete simulation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return simulation.ErrSimulationNotFound
		}
		return nil
	})
}

// Get loads a simulation with its items in position order
func (r *GormSimulationRepository) Get(ctx context.Context, id int64) (*simulation.Simulation, error) {
	var model models.SimulationModel
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, simulation.ErrSimulationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns simulations ordered by id
func (r *GormSimulationRepository) List(ctx context.Context, filter simulation.Filter) ([]simulation.Simulation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SimulationModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.OriginJurisdictionID != "" {
		query = query.Where("origin_jurisdiction_id = ?", filter.OriginJurisdictionID)
	}
	if filter.DestinationJurisdictionID != "" {
		query = query.Where("destination_jurisdiction_id = ?", filter.DestinationJurisdictionID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Filter.Normalize()
	var rows []models.SimulationModel
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("id ASC").
		Offset(filter.Filter.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]simulation.Simulation, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, total, nil
}

var _ simulation.Repository = (*GormSimulationRepository)(nil)
