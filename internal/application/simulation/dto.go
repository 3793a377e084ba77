package simulation

import (
	"math"
	"strings"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========== Requests ==========

// NewDraftRequest opens a simulation
type NewDraftRequest struct {
	OriginJurisdictionID      string     `json:"origin_jurisdiction_id" binding:"required,len=2"`
	DestinationJurisdictionID string     `json:"destination_jurisdiction_id" binding:"required,len=2"`
	OperationType             string     `json:"operation_type" binding:"omitempty,oneof=sale transfer return bonus"`
	PartyID                   *uuid.UUID `json:"party_id"`
	Remark                    string     `json:"remark" binding:"max=2000"`
}

// AddItemRequest appends an item, or replaces the item at EditIndex
type AddItemRequest struct {
	ProductID         uuid.UUID        `json:"product_id" binding:"required"`
	Quantity          Quantity         `json:"quantity"`
	UnitPriceOverride *decimal.Decimal `json:"unit_price_override"`
	EditIndex         *int             `json:"edit_index"`
}

// ChangeRouteRequest changes the operation header. Every item is
// recomputed against the new route.
type ChangeRouteRequest struct {
	OriginJurisdictionID      string     `json:"origin_jurisdiction_id" binding:"required,len=2"`
	DestinationJurisdictionID string     `json:"destination_jurisdiction_id" binding:"required,len=2"`
	OperationType             string     `json:"operation_type" binding:"omitempty,oneof=sale transfer return bonus"`
	PartyID                   *uuid.UUID `json:"party_id"`
	Remark                    *string    `json:"remark" binding:"omitempty,max=2000"`
}

// QuoteRequest prices a single item without a simulation. When PartyID is
// set the party decides contributor status, otherwise BuyerIsContributor.
type QuoteRequest struct {
	OriginJurisdictionID      string           `json:"origin_jurisdiction_id" binding:"required,len=2"`
	DestinationJurisdictionID string           `json:"destination_jurisdiction_id" binding:"required,len=2"`
	BuyerIsContributor        bool             `json:"buyer_is_contributor"`
	PartyID                   *uuid.UUID       `json:"party_id"`
	ProductID                 uuid.UUID        `json:"product_id" binding:"required"`
	Quantity                  Quantity         `json:"quantity"`
	UnitPriceOverride         *decimal.Decimal `json:"unit_price_override"`
}

// Quantity is a line quantity that never fails to decode. Fractions are
// truncated; anything that is not a number decodes to 0, which the
// calculator coerces to 1.
type Quantity int64

var maxQuantity = decimal.NewFromInt(math.MaxInt64)

// UnmarshalJSON accepts a JSON number or a quoted number
func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = 0
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	d, err := decimal.NewFromString(raw)
	if err != nil || d.GreaterThan(maxQuantity) || d.LessThan(maxQuantity.Neg()) {
		return nil
	}
	*q = Quantity(d.IntPart())
	return nil
}

// Int64 returns the raw quantity
func (q Quantity) Int64() int64 {
	return int64(q)
}

// ListFilter narrows the saved simulation list
type ListFilter struct {
	Page                      int    `form:"page" binding:"omitempty,min=1"`
	PageSize                  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status                    string `form:"status" binding:"omitempty,oneof=saved submitted"`
	OriginJurisdictionID      string `form:"origin"`
	DestinationJurisdictionID string `form:"destination"`
}

func (f ListFilter) toDomain() simulation.Filter {
	return simulation.Filter{
		Filter:                    shared.Filter{Page: f.Page, PageSize: f.PageSize}.Normalize(),
		Status:                    simulation.Status(f.Status),
		OriginJurisdictionID:      fiscal.NormalizeJurisdictionID(f.OriginJurisdictionID),
		DestinationJurisdictionID: fiscal.NormalizeJurisdictionID(f.DestinationJurisdictionID),
	}
}

// ========== Responses ==========

// TaxEntryResponse is one tax on a line
type TaxEntryResponse struct {
	Kind   string          `json:"kind"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// LineItemResponse is a computed line
type LineItemResponse struct {
	Index              int                `json:"index"`
	ProductID          uuid.UUID          `json:"product_id"`
	ProductCode        string             `json:"product_code"`
	ProductName        string             `json:"product_name"`
	Quantity           int64              `json:"quantity"`
	UnitPrice          decimal.Decimal    `json:"unit_price"`
	PriceOverridden    bool               `json:"price_overridden"`
	LineTotal          decimal.Decimal    `json:"line_total"`
	CostTotal          decimal.Decimal    `json:"cost_total"`
	Taxes              []TaxEntryResponse `json:"taxes"`
	TotalTax           decimal.Decimal    `json:"total_tax"`
	TaxPercentOfLine   decimal.Decimal    `json:"tax_percent_of_line"`
	ContributionMargin decimal.Decimal    `json:"contribution_margin"`
}

// PartyResponse is the buyer of a simulation
type PartyResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	JurisdictionID   string    `json:"jurisdiction_id"`
	IsTaxContributor bool      `json:"is_tax_contributor"`
}

// SummaryResponse is the operation-level result
type SummaryResponse struct {
	fiscal.Summary
	TaxBurden decimal.Decimal `json:"tax_burden"`
}

// SimulationResponse is the full view of a simulation
type SimulationResponse struct {
	ID                        int64              `json:"id,omitempty"`
	DraftID                   *uuid.UUID         `json:"draft_id,omitempty"`
	Date                      time.Time          `json:"date"`
	OriginJurisdictionID      string             `json:"origin_jurisdiction_id"`
	DestinationJurisdictionID string             `json:"destination_jurisdiction_id"`
	OperationType             string             `json:"operation_type"`
	Party                     *PartyResponse     `json:"party,omitempty"`
	Items                     []LineItemResponse `json:"items"`
	Summary                   SummaryResponse    `json:"summary"`
	Status                    string             `json:"status"`
	Version                   int                `json:"version"`
	Remark                    string             `json:"remark,omitempty"`
	CreatedAt                 time.Time          `json:"created_at"`
	UpdatedAt                 time.Time          `json:"updated_at"`
	SubmittedAt               *time.Time         `json:"submitted_at,omitempty"`
}

// SimulationListItemResponse is the list view of a simulation
type SimulationListItemResponse struct {
	ID                        int64           `json:"id"`
	Date                      time.Time       `json:"date"`
	OriginJurisdictionID      string          `json:"origin_jurisdiction_id"`
	DestinationJurisdictionID string          `json:"destination_jurisdiction_id"`
	OperationType             string          `json:"operation_type"`
	PartyName                 string          `json:"party_name,omitempty"`
	ItemCount                 int             `json:"item_count"`
	TotalRevenue              decimal.Decimal `json:"total_revenue"`
	TaxBurden                 decimal.Decimal `json:"tax_burden"`
	GrossProfit               decimal.Decimal `json:"gross_profit"`
	ContributionMargin        decimal.Decimal `json:"contribution_margin_percent"`
	Status                    string          `json:"status"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

// RatesResponse is the ICMS outcome of a route
type RatesResponse struct {
	OriginJurisdictionID      string          `json:"origin_jurisdiction_id"`
	DestinationJurisdictionID string          `json:"destination_jurisdiction_id"`
	BuyerIsContributor        bool            `json:"buyer_is_contributor"`
	AppliedIcmsRate           decimal.Decimal `json:"applied_icms_rate"`
	HasDifal                  bool            `json:"has_difal"`
	DifalRate                 decimal.Decimal `json:"difal_rate"`
	OriginFound               bool            `json:"origin_found"`
	DestinationFound          bool            `json:"destination_found"`
}

// QuoteResponse is a single priced line plus the rates it used
type QuoteResponse struct {
	Rates RatesResponse    `json:"rates"`
	Item  LineItemResponse `json:"item"`
}

// JurisdictionResponse is one row of the reference table
type JurisdictionResponse struct {
	ID                           string          `json:"id"`
	Name                         string          `json:"name"`
	Region                       string          `json:"region"`
	InternalRate                 decimal.Decimal `json:"internal_rate"`
	InterstateRateSouthSoutheast decimal.Decimal `json:"interstate_rate_south_southeast"`
	InterstateRateOther          decimal.Decimal `json:"interstate_rate_other"`
}

// ========== Converters ==========

// ToLineItemResponse converts a line item at index
func ToLineItemResponse(index int, item fiscal.LineItem) LineItemResponse {
	entries := item.Taxes.Entries()
	taxes := make([]TaxEntryResponse, len(entries))
	for i, e := range entries {
		taxes[i] = TaxEntryResponse{Kind: string(e.Kind), Rate: e.Rate.Decimal(), Amount: e.Amount}
	}
	return LineItemResponse{
		Index:              index,
		ProductID:          item.ProductID,
		ProductCode:        item.ProductCode,
		ProductName:        item.ProductName,
		Quantity:           item.Quantity,
		UnitPrice:          item.UnitPrice,
		PriceOverridden:    item.PriceOverridden,
		LineTotal:          item.LineTotal,
		CostTotal:          item.CostTotal,
		Taxes:              taxes,
		TotalTax:           item.TotalTax,
		TaxPercentOfLine:   item.TaxPercentOfLine,
		ContributionMargin: item.ContributionMargin,
	}
}

// ToSimulationResponse converts a simulation
func ToSimulationResponse(s *simulation.Simulation) SimulationResponse {
	items := make([]LineItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = ToLineItemResponse(i, item)
	}
	resp := SimulationResponse{
		ID:                        s.ID,
		Date:                      s.Date,
		OriginJurisdictionID:      s.OriginJurisdictionID,
		DestinationJurisdictionID: s.DestinationJurisdictionID,
		OperationType:             string(s.OperationType),
		Items:                     items,
		Summary:                   SummaryResponse{Summary: s.Summary, TaxBurden: s.Summary.TaxBurden()},
		Status:                    string(s.Status),
		Version:                   s.Version,
		Remark:                    s.Remark,
		CreatedAt:                 s.CreatedAt,
		UpdatedAt:                 s.UpdatedAt,
		SubmittedAt:               s.SubmittedAt,
	}
	if s.Party != nil {
		resp.Party = &PartyResponse{
			ID:               s.Party.ID,
			Name:             s.Party.Name,
			JurisdictionID:   s.Party.JurisdictionID,
			IsTaxContributor: s.Party.IsTaxContributor,
		}
	}
	return resp
}

// ToDraftResponse converts a draft and tags it with its handle
func ToDraftResponse(draftID uuid.UUID, s *simulation.Simulation) SimulationResponse {
	resp := ToSimulationResponse(s)
	resp.DraftID = &draftID
	return resp
}

// ToSimulationListItemResponses converts a page of simulations
func ToSimulationListItemResponses(list []simulation.Simulation) []SimulationListItemResponse {
	result := make([]SimulationListItemResponse, len(list))
	for i := range list {
		s := &list[i]
		item := SimulationListItemResponse{
			ID:                        s.ID,
			Date:                      s.Date,
			OriginJurisdictionID:      s.OriginJurisdictionID,
			DestinationJurisdictionID: s.DestinationJurisdictionID,
			OperationType:             string(s.OperationType),
			ItemCount:                 s.ItemCount(),
			TotalRevenue:              s.Summary.TotalRevenue,
			TaxBurden:                 s.Summary.TaxBurden(),
			GrossProfit:               s.Summary.GrossProfit,
			ContributionMargin:        s.Summary.ContributionMarginPercent,
			Status:                    string(s.Status),
			UpdatedAt:                 s.UpdatedAt,
		}
		if s.Party != nil {
			item.PartyName = s.Party.Name
		}
		result[i] = item
	}
	return result
}

// ToRatesResponse converts resolved rates for a route
func ToRatesResponse(origin, destination string, contributor bool, r fiscal.ResolvedRates) RatesResponse {
	return RatesResponse{
		OriginJurisdictionID:      fiscal.NormalizeJurisdictionID(origin),
		DestinationJurisdictionID: fiscal.NormalizeJurisdictionID(destination),
		BuyerIsContributor:        contributor,
		AppliedIcmsRate:           r.AppliedIcmsRate.Decimal(),
		HasDifal:                  r.HasDifal,
		DifalRate:                 r.DifalRate.Decimal(),
		OriginFound:               r.OriginFound,
		DestinationFound:          r.DestinationFound,
	}
}

// ToJurisdictionResponses converts the reference table
func ToJurisdictionResponses(list []fiscal.Jurisdiction) []JurisdictionResponse {
	result := make([]JurisdictionResponse, len(list))
	for i, j := range list {
		result[i] = JurisdictionResponse{
			ID:                           j.ID,
			Name:                         j.Name,
			Region:                       string(j.Region),
			InternalRate:                 j.InternalRate.Decimal(),
			InterstateRateSouthSoutheast: j.InterstateRateSouthSoutheast.Decimal(),
			InterstateRateOther:          j.InterstateRateOther.Decimal(),
		}
	}
	return result
}
