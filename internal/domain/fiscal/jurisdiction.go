package fiscal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
)

// Region is the geographic region of a jurisdiction. It decides the
// interstate ICMS rate class.
type Region string

const (
	RegionNorth     Region = "north"
	RegionNortheast Region = "northeast"
	RegionMidwest   Region = "midwest"
	RegionSoutheast Region = "southeast"
	RegionSouth     Region = "south"
)

// IsValid checks if the region is known
func (r Region) IsValid() bool {
	switch r {
	case RegionNorth, RegionNortheast, RegionMidwest, RegionSoutheast, RegionSouth:
		return true
	}
	return false
}

// IsSouthOrSoutheast reports whether sales into this region use the higher
// interstate rate class.
func (r Region) IsSouthOrSoutheast() bool {
	return r == RegionSouth || r == RegionSoutheast
}

// Standard interstate ICMS rates
var (
	StandardInterstateRateSouthSoutheast = valueobject.MustPercent("12")
	StandardInterstateRateOther          = valueobject.MustPercent("7")
)

// ErrJurisdictionNotFound is returned by JurisdictionTable.Lookup for unknown ids
var ErrJurisdictionNotFound = shared.NewDomainError("JURISDICTION_NOT_FOUND", "Jurisdiction not found")

// Jurisdiction is a state with its ICMS reference rates
type Jurisdiction struct {
	ID                           string
	Name                         string
	Region                       Region
	InternalRate                 valueobject.Percent
	InterstateRateSouthSoutheast valueobject.Percent
	InterstateRateOther          valueobject.Percent
}

// NewJurisdiction validates and builds a jurisdiction. Zero interstate rates
// are replaced by the standard 12% / 7%.
func NewJurisdiction(id, name string, region Region, internalRate, interstateSouthSoutheast, interstateOther valueobject.Percent) (Jurisdiction, error) {
	id = NormalizeJurisdictionID(id)
	if len(id) != 2 {
		return Jurisdiction{}, shared.NewDomainError("INVALID_JURISDICTION", fmt.Sprintf("Jurisdiction id %q must have 2 letters", id))
	}
	if !region.IsValid() {
		return Jurisdiction{}, shared.NewDomainError("INVALID_REGION", fmt.Sprintf("Unknown region %q for jurisdiction %s", region, id))
	}
	if internalRate.IsNegative() {
		return Jurisdiction{}, shared.NewDomainError("INVALID_RATE", fmt.Sprintf("Internal rate of %s cannot be negative", id))
	}
	if interstateSouthSoutheast.Decimal().IsZero() {
		interstateSouthSoutheast = StandardInterstateRateSouthSoutheast
	}
	if interstateOther.Decimal().IsZero() {
		interstateOther = StandardInterstateRateOther
	}
	return Jurisdiction{
		ID:                           id,
		Name:                         name,
		Region:                       region,
		InternalRate:                 internalRate,
		InterstateRateSouthSoutheast: interstateSouthSoutheast,
		InterstateRateOther:          interstateOther,
	}, nil
}

// InterstateRateInto returns the interstate rate this jurisdiction applies on
// sales into the given destination region.
func (j Jurisdiction) InterstateRateInto(destination Region) valueobject.Percent {
	if destination.IsSouthOrSoutheast() {
		return j.InterstateRateSouthSoutheast
	}
	return j.InterstateRateOther
}

// NormalizeJurisdictionID trims and upper-cases a state code
func NormalizeJurisdictionID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// JurisdictionTable is immutable reference data, safe for concurrent reads
type JurisdictionTable struct {
	byID map[string]Jurisdiction
}

// NewJurisdictionTable builds a table, rejecting duplicate ids
func NewJurisdictionTable(entries []Jurisdiction) (*JurisdictionTable, error) {
	byID := make(map[string]Jurisdiction, len(entries))
	for _, j := range entries {
		if _, exists := byID[j.ID]; exists {
			return nil, shared.NewDomainError("DUPLICATE_JURISDICTION", fmt.Sprintf("Jurisdiction %s is defined twice", j.ID))
		}
		byID[j.ID] = j
	}
	return &JurisdictionTable{byID: byID}, nil
}

// Lookup returns the jurisdiction for id or ErrJurisdictionNotFound
func (t *JurisdictionTable) Lookup(id string) (Jurisdiction, error) {
	if t == nil {
		return Jurisdiction{}, ErrJurisdictionNotFound
	}
	j, ok := t.byID[NormalizeJurisdictionID(id)]
	if !ok {
		return Jurisdiction{}, shared.NewDomainError(ErrJurisdictionNotFound.Code, fmt.Sprintf("Jurisdiction %q not found", id))
	}
	return j, nil
}

// Contains reports whether id is a known jurisdiction
func (t *JurisdictionTable) Contains(id string) bool {
	_, err := t.Lookup(id)
	return err == nil
}

// All returns every jurisdiction ordered by id
func (t *JurisdictionTable) All() []Jurisdiction {
	if t == nil {
		return nil
	}
	result := make([]Jurisdiction, 0, len(t.byID))
	for _, j := range t.byID {
		result = append(result, j)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].ID < result[b].ID })
	return result
}

// Len returns the number of jurisdictions
func (t *JurisdictionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byID)
}
