package fiscal

import (
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
)

// DefaultInternalRate is the internal ICMS rate substituted for unknown
// jurisdictions when the caller does not configure another policy.
var DefaultInternalRate = valueobject.MustPercent("18")

// ResolvedRates is the ICMS outcome of one operation route
type ResolvedRates struct {
	AppliedIcmsRate valueobject.Percent
	DifalRate       valueobject.Percent
	HasDifal        bool

	// OriginFound and DestinationFound are false when the fallback
	// internal rate replaced a missing jurisdiction.
	OriginFound      bool
	DestinationFound bool
}

// UsedFallback reports whether any jurisdiction was missing from the table
func (r ResolvedRates) UsedFallback() bool {
	return !r.OriginFound || !r.DestinationFound
}

// RateResolver decides which ICMS rate applies and whether DIFAL is due
type RateResolver struct {
	table               *JurisdictionTable
	defaultInternalRate valueobject.Percent
}

// NewRateResolver creates a resolver. defaultInternalRate is the explicit
// policy used in place of a missing jurisdiction's internal rate.
func NewRateResolver(table *JurisdictionTable, defaultInternalRate valueobject.Percent) *RateResolver {
	return &RateResolver{
		table:               table,
		defaultInternalRate: defaultInternalRate,
	}
}

// Table returns the jurisdiction table backing the resolver
func (r *RateResolver) Table() *JurisdictionTable {
	return r.table
}

// DefaultInternalRate returns the configured fallback policy
func (r *RateResolver) DefaultInternalRate() valueobject.Percent {
	return r.defaultInternalRate
}

// Resolve applies, in order:
//  1. same jurisdiction: origin internal rate, no DIFAL
//  2. non-contributor buyer: origin internal rate, no DIFAL
//  3. interstate to a contributor: interstate rate by destination region,
//     DIFAL = destination internal rate - interstate rate (not clamped)
func (r *RateResolver) Resolve(origin, destination string, buyerIsContributor bool) ResolvedRates {
	originJ, originFound := r.lookup(origin)
	destJ, destFound := r.lookup(destination)

	result := ResolvedRates{
		OriginFound:      originFound,
		DestinationFound: destFound,
	}

	if NormalizeJurisdictionID(origin) == NormalizeJurisdictionID(destination) || !buyerIsContributor {
		result.AppliedIcmsRate = originJ.InternalRate
		return result
	}

	result.AppliedIcmsRate = originJ.InterstateRateInto(destJ.Region)
	result.DifalRate = destJ.InternalRate.Sub(result.AppliedIcmsRate)
	result.HasDifal = true
	return result
}

// lookup returns the jurisdiction or a stand-in carrying the default
// internal rate, the standard interstate rates and no region.
func (r *RateResolver) lookup(id string) (Jurisdiction, bool) {
	j, err := r.table.Lookup(id)
	if err != nil {
		return Jurisdiction{
			ID:                           NormalizeJurisdictionID(id),
			InternalRate:                 r.defaultInternalRate,
			InterstateRateSouthSoutheast: StandardInterstateRateSouthSoutheast,
			InterstateRateOther:          StandardInterstateRateOther,
		}, false
	}
	return j, true
}
