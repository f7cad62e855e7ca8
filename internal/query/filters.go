package query

import (
	"strings"

	"github.com/agentmart/agentmart/internal/store"
)

// filterStage is a predicate over one record for a given parameter set.
// Stages are pure and independent: applying them in any order yields the
// same filtered set. The fixed pipeline order below just front-loads the
// cheapest checks.
type filterStage func(p Params, rec *store.AgentRecord) bool

var filterPipeline = []filterStage{
	filterLifecycle,
	filterPriceRange,
	filterRating,
	filterTags,
	filterFeatures,
	filterSearch,
}

// applyFilters runs the full pipeline over the working set.
func applyFilters(p Params, recs []*store.AgentRecord) []*store.AgentRecord {
	filtered := make([]*store.AgentRecord, 0, len(recs))

outer:
	for _, rec := range recs {
		for _, stage := range filterPipeline {
			if !stage(p, rec) {
				continue outer
			}
		}
		filtered = append(filtered, rec)
	}

	return filtered
}

// filterLifecycle drops non-active records, and under the Free strategy
// additionally keeps only records whose derived price is zero.
func filterLifecycle(p Params, rec *store.AgentRecord) bool {
	if !rec.Active() {
		return false
	}
	if p.Sort == SortFree {
		return rec.IsFree()
	}
	return true
}

// filterPriceRange compares the effective price against the requested
// bounds. Records with no parsable price resolve to +Inf and therefore
// fail any upper bound.
func filterPriceRange(p Params, rec *store.AgentRecord) bool {
	if p.PriceMin == nil && p.PriceMax == nil {
		return true
	}

	price := rec.EffectivePrice()
	if p.PriceMin != nil && price < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && price > *p.PriceMax {
		return false
	}
	return true
}

func filterRating(p Params, rec *store.AgentRecord) bool {
	if p.RatingMin == nil {
		return true
	}
	return rec.RatingAverage() >= *p.RatingMin
}

// filterTags matches when the record's category is in the requested tag
// set, or any of the record's own tags is.
func filterTags(p Params, rec *store.AgentRecord) bool {
	if len(p.Tags) == 0 {
		return true
	}

	for _, tag := range p.Tags {
		if tag == rec.Category {
			return true
		}
		for _, own := range rec.Tags {
			if tag == own {
				return true
			}
		}
	}
	return false
}

// filterFeatures matches when any requested feature resolves against
// the record: "free" and "subscription" check the derived pricing
// flags, anything else checks feature-set membership.
func filterFeatures(p Params, rec *store.AgentRecord) bool {
	if len(p.Features) == 0 {
		return true
	}

	for _, feature := range p.Features {
		switch strings.ToLower(feature) {
		case "free":
			if rec.IsFree() {
				return true
			}
		case "subscription":
			if rec.PriceDetails != nil && rec.PriceDetails.IsSubscription {
				return true
			}
		default:
			for _, own := range rec.Features {
				if strings.EqualFold(feature, own) {
					return true
				}
			}
		}
	}
	return false
}

// filterSearch does a case-insensitive substring match OR'd across
// name, title, description and creator name.
func filterSearch(p Params, rec *store.AgentRecord) bool {
	if p.Search == "" {
		return true
	}

	term := strings.ToLower(p.Search)
	for _, field := range []string{rec.Name, rec.Title, rec.Description, rec.Creator} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
