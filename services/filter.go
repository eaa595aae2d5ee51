package services

import (
	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// FilterOptions is the predicate set selected in the UI. Every
// dimension is optional: an empty slice or zero bound places no
// restriction on that dimension. All predicates combine with AND.
type FilterOptions struct {
	Cities    []string
	Areas     []string
	RoomTypes []string

	// Inclusive price bounds. MaxPrice <= 0 means unbounded above.
	MinPrice float64
	MaxPrice float64

	MinReviews int
	MinRating  float64

	// Inclusive host-since day window. HostSinceMax <= 0 means
	// unbounded above.
	HostSinceMin int
	HostSinceMax int

	GuestFavouritesOnly bool
	CertifiedHostsOnly  bool
}

// normalise corrects invalid user input instead of rejecting it: an
// inverted range is swapped, negative bounds are clamped to zero. This
// is a user-input boundary, so it never returns an error.
func (o *FilterOptions) normalise() {
	if o.MinPrice < 0 {
		o.MinPrice = 0
	}
	if o.MaxPrice > 0 && o.MinPrice > o.MaxPrice {
		o.MinPrice, o.MaxPrice = o.MaxPrice, o.MinPrice
	}
	if o.HostSinceMin < 0 {
		o.HostSinceMin = 0
	}
	if o.HostSinceMax > 0 && o.HostSinceMin > o.HostSinceMax {
		o.HostSinceMin, o.HostSinceMax = o.HostSinceMax, o.HostSinceMin
	}
	if o.MinReviews < 0 {
		o.MinReviews = 0
	}
	if o.MinRating < 0 {
		o.MinRating = 0
	}
}

// FilterEngine narrows the cleaned table to the rows matching a
// predicate set. It never mutates its input; results are fresh slices
// sharing the underlying records.
type FilterEngine struct {
	logger *utils.Logger
}

// NewFilterEngine creates a FilterEngine with the given logger.
func NewFilterEngine(logger *utils.Logger) *FilterEngine {
	return &FilterEngine{logger: logger}
}

// Apply returns the listings matching opts, preserving input order. An
// empty result is a valid output, not an error.
func (e *FilterEngine) Apply(listings []*models.Listing, opts FilterOptions) []*models.Listing {
	opts.normalise()

	cities := toSet(opts.Cities)
	areas := toSet(opts.Areas)
	roomTypes := toSet(opts.RoomTypes)

	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if !matchSet(cities, l.City) || !matchSet(areas, l.Area) || !matchSet(roomTypes, l.RoomType) {
			continue
		}
		if l.Price < opts.MinPrice {
			continue
		}
		if opts.MaxPrice > 0 && l.Price > opts.MaxPrice {
			continue
		}
		if l.TotalReviewers < opts.MinReviews {
			continue
		}
		if opts.MinRating > 0 && l.Rating < opts.MinRating {
			continue
		}
		if l.HostSince < opts.HostSinceMin {
			continue
		}
		if opts.HostSinceMax > 0 && l.HostSince > opts.HostSinceMax {
			continue
		}
		if opts.GuestFavouritesOnly && !l.GuestFavourite {
			continue
		}
		if opts.CertifiedHostsOnly && !l.HostCertified {
			continue
		}
		result = append(result, l)
	}

	e.logger.Debug("[filter] %d → %d listings", len(listings), len(result))
	return result
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matchSet treats a nil set as "no restriction".
func matchSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[value]
	return ok
}
