package services

import (
	"fmt"
	"sort"

	"airbnb-analytics/models"
	"airbnb-analytics/utils"
)

// InsightService computes the numeric reductions behind each chart. It
// owns no state beyond a logger; every call derives fresh views from
// the listings it is handed.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService with the given logger.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// CityStats aggregates per city, sorted by city name for deterministic
// output. Ratings of zero (unrated listings) are excluded from rating
// means.
func (s *InsightService) CityStats(listings []*models.Listing) []*models.CityStats {
	type acc struct {
		stats      *models.CityStats
		priceSum   float64
		ratingSum  float64
		ratedCount int
		bedrooms   int
		bathrooms  float64
		favourites int
		salesSum   int
	}

	byCity := make(map[string]*acc)
	for _, l := range listings {
		a := byCity[l.City]
		if a == nil {
			a = &acc{stats: &models.CityStats{City: l.City, Area: l.Area}}
			byCity[l.City] = a
		}
		a.stats.ListingCount++
		a.stats.TotalReviews += l.TotalReviewers
		a.stats.TotalRevenue += l.RevenueEstimate
		a.priceSum += l.Price
		if l.Rating > 0 {
			a.ratingSum += l.Rating
			a.ratedCount++
		}
		a.bedrooms += l.Bedrooms
		a.bathrooms += l.Bathrooms
		if l.GuestFavourite {
			a.favourites++
		}
		a.salesSum += l.Sales
	}

	result := make([]*models.CityStats, 0, len(byCity))
	for _, a := range byCity {
		n := float64(a.stats.ListingCount)
		a.stats.AvgPrice = a.priceSum / n
		if a.ratedCount > 0 {
			a.stats.AvgRating = a.ratingSum / float64(a.ratedCount)
		}
		a.stats.AvgBedrooms = float64(a.bedrooms) / n
		a.stats.AvgBathrooms = a.bathrooms / n
		a.stats.PctGuestFavourite = float64(a.favourites) / n * 100
		a.stats.AvgSales = float64(a.salesSum) / n
		result = append(result, a.stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].City < result[j].City })
	return result
}

// AreaStats aggregates per region, sorted by area name.
func (s *InsightService) AreaStats(listings []*models.Listing) []*models.AreaStats {
	type acc struct {
		stats      *models.AreaStats
		priceSum   float64
		ratingSum  float64
		ratedCount int
	}

	byArea := make(map[string]*acc)
	for _, l := range listings {
		a := byArea[l.Area]
		if a == nil {
			a = &acc{stats: &models.AreaStats{Area: l.Area}}
			byArea[l.Area] = a
		}
		a.stats.ListingCount++
		a.stats.TotalRevenue += l.RevenueEstimate
		a.stats.TotalSales += l.Sales
		a.priceSum += l.Price
		if l.Rating > 0 {
			a.ratingSum += l.Rating
			a.ratedCount++
		}
	}

	result := make([]*models.AreaStats, 0, len(byArea))
	for _, a := range byArea {
		a.stats.AvgPrice = a.priceSum / float64(a.stats.ListingCount)
		if a.ratedCount > 0 {
			a.stats.AvgRating = a.ratingSum / float64(a.ratedCount)
		}
		result = append(result, a.stats)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Area < result[j].Area })
	return result
}

// GuestMetrics computes the guest-perspective headline numbers. Zero
// listings yields zero-valued metrics, never an error.
func (s *InsightService) GuestMetrics(listings []*models.Listing) *models.GuestMetrics {
	m := &models.GuestMetrics{MostPopularCity: "N/A", BestValueCity: "N/A"}
	if len(listings) == 0 {
		return m
	}

	m.TotalProperties = len(listings)

	var priceSum, ratingSum float64
	var ratedCount, favourites int
	for _, l := range listings {
		priceSum += l.Price
		if l.Rating > 0 {
			ratingSum += l.Rating
			ratedCount++
		}
		if l.GuestFavourite {
			favourites++
		}
	}
	m.AvgPrice = priceSum / float64(len(listings))
	if ratedCount > 0 {
		m.AvgRating = ratingSum / float64(ratedCount)
	}
	m.PctFavourites = float64(favourites) / float64(len(listings)) * 100

	// Ties resolve to the first city in sorted order, keeping output
	// deterministic.
	stats := s.CityStats(listings)
	bestCount, bestValue := -1, -1.0
	for _, cs := range stats {
		if cs.ListingCount > bestCount {
			bestCount = cs.ListingCount
			m.MostPopularCity = cs.City
		}
		if cs.AvgPrice > 0 {
			value := cs.AvgRating / cs.AvgPrice
			if value > bestValue {
				bestValue = value
				m.BestValueCity = cs.City
			}
		}
	}
	return m
}

// HostMetrics computes the host-perspective headline numbers.
func (s *InsightService) HostMetrics(listings []*models.Listing) *models.HostMetrics {
	m := &models.HostMetrics{BestCity: "N/A"}
	if len(listings) == 0 {
		return m
	}

	hosts := make(map[int64]struct{})
	var salesSum, certified int
	for _, l := range listings {
		m.TotalRevenue += l.RevenueEstimate
		salesSum += l.Sales
		hosts[l.HostID] = struct{}{}
		if l.HostCertified {
			certified++
		}
	}
	m.TotalHosts = len(hosts)
	m.AvgOccupancyPct = float64(salesSum) / float64(len(listings)) / 365 * 100
	m.AvgListingsPerHost = float64(len(listings)) / float64(m.TotalHosts)
	m.PctCertified = float64(certified) / float64(len(listings)) * 100

	best := -1.0
	for _, cs := range s.CityStats(listings) {
		if cs.TotalRevenue > best {
			best = cs.TotalRevenue
			m.BestCity = cs.City
		}
	}
	return m
}

// DatasetStats summarises the cleaned table for the filter controls.
func (s *InsightService) DatasetStats(listings []*models.Listing) *models.DatasetStats {
	st := &models.DatasetStats{}
	if len(listings) == 0 {
		return st
	}

	cities := make(map[string]struct{})
	areas := make(map[string]struct{})
	rooms := make(map[string]struct{})
	hosts := make(map[int64]struct{})

	st.MinPrice = listings[0].Price
	st.MinHostSince = listings[0].HostSince
	var priceSum, ratingSum float64
	var ratedCount int

	for _, l := range listings {
		cities[l.City] = struct{}{}
		areas[l.Area] = struct{}{}
		rooms[l.RoomType] = struct{}{}
		hosts[l.HostID] = struct{}{}

		if l.Price < st.MinPrice {
			st.MinPrice = l.Price
		}
		if l.Price > st.MaxPrice {
			st.MaxPrice = l.Price
		}
		if l.Rating > 0 {
			if st.MinRating == 0 || l.Rating < st.MinRating {
				st.MinRating = l.Rating
			}
			ratingSum += l.Rating
			ratedCount++
		}
		if l.Rating > st.MaxRating {
			st.MaxRating = l.Rating
		}
		if l.HostSince < st.MinHostSince {
			st.MinHostSince = l.HostSince
		}
		if l.HostSince > st.MaxHostSince {
			st.MaxHostSince = l.HostSince
		}
		priceSum += l.Price
	}

	st.TotalListings = len(listings)
	st.TotalHosts = len(hosts)
	st.Cities = sortedKeys(cities)
	st.Areas = sortedKeys(areas)
	st.RoomTypes = sortedKeys(rooms)
	st.AvgPrice = priceSum / float64(len(listings))
	if ratedCount > 0 {
		st.AvgRating = ratingSum / float64(ratedCount)
	}
	return st
}

// SalesByPeriod buckets the host-since axis into the given number of
// equal-width periods and sums booked days per room type in each.
func (s *InsightService) SalesByPeriod(listings []*models.Listing, buckets int) []*models.SalesBucket {
	if buckets <= 0 || len(listings) == 0 {
		return nil
	}

	minHS, maxHS := listings[0].HostSince, listings[0].HostSince
	for _, l := range listings {
		if l.HostSince < minHS {
			minHS = l.HostSince
		}
		if l.HostSince > maxHS {
			maxHS = l.HostSince
		}
	}
	span := maxHS - minHS + 1
	if span < buckets {
		buckets = span
	}

	result := make([]*models.SalesBucket, buckets)
	for i := range result {
		from := minHS + i*span/buckets
		to := minHS + (i+1)*span/buckets - 1
		result[i] = &models.SalesBucket{
			Label:       fmt.Sprintf("d%d-d%d", from, to),
			From:        from,
			To:          to,
			SalesByRoom: make(map[string]int),
		}
	}

	for _, l := range listings {
		// Largest i with minHS+i*span/buckets <= HostSince, so membership
		// agrees with the published From/To bounds when span does not
		// divide evenly.
		idx := ((l.HostSince-minHS)*buckets + buckets - 1) / span
		b := result[idx]
		b.SalesByRoom[l.RoomType] += l.Sales
		b.TotalSales += l.Sales
		b.ListingCount++
	}
	return result
}

// OccupancyHistogram counts listings per roughly-30-day slice of booked
// days. Listings with zero sales are left out, matching the charts that
// render only active inventory. Bin bounds are inclusive and disjoint,
// derived from the same arithmetic that assigns listings to bins.
func (s *InsightService) OccupancyHistogram(listings []*models.Listing) []*models.OccupancyBin {
	const bins = 12
	result := make([]*models.OccupancyBin, bins)
	for i := range result {
		from := (i*365+bins-1)/bins + 1
		to := ((i+1)*365 + bins - 1) / bins
		result[i] = &models.OccupancyBin{
			Label: fmt.Sprintf("%d-%d", from, to),
			From:  from,
			To:    to,
		}
	}
	for _, l := range listings {
		if l.Sales <= 0 {
			continue
		}
		idx := (l.Sales - 1) * bins / 365
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Listings++
	}
	return result
}

// Hierarchy groups revenue by area > city > room type, sorted on all
// three keys for stable output.
func (s *InsightService) Hierarchy(listings []*models.Listing) []*models.HierarchyStats {
	type key struct{ area, city, room string }
	type acc struct {
		sales    int
		priceSum float64
		count    int
	}

	groups := make(map[key]*acc)
	for _, l := range listings {
		k := key{l.Area, l.City, l.RoomType}
		a := groups[k]
		if a == nil {
			a = &acc{}
			groups[k] = a
		}
		a.sales += l.Sales
		a.priceSum += l.Price
		a.count++
	}

	result := make([]*models.HierarchyStats, 0, len(groups))
	for k, a := range groups {
		result = append(result, &models.HierarchyStats{
			Area:       k.area,
			City:       k.city,
			RoomType:   k.room,
			TotalSales: a.sales,
			AvgPrice:   a.priceSum / float64(a.count),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Area != b.Area {
			return a.Area < b.Area
		}
		if a.City != b.City {
			return a.City < b.City
		}
		return a.RoomType < b.RoomType
	})
	return result
}

// TopN returns the n listings with the highest metric value. The sort
// is stable: listings with equal values keep their original order. The
// input slice is never reordered.
func (s *InsightService) TopN(listings []*models.Listing, n int, metric func(*models.Listing) float64) []*models.Listing {
	if n <= 0 {
		return nil
	}
	ranked := make([]*models.Listing, len(listings))
	copy(ranked, listings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(ranked[i]) > metric(ranked[j])
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
