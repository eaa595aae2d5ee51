package models

// RawListing holds one unparsed row of the source CSV. Every field is a
// string exactly as it appeared in the file; typing and locale
// normalisation happen in services.Cleaner.
type RawListing struct {
	Line int // 1-based line in the source file, for error reporting

	ID                 string
	Name               string
	HostID             string
	HostSince          string
	HostResponseTime   string
	HostResponseRate   string
	HostAcceptanceRate string
	HostCertification  string
	HostListingsCount  string
	City               string
	Area               string
	RoomType           string
	Accommodates       string
	Bathrooms          string
	MinimumNights      string
	Bedrooms           string
	Beds               string
	Price              string
	Sales              string
	Consumer           string
	TotalReviewers     string
	GuestFavourite     string
	InstantBookable    string
}

// Listing is a cleaned, fully typed record. RevenueEstimate is always
// recomputed from Price and Sales, never read from the source.
type Listing struct {
	ID                 int64
	Name               string
	HostID             int64
	HostSince          int // days since the host joined the platform
	HostResponseTime   int
	HostResponseRate   float64
	HostAcceptanceRate float64
	HostCertified      bool
	HostListingsCount  int
	City               string
	Area               string
	RoomTypeCode       int
	RoomType           string // decoded display string
	Accommodates       int
	Bathrooms          float64
	MinimumNights      int
	Bedrooms           int
	Beds               int
	Price              float64
	Sales              int // days booked in a year, 0-365
	Rating             float64
	TotalReviewers     int
	GuestFavourite     bool
	InstantBookable    bool
	RevenueEstimate    float64
}

// LoadReport summarises one cleaning pass. TotalRows always equals
// CleanRows + DroppedRows; a malformed row is dropped and recorded
// here, never silently coerced.
type LoadReport struct {
	TotalRows      int
	CleanRows      int
	DroppedRows    int
	ErrorsByColumn map[string]int
	Samples        []string // up to SampleLimit offending cells
}

// SampleLimit caps how many offending cells a LoadReport retains.
const SampleLimit = 10

// DatasetStats describes the cleaned table as a whole. The presentation
// layer uses it to populate filter controls with real bounds.
type DatasetStats struct {
	TotalListings int
	TotalHosts    int
	Cities        []string
	Areas         []string
	RoomTypes     []string
	MinPrice      float64
	MaxPrice      float64
	MinRating     float64
	MaxRating     float64
	MinHostSince  int
	MaxHostSince  int
	AvgPrice      float64
	AvgRating     float64
}

// CityStats holds the per-city aggregates behind the city-level charts.
type CityStats struct {
	City              string
	Area              string
	ListingCount      int
	AvgPrice          float64
	AvgRating         float64
	TotalReviews      int
	AvgBedrooms       float64
	AvgBathrooms      float64
	PctGuestFavourite float64
	TotalRevenue      float64
	AvgSales          float64
}

// AreaStats holds the per-region aggregates.
type AreaStats struct {
	Area         string
	ListingCount int
	AvgPrice     float64
	AvgRating    float64
	TotalRevenue float64
	TotalSales   int
}

// GuestMetrics are the headline numbers of the guest perspective.
type GuestMetrics struct {
	TotalProperties int
	AvgPrice        float64
	AvgRating       float64
	PctFavourites   float64
	MostPopularCity string
	BestValueCity   string
}

// HostMetrics are the headline numbers of the host perspective.
type HostMetrics struct {
	TotalRevenue       float64
	AvgOccupancyPct    float64
	TotalHosts         int
	AvgListingsPerHost float64
	PctCertified       float64
	BestCity           string
}

// SalesBucket is one host-since time bucket with sales volume split by
// room type.
type SalesBucket struct {
	Label        string
	From         int
	To           int
	SalesByRoom  map[string]int
	TotalSales   int
	ListingCount int
}

// OccupancyBin counts listings whose booked days fall in one 30-day
// slice of the year.
type OccupancyBin struct {
	Label    string
	From     int
	To       int
	Listings int
}

// HierarchyStats is one area > city > room-type leaf of the revenue
// breakdown.
type HierarchyStats struct {
	Area       string
	City       string
	RoomType   string
	TotalSales int
	AvgPrice   float64
}
