package storage

import "airbnb-analytics/models"

// ListingWriter is the interface any persistence backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}
