package storage

import (
	"context"

	"realestate-bi/models"
)

// ListingStore is the interface any database backend must satisfy.
type ListingStore interface {
	Write(ctx context.Context, listings []*models.Listing) error
	FetchAll(ctx context.Context) ([]*models.Listing, error)
	Close() error
}

// ListingWriter is the interface for file sinks of canonical listings.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

var (
	_ ListingStore  = (*SQLStore)(nil)
	_ ListingWriter = (*CSVWriter)(nil)
)
