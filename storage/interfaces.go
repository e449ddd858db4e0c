package storage

import (
	"context"

	"re-crawler/models"
)

// RecordSink receives one ListingRecord per accepted ad.
// Implementations must be safe for concurrent Write calls.
type RecordSink interface {
	Write(ctx context.Context, record models.ListingRecord) error
	Close() error
}
