package storage

import (
	"context"
	"errors"
	"sync"

	"re-crawler/models"
)

// MultiSink writes every record to all of its sinks.
type MultiSink struct {
	sinks []RecordSink
}

// NewMultiSink fans records out to sinks in order.
func NewMultiSink(sinks ...RecordSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write tries every sink even when one fails and joins the errors.
func (m *MultiSink) Write(ctx context.Context, r models.ListingRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Collector keeps records in memory for the end-of-run report.
type Collector struct {
	mu      sync.Mutex
	records []models.ListingRecord
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Write(_ context.Context, r models.ListingRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}

// Records returns a copy of everything written so far.
func (c *Collector) Records() []models.ListingRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ListingRecord(nil), c.records...)
}

func (c *Collector) Close() error { return nil }
