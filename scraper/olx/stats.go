package olx

import (
	"sync/atomic"

	"re-crawler/models"
)

// Stats counts what happened during a crawl. Safe for concurrent use.
type Stats struct {
	Pages            atomic.Int64
	Entries          atomic.Int64
	Fresh            atomic.Int64
	Promoted         atomic.Int64
	EntryFaults      atomic.Int64
	Dispatched       atomic.Int64
	Extracted        atomic.Int64
	ExtractionFaults atomic.Int64
	PaginationFaults atomic.Int64
	FetchFaults      atomic.Int64
	SinkFaults       atomic.Int64
}

// Snapshot is a plain copy of Stats for reporting.
type Snapshot struct {
	Pages            int64
	Entries          int64
	Fresh            int64
	Promoted         int64
	EntryFaults      int64
	Dispatched       int64
	Extracted        int64
	ExtractionFaults int64
	PaginationFaults int64
	FetchFaults      int64
	SinkFaults       int64
}

func (s *Stats) recordWalk(res models.WalkResult) {
	s.Pages.Add(1)
	s.Entries.Add(int64(res.Entries))
	s.Fresh.Add(int64(res.Fresh))
	s.Promoted.Add(int64(res.Promoted))
	s.EntryFaults.Add(int64(res.EntryFaults))
}

// Snapshot reads every counter once.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Pages:            s.Pages.Load(),
		Entries:          s.Entries.Load(),
		Fresh:            s.Fresh.Load(),
		Promoted:         s.Promoted.Load(),
		EntryFaults:      s.EntryFaults.Load(),
		Dispatched:       s.Dispatched.Load(),
		Extracted:        s.Extracted.Load(),
		ExtractionFaults: s.ExtractionFaults.Load(),
		PaginationFaults: s.PaginationFaults.Load(),
		FetchFaults:      s.FetchFaults.Load(),
		SinkFaults:       s.SinkFaults.Load(),
	}
}
