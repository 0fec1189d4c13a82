package query

import "time"

// Source says where a result's data came from, so callers can tell real data
// from a degraded fallback. Placeholder data indistinguishable from live data
// is exactly the failure mode this type exists to prevent.
type Source int

const (
	// SourceLive means the data came over the network in this call.
	SourceLive Source = iota
	// SourceCached means the data was served from the in-memory staleness window.
	SourceCached
	// SourceSnapshot means the fetch failed and the last known good value was
	// substituted; Err carries the fetch failure.
	SourceSnapshot
)

func (s Source) String() string {
	switch s {
	case SourceCached:
		return "cached"
	case SourceSnapshot:
		return "snapshot"
	default:
		return "live"
	}
}

// Result is the discriminated outcome of a read query.
type Result[T any] struct {
	Data      T
	Source    Source
	FetchedAt time.Time
	// Err is non-nil only for SourceSnapshot results, where it records why
	// the live fetch failed.
	Err error
}
