package domain

import (
	"context"
	"time"
)

// ViewCounter is the read-side analytics collaborator. It is consumed only to
// enrich event reads with view counts; its internals are not part of the core.
type ViewCounter interface {
	// RecordHit registers one view of the given URI from the given client.
	RecordHit(ctx context.Context, uri, clientIP string, at time.Time) error
	// ViewsFor returns a view count per event id for the given time window.
	ViewsFor(ctx context.Context, eventIDs []string, start, end time.Time) (map[string]int64, error)
}
