package cache

import "context"

// ListCache holds one serialized list payload. Get reports a miss on any
// backend failure so callers can fall through to the database.
//
// Get also returns the version the read observed. Set only stores a payload
// under that version, so a refill that raced an Invalidate is dropped.
type ListCache interface {
	Get(ctx context.Context) (payload []byte, version int64, ok bool)
	Set(ctx context.Context, version int64, payload []byte)
	Invalidate(ctx context.Context) error
}
