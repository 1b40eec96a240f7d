package store

import "time"

// unixMilli converts a millisecond timestamp back to UTC time.
// SQLite stores created_at as an integer; Postgres uses TIMESTAMPTZ.
func unixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
